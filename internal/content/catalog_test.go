// internal/content/catalog_test.go
package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 5, c.ModuleCount())
	m, ok := c.Module(3)
	require.True(t, ok)
	assert.Equal(t, "The Saving Adventure", m.Title)
	assert.Len(t, m.Lessons, 3)

	l, ok := m.Lesson("2")
	require.True(t, ok)
	assert.Equal(t, "Setting Goals", l.Title)

	_, ok = m.Lesson("9")
	assert.False(t, ok)
	_, ok = c.Module(42)
	assert.False(t, ok)

	questions := c.Questions(m)
	assert.Len(t, questions, 10)
	assert.Equal(t, 1, questions[1].Correct)
}

func TestParse(t *testing.T) {
	t.Run("ModuleQuizOverridesShared", func(t *testing.T) {
		c, err := Parse([]byte(`
[[modules]]
id = 1
title = "One"
  [[modules.quiz]]
  question = "q"
  options = ["a", "b"]
  correct = 1

[[quiz]]
question = "shared"
options = ["x"]
correct = 0
`))
		require.NoError(t, err)
		m, _ := c.Module(1)
		require.Len(t, c.Questions(m), 1)
		assert.Equal(t, "q", c.Questions(m)[0].Question)
	})

	t.Run("CorrectIndexOutOfRange", func(t *testing.T) {
		_, err := Parse([]byte(`
[[modules]]
id = 1
[[quiz]]
question = "q"
options = ["a"]
correct = 3
`))
		assert.Error(t, err)
	})

	t.Run("DuplicateModule", func(t *testing.T) {
		_, err := Parse([]byte(`
[[modules]]
id = 1
[[modules]]
id = 1
[[quiz]]
question = "q"
options = ["a"]
correct = 0
`))
		assert.Error(t, err)
	})

	t.Run("SlideWithoutType", func(t *testing.T) {
		_, err := Parse([]byte(`
[[modules]]
id = 1
  [[modules.lessons]]
  id = "1"
    [[modules.lessons.slides]]
    text = "untyped"
[[quiz]]
question = "q"
options = ["a"]
correct = 0
`))
		assert.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Parse([]byte(``))
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := Parse([]byte(`[[modules`))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.ModuleCount())

	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[modules]]
id = 7
title = "Seven"
[[quiz]]
question = "q"
options = ["a", "b"]
correct = 0
`), 0o600))
	c, err = Load(path)
	require.NoError(t, err)
	_, ok := c.Module(7)
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLessonContent(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, ok := c.Module(1)
	require.True(t, ok)
	l, ok := m.Lesson("1")
	require.True(t, ok)
	slides := l.Content()
	require.Len(t, slides, 5)
	assert.Equal(t, SlideIntro, slides[0].Type)
	question := slides[2]
	assert.Equal(t, SlideQuestion, question.Type)
	assert.True(t, question.MultiSelect)
	require.Len(t, question.Options, 3)
	assert.True(t, question.Options[0].Correct)
	assert.False(t, question.Options[1].Correct)
	assert.Equal(t, "Saving regularly helps you buy what you want!", slides[3].Takeaway)
	assert.Equal(t, SlideCompletion, slides[4].Type)

	// Lessons without authored slides get generated ones.
	l, ok = m.Lesson("2")
	require.True(t, ok)
	slides = l.Content()
	require.Len(t, slides, 2)
	assert.Contains(t, slides[0].Text, "Earning Money")
	assert.Equal(t, SlideCompletion, slides[1].Type)
}
