// internal/content/catalog.go
package content

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultCatalog []byte

// Slide kinds shown by a lesson player.
const (
	SlideIntro      = "intro"
	SlideContent    = "content"
	SlideQuestion   = "question"
	SlideStory      = "story"
	SlideCompletion = "completion"
)

// SlideOption is one answer of a question slide. Several may be correct.
type SlideOption struct {
	ID      string `toml:"id" json:"id"`
	Text    string `toml:"text" json:"text"`
	Correct bool   `toml:"correct" json:"correct"`
}

// Slide is one screen of a lesson. Which fields are set depends on Type.
type Slide struct {
	Type        string        `toml:"type" json:"type"`
	Image       string        `toml:"image" json:"image,omitempty"`
	Text        string        `toml:"text" json:"text,omitempty"`
	Question    string        `toml:"question" json:"question,omitempty"`
	Options     []SlideOption `toml:"options" json:"options,omitempty"`
	MultiSelect bool          `toml:"multi_select" json:"multiSelect,omitempty"`
	Takeaway    string        `toml:"takeaway" json:"takeaway,omitempty"`
}

// Lesson is one entry of a module. Slides are only served by the lesson content endpoint.
type Lesson struct {
	ID       string  `toml:"id" json:"id"`
	Title    string  `toml:"title" json:"title"`
	Duration string  `toml:"duration" json:"duration"`
	Slides   []Slide `toml:"slides" json:"-"`
}

// Content returns the lesson's slides. Lessons without authored slides get a
// generic introduction and completion screen.
func (l Lesson) Content() []Slide {
	if len(l.Slides) > 0 {
		return l.Slides
	}
	return []Slide{
		{Type: SlideIntro, Image: "📚", Text: fmt.Sprintf("Welcome! Let's learn about %s.", l.Title)},
		{Type: SlideCompletion, Text: "🎉 Lesson Complete!"},
	}
}

// Question is a multiple-choice quiz question. Correct indexes Options.
type Question struct {
	Question string   `toml:"question" json:"question"`
	Options  []string `toml:"options" json:"options"`
	Correct  int      `toml:"correct" json:"-"`
}

// Module groups lessons and, optionally, its own quiz.
type Module struct {
	ID      int        `toml:"id" json:"id"`
	Title   string     `toml:"title" json:"title"`
	Icon    string     `toml:"icon" json:"icon"`
	Lessons []Lesson   `toml:"lessons" json:"lessons"`
	Quiz    []Question `toml:"quiz" json:"-"`
}

// Catalog is the static learning content.
type Catalog struct {
	Modules    []Module   `toml:"modules"`
	SharedQuiz []Question `toml:"quiz"`
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a TOML catalog.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := toml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Modules) == 0 {
		return fmt.Errorf("catalog has no modules")
	}
	seen := map[int]bool{}
	for _, m := range c.Modules {
		if m.ID <= 0 || seen[m.ID] {
			return fmt.Errorf("catalog module id %d is invalid or duplicated", m.ID)
		}
		seen[m.ID] = true
		for _, l := range m.Lessons {
			for i, slide := range l.Slides {
				if slide.Type == "" {
					return fmt.Errorf("catalog module %d lesson %s slide %d has no type", m.ID, l.ID, i+1)
				}
			}
		}
		questions := c.Questions(m)
		if len(questions) == 0 {
			return fmt.Errorf("catalog module %d has no quiz questions", m.ID)
		}
		for i, q := range questions {
			if q.Correct < 0 || q.Correct >= len(q.Options) {
				return fmt.Errorf("catalog module %d question %d: correct index %d out of range", m.ID, i+1, q.Correct)
			}
		}
	}
	return nil
}

// Module looks a module up by id.
func (c *Catalog) Module(id int) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Lesson looks a lesson up inside a module.
func (m Module) Lesson(id string) (Lesson, bool) {
	for _, l := range m.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// Questions returns the module's own quiz, or the shared one.
func (c *Catalog) Questions(m Module) []Question {
	if len(m.Quiz) > 0 {
		return m.Quiz
	}
	return c.SharedQuiz
}

// ModuleCount is the number of modules.
func (c *Catalog) ModuleCount() int {
	return len(c.Modules)
}
