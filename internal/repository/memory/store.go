// internal/repository/memory/store.go
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/pkg/db"

	"github.com/google/uuid"
)

var errNoSQL = errors.New("memory store does not execute SQL")

// Executor satisfies repository.DBExecutor for the memory repositories, which ignore it.
type Executor struct{}

func (Executor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errNoSQL
}

func (Executor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errNoSQL
}

func (Executor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}

// QueryRowContext is never called by the memory repositories.
func (Executor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return &sql.Row{}
}

type tables struct {
	nextID       int64
	users        map[uuid.UUID]domain.User
	wallets      map[int64]domain.Wallet
	transactions []domain.Transaction
	stocks       map[int64]domain.Stock
	holdings     map[int64]domain.Holding
	trades       []domain.Trade
	progress     map[int64]domain.Progress
}

func newTables() *tables {
	return &tables{
		users:    map[uuid.UUID]domain.User{},
		wallets:  map[int64]domain.Wallet{},
		stocks:   map[int64]domain.Stock{},
		holdings: map[int64]domain.Holding{},
		progress: map[int64]domain.Progress{},
	}
}

func (t *tables) clone() *tables {
	out := newTables()
	out.nextID = t.nextID
	for k, v := range t.users {
		out.users[k] = cloneUser(v)
	}
	for k, v := range t.wallets {
		out.wallets[k] = v
	}
	out.transactions = append([]domain.Transaction(nil), t.transactions...)
	for k, v := range t.stocks {
		out.stocks[k] = cloneStock(v)
	}
	for k, v := range t.holdings {
		out.holdings[k] = v
	}
	out.trades = append([]domain.Trade(nil), t.trades...)
	for k, v := range t.progress {
		out.progress[k] = cloneProgress(v)
	}
	return out
}

func (t *tables) id() int64 {
	t.nextID++
	return t.nextID
}

// Store is an in-process storage driver with the same uniqueness rules as the
// Postgres schema. Transactions are serialized by a store-wide lock and undone
// on rollback by restoring a snapshot taken at begin, so every write must go
// through a transaction: a write made outside one while another is open is lost
// if that transaction rolls back. Reads outside a transaction may observe
// uncommitted writes.
type Store struct {
	txMu sync.Mutex

	mu   sync.RWMutex
	data *tables
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newTables()}
}

// Executor returns the non-transactional executor handed to services.
func (s *Store) Executor() repository.DBExecutor {
	return Executor{}
}

// Transactor returns transaction helpers bound to the store.
func (s *Store) Transactor() db.Transactor {
	return db.NewTransactor(s)
}

// Repositories returns every repository backed by the store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:        &UserRepository{s: s},
		Wallets:      &WalletRepository{s: s},
		Transactions: &TransactionRepository{s: s},
		Stocks:       &StockRepository{s: s},
		Holdings:     &HoldingRepository{s: s},
		Trades:       &TradeRepository{s: s},
		Progress:     &ProgressRepository{s: s},
	}
}

// BeginTxController implements db.DBTxBeginner.
func (s *Store) BeginTxController(ctx context.Context, _ *sql.TxOptions) (db.TxController, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	s.mu.RLock()
	snap := s.data.clone()
	s.mu.RUnlock()
	return &Tx{store: s, snapshot: snap}, nil
}

// Tx is a memory transaction. It also satisfies repository.DBExecutor.
type Tx struct {
	Executor
	store    *Store
	snapshot *tables
	done     bool
}

// Commit keeps the writes made since begin.
func (t *Tx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.snapshot = nil
	t.store.txMu.Unlock()
	return nil
}

// Rollback restores the tables as they were at begin.
func (t *Tx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.data = t.snapshot
	t.store.mu.Unlock()
	t.snapshot = nil
	t.store.txMu.Unlock()
	return nil
}

func cloneUser(u domain.User) domain.User {
	if u.Age != nil {
		age := *u.Age
		u.Age = &age
	}
	return u
}

func cloneStock(s domain.Stock) domain.Stock {
	s.History = append(domain.PriceHistory(nil), s.History...)
	return s
}

func cloneProgress(p domain.Progress) domain.Progress {
	p.CompletedModules = append(p.CompletedModules[:0:0], p.CompletedModules...)
	p.CompletedLessons = append(p.CompletedLessons[:0:0], p.CompletedLessons...)
	scores := make(domain.QuizScores, len(p.QuizScores))
	for k, v := range p.QuizScores {
		scores[k] = v
	}
	p.QuizScores = scores
	achievements := make(domain.Achievements, len(p.Achievements))
	for k, v := range p.Achievements {
		achievements[k] = v
	}
	p.Achievements = achievements
	return p
}
