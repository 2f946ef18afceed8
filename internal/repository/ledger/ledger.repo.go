package ledger

import (
	"context"
	"sync"

	"order-ledger/internal/pkg/table"
)

type IRepository interface {
	Sheet(ctx context.Context, name string) (table.Table, error)
	EnsureSheet(ctx context.Context, name string, header table.Row) error
	// LockSheet serializes ledger writers of one sheet within this process.
	// An insert shifts every block below it, so the lock covers the whole
	// sheet. Call the returned func to release.
	LockSheet(sheet string) func()
}

type Repository struct {
	store table.Store

	mu    sync.Mutex
	locks map[string]*sheetLock
}

type sheetLock struct {
	mu   sync.Mutex
	refs int
}

func NewRepo(store table.Store) *Repository {
	return &Repository{
		store: store,
		locks: map[string]*sheetLock{},
	}
}

func (r *Repository) Sheet(ctx context.Context, name string) (table.Table, error) {
	return r.store.Sheet(ctx, name)
}

func (r *Repository) EnsureSheet(ctx context.Context, name string, header table.Row) error {
	return r.store.EnsureSheet(ctx, name, header)
}

func (r *Repository) LockSheet(sheet string) func() {
	r.mu.Lock()
	l, ok := r.locks[sheet]
	if !ok {
		l = &sheetLock{}
		r.locks[sheet] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, sheet)
		}
		r.mu.Unlock()
	}
}
