package table

import (
	"context"
	"fmt"
	"sync"

	"order-ledger/internal/common/errs"
)

// MemoryStore keeps sheets in process memory. It backs local development
// and tests; contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string]*memorySheet
}

type memorySheet struct {
	store   *MemoryStore
	name    string
	rows    []Row
	version int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: map[string]*memorySheet{}}
}

func (s *MemoryStore) Sheet(_ context.Context, name string) (Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sheet, ok := s.sheets[name]
	if !ok {
		return nil, errs.NotFound("sheet %q", name)
	}
	return sheet, nil
}

func (s *MemoryStore) EnsureSheet(_ context.Context, name string, header Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sheets[name]; ok {
		return nil
	}
	s.sheets[name] = &memorySheet{
		store: s,
		name:  name,
		rows:  []Row{append(Row(nil), header...)},
	}
	return nil
}

func (m *memorySheet) Name() string {
	return m.name
}

func (m *memorySheet) ReadColumn(ctx context.Context, column, startRow, count int) ([]string, error) {
	rows, err := m.ReadRows(ctx, startRow, count, column)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.Cell(column)
	}
	return values, nil
}

func (m *memorySheet) ReadRows(_ context.Context, startRow, count, columnCount int) ([]Row, error) {
	if startRow < 1 || count < 0 {
		return nil, fmt.Errorf("invalid range start=%d count=%d", startRow, count)
	}

	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	out := make([]Row, 0, count)
	for i := startRow; i < startRow+count; i++ {
		var src Row
		if i <= len(m.rows) {
			src = m.rows[i-1]
		}
		out = append(out, fit(src, columnCount))
	}
	return out, nil
}

func (m *memorySheet) AppendRow(_ context.Context, values Row) error {
	_, err := m.write(-1, func() error {
		m.append(values)
		return nil
	})
	return err
}

func (m *memorySheet) InsertRowAfter(_ context.Context, rowIndex int, values Row) error {
	_, err := m.write(-1, func() error {
		return m.insert(rowIndex, values)
	})
	return err
}

func (m *memorySheet) Version(_ context.Context) (int64, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	return m.version, nil
}

func (m *memorySheet) AppendRowAt(_ context.Context, version int64, values Row) (int64, error) {
	return m.write(version, func() error {
		m.append(values)
		return nil
	})
}

func (m *memorySheet) InsertRowAfterAt(_ context.Context, version int64, rowIndex int, values Row) (int64, error) {
	return m.write(version, func() error {
		return m.insert(rowIndex, values)
	})
}

// write runs fn under the store lock. A negative expect skips the version
// check.
func (m *memorySheet) write(expect int64, fn func() error) (int64, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if expect >= 0 && expect != m.version {
		return m.version, errs.Conflict("sheet %s moved on from version %d", m.name, expect)
	}
	if err := fn(); err != nil {
		return m.version, err
	}
	m.version++
	return m.version, nil
}

func (m *memorySheet) append(values Row) {
	m.rows = append(m.rows, append(Row(nil), values...))
}

func (m *memorySheet) insert(rowIndex int, values Row) error {
	if rowIndex < 1 || rowIndex > len(m.rows) {
		return fmt.Errorf("insert after row %d: out of range 1..%d", rowIndex, len(m.rows))
	}

	m.rows = append(m.rows, nil)
	copy(m.rows[rowIndex+1:], m.rows[rowIndex:])
	m.rows[rowIndex] = append(Row(nil), values...)
	return nil
}

func (m *memorySheet) LastRowIndex(_ context.Context) (int, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	return len(m.rows), nil
}
