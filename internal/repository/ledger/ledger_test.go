package ledger

import (
	"sync"
	"testing"
	"time"

	"order-ledger/internal/pkg/table"

	"github.com/stretchr/testify/assert"
)

func TestLockSheetSerializesWriters(t *testing.T) {
	repo := NewRepo(table.NewMemoryStore())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := repo.LockSheet("ORDER")
			defer unlock()

			mu.Lock()
			active++
			overlap = overlap || active > 1
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	assert.Empty(t, repo.locks)
}

func TestLockSheetIndependentSheets(t *testing.T) {
	repo := NewRepo(table.NewMemoryStore())

	unlockAlice := repo.LockSheet("ORDER")
	done := make(chan struct{})
	go func() {
		unlock := repo.LockSheet("INVOICE")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for INVOICE blocked on ORDER")
	}
	unlockAlice()
}
