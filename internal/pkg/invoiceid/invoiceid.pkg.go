// Package invoiceid mints INV-{yyyyMMdd}-{nnnn} identifiers from a daily
// counter kept under "counter_{yyyyMMdd}".
package invoiceid

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"order-ledger/internal/common/enum"
	"order-ledger/internal/pkg/kvstore"
)

const (
	DateLayout    = "20060102"
	CounterPrefix = "counter_"
)

type Config struct {
	// Location decides which calendar day an invoice belongs to.
	Location *time.Location
	Mode     enum.CounterModeEnum
	Now      func() time.Time
}

type Issuer struct {
	kv   kvstore.Store
	loc  *time.Location
	mode enum.CounterModeEnum
	now  func() time.Time
}

func New(kv kvstore.Store, cfg Config) *Issuer {
	i := &Issuer{
		kv:   kv,
		loc:  cfg.Location,
		mode: cfg.Mode,
		now:  cfg.Now,
	}
	if i.loc == nil {
		i.loc = time.Local
	}
	if !i.mode.IsValid() {
		i.mode = enum.CounterAtomic
	}
	if i.now == nil {
		i.now = time.Now
	}
	return i
}

// Next returns the next identifier for today's date.
func (i *Issuer) Next(ctx context.Context) (string, error) {
	dateKey := DateKey(i.now().In(i.loc))

	var (
		n   int64
		err error
	)
	switch i.mode {
	case enum.CounterLegacy:
		n, err = i.readIncrementWrite(ctx, CounterKey(dateKey))
	default:
		n, err = i.kv.Incr(ctx, CounterKey(dateKey))
	}
	if err != nil {
		return "", fmt.Errorf("failed to advance invoice counter for %s: %w", dateKey, err)
	}
	return Format(dateKey, n), nil
}

// readIncrementWrite is not atomic: callers racing on the same date may
// both read the same value and issue the same identifier.
func (i *Issuer) readIncrementWrite(ctx context.Context, key string) (int64, error) {
	raw, ok, err := i.kv.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	var current int64
	if ok && raw != "" {
		current, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("counter %s holds %q: %w", key, raw, err)
		}
	}

	next := current + 1
	if err := i.kv.Set(ctx, key, strconv.FormatInt(next, 10)); err != nil {
		return 0, err
	}
	return next, nil
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func CounterKey(dateKey string) string {
	return CounterPrefix + dateKey
}

// Format zero-pads n to four digits; larger counters keep all their digits.
func Format(dateKey string, n int64) string {
	return fmt.Sprintf("INV-%s-%04d", dateKey, n)
}
