package numbering

import (
	"context"
	"time"

	"github.com/spec-kit/workorder-service/internal/domain"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

// SequenceStore reads the highest allocated numeric prefix for a kind and
// year suffix. Implementations must run the scan under the same exclusive
// lock (or equivalent serializable guarantee) that covers the subsequent
// insert, so concurrent allocations never observe the same maximum.
type SequenceStore interface {
	MaxPrefix(ctx context.Context, kind domain.OrderKind, year string) (int, error)
}

// Clock abstracts the current-time source.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Allocator computes the next number for a kind. The caller owns the
// transaction boundary; the allocator only decides the value.
type Allocator struct {
	clock Clock
}

// NewAllocator builds an allocator. A nil clock defaults to the system clock.
func NewAllocator(clock Clock) *Allocator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Allocator{clock: clock}
}

// Next allocates the next number for the current year.
func (a *Allocator) Next(ctx context.Context, store SequenceStore, kind domain.OrderKind) (string, error) {
	return a.NextForYear(ctx, store, kind, YearSuffix(a.clock.Now()))
}

// NextForYear allocates the next number for an explicit year suffix. The
// first allocation of a kind/year yields "1-<yy>".
func (a *Allocator) NextForYear(ctx context.Context, store SequenceStore, kind domain.OrderKind, year string) (string, error) {
	max, err := store.MaxPrefix(ctx, kind, year)
	if err != nil {
		return "", util.NewStorageUnavailable(err)
	}
	return Format(max+1, year), nil
}
