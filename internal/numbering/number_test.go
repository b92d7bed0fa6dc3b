package numbering

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
	util "github.com/spec-kit/workorder-service/pkg/util"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestYearSuffix(t *testing.T) {
	require.Equal(t, "25", YearSuffix(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, "09", YearSuffix(time.Date(2009, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFormatAndSplit(t *testing.T) {
	require.Equal(t, "7-25", Format(7, "25"))

	seq, year, err := Split("7-25")
	require.NoError(t, err)
	require.Equal(t, 7, seq)
	require.Equal(t, "25", year)

	_, _, err = Split("725")
	require.Error(t, err)

	_, _, err = Split("x-25")
	require.Error(t, err)
}

// memSequenceStore keeps allocated numbers under a mutex so that
// scan-and-insert is atomic, the way the real table lock makes it.
type memSequenceStore struct {
	mu      sync.Mutex
	numbers map[domain.OrderKind][]string
}

func newMemSequenceStore() *memSequenceStore {
	return &memSequenceStore{numbers: make(map[domain.OrderKind][]string)}
}

func (s *memSequenceStore) MaxPrefix(_ context.Context, kind domain.OrderKind, year string) (int, error) {
	max := 0
	for _, number := range s.numbers[kind] {
		seq, suffix, err := Split(number)
		if err != nil || suffix != year {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (s *memSequenceStore) allocate(ctx context.Context, a *Allocator, kind domain.OrderKind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	number, err := a.Next(ctx, s, kind)
	if err != nil {
		return "", err
	}
	s.numbers[kind] = append(s.numbers[kind], number)
	return number, nil
}

func TestAllocatorFirstOfYear(t *testing.T) {
	store := newMemSequenceStore()
	alloc := NewAllocator(fixedClock{now: time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)})

	number, err := store.allocate(context.Background(), alloc, domain.OrderKindInternal)
	require.NoError(t, err)
	require.Equal(t, "1-25", number)
}

func TestAllocatorIgnoresOtherYearsAndKinds(t *testing.T) {
	store := newMemSequenceStore()
	store.numbers[domain.OrderKindInternal] = []string{"1-25", "2-25", "1-24"}
	store.numbers[domain.OrderKindExternal] = []string{"9-25"}
	alloc := NewAllocator(fixedClock{now: time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)})

	number, err := store.allocate(context.Background(), alloc, domain.OrderKindInternal)
	require.NoError(t, err)
	require.Equal(t, "3-25", number)
}

func TestAllocatorSequencesAreStrictlyIncreasing(t *testing.T) {
	store := newMemSequenceStore()
	alloc := NewAllocator(fixedClock{now: time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)})

	last := 0
	for i := 0; i < 5; i++ {
		number, err := store.allocate(context.Background(), alloc, domain.OrderKindExternal)
		require.NoError(t, err)
		seq, _, err := Split(number)
		require.NoError(t, err)
		require.Greater(t, seq, last)
		last = seq
	}

	// Deleting an order never frees its number: the scan still sees the max.
	store.numbers[domain.OrderKindExternal] = store.numbers[domain.OrderKindExternal][:4]
	number, err := store.allocate(context.Background(), alloc, domain.OrderKindExternal)
	require.NoError(t, err)
	seq, _, err := Split(number)
	require.NoError(t, err)
	require.Equal(t, 5, seq)
}

type failingSequenceStore struct{ err error }

func (s failingSequenceStore) MaxPrefix(context.Context, domain.OrderKind, string) (int, error) {
	return 0, s.err
}

func TestAllocatorWrapsStoreFailure(t *testing.T) {
	alloc := NewAllocator(fixedClock{now: time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)})
	cause := errors.New("connection refused")

	_, err := alloc.Next(context.Background(), failingSequenceStore{err: cause}, domain.OrderKindInternal)
	require.Error(t, err)

	var domainErr *util.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, "STORAGE_UNAVAILABLE", domainErr.Code)
	require.ErrorIs(t, err, cause)
}

func TestAllocatorConcurrentCallersGetDistinctNumbers(t *testing.T) {
	store := newMemSequenceStore()
	alloc := NewAllocator(fixedClock{now: time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)})

	const callers = 32
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := store.allocate(context.Background(), alloc, domain.OrderKindInternal)
			require.NoError(t, err)
			results <- number
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]struct{}, callers)
	for number := range results {
		_, dup := seen[number]
		require.False(t, dup, "duplicate number %s", number)
		seen[number] = struct{}{}
	}
	require.Len(t, seen, callers)
	// No gaps: exactly 1..callers for the year.
	for seq := 1; seq <= callers; seq++ {
		_, ok := seen[Format(seq, "25")]
		require.True(t, ok, "missing %d-25", seq)
	}
}
