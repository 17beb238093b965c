package signup

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/neiist-dev/activities-backend/internal/activity"
)

// memoryStore stands in for the database. Its mutex plays the role the
// transaction plus the FOR UPDATE row lock play in production: held for one
// whole applyInTx call, so every change sees the previous one's count.
type memoryStore struct {
	mu      sync.Mutex
	props   *activity.Properties
	signups map[string]bool
}

func newMemoryStore(props *activity.Properties) *memoryStore {
	return &memoryStore{props: props, signups: map[string]bool{}}
}

func (s *memoryStore) apply(eventID, memberID string, want bool, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return applyInTx(memoryTx{store: s}, eventID, memberID,
		func(props *activity.Properties, count int, already bool) (Decision, error) {
			return evaluateSignup(props, count, already, want, now)
		})
}

type memoryTx struct {
	store *memoryStore
}

func (m memoryTx) EventExists(string) error { return nil }

func (m memoryTx) LockProperties(string) (*activity.Properties, error) {
	return m.store.props, nil
}

func (m memoryTx) CountSignups(string) (int, error) {
	return len(m.store.signups), nil
}

func (m memoryTx) HasSignup(_, memberID string) (bool, error) {
	return m.store.signups[memberID], nil
}

func (m memoryTx) CreateSignup(s *Signup) error {
	m.store.signups[s.MemberID] = true
	return nil
}

func (m memoryTx) DeleteSignup(_, memberID string) error {
	delete(m.store.signups, memberID)
	return nil
}

// With one slot left and many concurrent signups, exactly one may win; the
// rest get the capacity error and the store never exceeds the limit.
func TestApplyNoOverbookingUnderConcurrency(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	max := 2
	store := newMemoryStore(&activity.Properties{SignupEnabled: true, MaxAttendees: &max})
	store.signups["ist100001"] = true

	const contenders = 8
	var wg sync.WaitGroup
	decisions := make([]Decision, contenders)
	errs := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i], errs[i] = store.apply("ev1", fmt.Sprintf("ist20%04d", i), true, now)
		}(i)
	}
	wg.Wait()

	creates, full := 0, 0
	for i := 0; i < contenders; i++ {
		switch {
		case errs[i] == nil && decisions[i] == DecisionCreate:
			creates++
		case errors.Is(errs[i], ErrCapacityFull):
			full++
		default:
			t.Errorf("contender %d: decision=%v err=%v", i, decisions[i], errs[i])
		}
	}

	if creates != 1 {
		t.Errorf("creates = %d, want exactly 1", creates)
	}
	if full != contenders-1 {
		t.Errorf("capacity rejections = %d, want %d", full, contenders-1)
	}
	if len(store.signups) != max {
		t.Errorf("stored signups = %d, want %d", len(store.signups), max)
	}
}

// The same member racing themselves signs up once; duplicates collapse to
// no-ops instead of double rows or spurious capacity errors.
func TestApplyConcurrentDuplicateSignupsCollapse(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	max := 5
	store := newMemoryStore(&activity.Properties{SignupEnabled: true, MaxAttendees: &max})

	const attempts = 6
	var wg sync.WaitGroup
	decisions := make([]Decision, attempts)
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i], errs[i] = store.apply("ev1", "ist110042", true, now)
		}(i)
	}
	wg.Wait()

	creates, noops := 0, 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Errorf("attempt %d: unexpected error %v", i, errs[i])
			continue
		}
		switch decisions[i] {
		case DecisionCreate:
			creates++
		case DecisionNoop:
			noops++
		}
	}

	if creates != 1 || noops != attempts-1 {
		t.Errorf("creates/noops = %d/%d, want 1/%d", creates, noops, attempts-1)
	}
	if len(store.signups) != 1 {
		t.Errorf("stored signups = %d, want 1", len(store.signups))
	}
}

// Cancellation under the same lock frees the slot for the next contender.
func TestApplyCancelFreesCapacity(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	max := 1
	store := newMemoryStore(&activity.Properties{SignupEnabled: true, MaxAttendees: &max})
	store.signups["ist100001"] = true

	if _, err := store.apply("ev1", "ist110042", true, now); !errors.Is(err, ErrCapacityFull) {
		t.Fatalf("err = %v, want ErrCapacityFull while full", err)
	}

	if d, err := store.apply("ev1", "ist100001", false, now); err != nil || d != DecisionDelete {
		t.Fatalf("cancel: decision=%v err=%v", d, err)
	}

	if d, err := store.apply("ev1", "ist110042", true, now); err != nil || d != DecisionCreate {
		t.Fatalf("signup after cancel: decision=%v err=%v", d, err)
	}
}
