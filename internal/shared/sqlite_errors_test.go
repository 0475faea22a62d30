package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsSQLiteConflictError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY: database busy"), true},
		{errors.New("database is locked (5)"), true},
		{errors.New("no such table: attempts"), false},
	}
	for _, tc := range cases {
		if got := IsSQLiteConflictError(tc.err); got != tc.want {
			t.Errorf("IsSQLiteConflictError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryOnConflictRetriesBusy(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}, "op",
		func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryOnConflictStopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("constraint failed")
	err := RetryOnConflict(context.Background(), RetryPolicy{MaxRetries: 5, BaseDelay: time.Millisecond}, "op",
		func(context.Context) error {
			calls++
			return boom
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryOnConflictGivesUp(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}, "op",
		func(context.Context) error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
	if err == nil || calls != 2 {
		t.Fatalf("expected failure after 2 calls, got err=%v calls=%d", err, calls)
	}
}
