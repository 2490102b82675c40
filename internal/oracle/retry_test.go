package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v5"
)

func fastRetry(next Oracle, maxTries int) Oracle {
	o := WithRetry(next, maxTries)
	if r, ok := o.(*retrying); ok {
		r.policy = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	}
	return o
}

func TestWithRetrySingleTryIsPassthrough(t *testing.T) {
	base := Func(func(context.Context, string) (string, error) { return "ok", nil })
	if _, ok := WithRetry(base, 1).(*retrying); ok {
		t.Fatal("Expected no retry wrapper for a single try")
	}
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	base := Func(func(context.Context, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "done", nil
	})

	out, err := fastRetry(base, 3).Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if out != "done" || calls != 3 {
		t.Errorf("Expected done after 3 calls, got %q after %d", out, calls)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("down")
	base := Func(func(context.Context, string) (string, error) {
		calls++
		return "", boom
	})

	_, err := fastRetry(base, 2).Generate(context.Background(), "p")
	if !errors.Is(err, boom) {
		t.Fatalf("Expected last error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
}

func TestWithRetryDoesNotRetryDeadline(t *testing.T) {
	calls := 0
	base := Func(func(context.Context, string) (string, error) {
		calls++
		return "", context.DeadlineExceeded
	})

	_, err := fastRetry(base, 5).Generate(context.Background(), "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected a single attempt, got %d", calls)
	}
}
