//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPool_RunsAndDrains(t *testing.T) {
	p := NewPool(2, 16, nil)
	p.Start(context.Background())

	var n int32
	for i := 0; i < 10; i++ {
		if err := p.Submit(func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	p.Stop()
	if got := atomic.LoadInt32(&n); got != 10 {
		t.Fatalf("ran %d tasks, want 10", got)
	}
	if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("submit after stop: want ErrStopped, got %v", err)
	}
	p.Stop() // idempotent
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(1, 1, nil) // not started, nothing consumes
	if err := p.Submit(func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("want ErrQueueFull, got %v", err)
	}
	if err := p.Submit(nil); err == nil {
		t.Fatal("nil task must be rejected")
	}
}

func TestPool_SurvivesPanicsAndErrors(t *testing.T) {
	p := NewPool(1, 4, nil)
	p.Start(context.Background())
	var ok int32
	_ = p.Submit(func(ctx context.Context) error { panic("boom") })
	_ = p.Submit(func(ctx context.Context) error { return errors.New("fail") })
	_ = p.Submit(func(ctx context.Context) error { atomic.StoreInt32(&ok, 1); return nil })
	p.Stop()
	if atomic.LoadInt32(&ok) != 1 {
		t.Fatal("worker died before the last task")
	}
}
