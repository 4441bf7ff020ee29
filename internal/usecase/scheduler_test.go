package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (g *countingGenerator) Generate(context.Context, Source) (*GenerateResult, error) {
	g.calls.Add(1)
	return &GenerateResult{}, g.err
}

func TestSchedulerRunsUntilStopped(t *testing.T) {
	gen := &countingGenerator{err: ErrRunInProgress}
	s := NewScheduler(gen, 5*time.Millisecond, zap.NewNop())
	s.Start(context.Background())
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for gen.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Stop()
	after := gen.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := gen.calls.Load(); got != after {
		t.Errorf("scheduler kept running after Stop: %d -> %d", after, got)
	}
	s.Stop()
}

func TestSchedulerDisabled(t *testing.T) {
	gen := &countingGenerator{}
	s := NewScheduler(gen, 0, zap.NewNop())
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	if gen.calls.Load() != 0 {
		t.Error("disabled scheduler should never run")
	}
}
