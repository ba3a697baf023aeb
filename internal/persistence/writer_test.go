package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
)

type recordingSaver struct {
	mu      sync.Mutex
	saved   []string
	failFor int
	gate    chan struct{}
}

func (s *recordingSaver) Save(_ context.Context, state State) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor > 0 {
		s.failFor--
		return errors.New("disk full")
	}
	name := ""
	if len(state.Portfolios) > 0 {
		name = state.Portfolios[0].Name
	}
	s.saved = append(s.saved, name)
	return nil
}

func (s *recordingSaver) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

func stateNamed(name string) State {
	return State{Portfolios: []model.PortfolioView{{Name: name}}}
}

func TestWriterLatestWins(t *testing.T) {
	saver := &recordingSaver{gate: make(chan struct{})}
	w := NewWriter(saver, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Submit(stateNamed("v1"))
	// v1 is now blocked inside Save; v2 and v3 queue up behind it
	time.Sleep(10 * time.Millisecond)
	w.Submit(stateNamed("v2"))
	w.Submit(stateNamed("v3"))
	close(saver.gate)

	w.WaitSaved()

	names := saver.names()
	if len(names) == 0 || names[len(names)-1] != "v3" {
		t.Fatalf("saved = %v, want last v3", names)
	}
	for _, n := range names {
		if n == "v2" {
			t.Errorf("saved = %v, superseded v2 should be skipped", names)
		}
	}
}

func TestWriterRetries(t *testing.T) {
	saver := &recordingSaver{failFor: 2}
	w := NewWriter(saver, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	w.Submit(stateNamed("only"))
	w.WaitSaved()

	if names := saver.names(); len(names) != 1 || names[0] != "only" {
		t.Errorf("saved = %v, want [only]", names)
	}
}

func TestWriterFlushOnStop(t *testing.T) {
	saver := &recordingSaver{}
	w := NewWriter(saver, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	w.Submit(stateNamed("final"))
	cancel()
	go func() {
		w.Run(ctx)
		close(done)
	}()
	<-done

	if names := saver.names(); len(names) != 1 || names[0] != "final" {
		t.Errorf("saved = %v, want [final]", names)
	}
}
