package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/invest_tracker/utils"
)

type Saver interface {
	Save(ctx context.Context, state State) error
}

// Writer persists state off the caller's path. Only the latest submitted
// state is kept; intermediate ones are skipped.
type Writer struct {
	saver   Saver
	backoff time.Duration

	mu      sync.Mutex
	pending *State
	version uint64
	saved   uint64

	signal chan struct{}
	idle   *sync.Cond
}

func NewWriter(saver Saver, backoff time.Duration) *Writer {
	if backoff <= 0 {
		backoff = time.Second
	}
	w := &Writer{
		saver:   saver,
		backoff: backoff,
		signal:  make(chan struct{}, 1),
	}
	w.idle = sync.NewCond(&w.mu)
	return w
}

// Submit replaces any pending state. It never blocks.
func (w *Writer) Submit(state State) {
	w.mu.Lock()
	w.pending = &state
	w.version++
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Run saves submitted states until ctx is done, then makes a final attempt
// with a fresh context.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flush(flushCtx)
			cancel()
			return
		case <-w.signal:
			if !w.flush(ctx) {
				w.retryLater(ctx)
			}
		}
	}
}

func (w *Writer) retryLater(ctx context.Context) {
	timer := time.NewTimer(w.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// flush saves the pending state if any. It reports false when a save failed
// and the state is still pending.
func (w *Writer) flush(ctx context.Context) bool {
	w.mu.Lock()
	state := w.pending
	version := w.version
	w.pending = nil
	w.mu.Unlock()

	if state == nil {
		return true
	}

	ctx = utils.EnsureRqID(ctx)
	err := w.saver.Save(ctx, *state)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		slog.Error("write-behind save failed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		// keep the failed state unless something newer arrived meanwhile
		if w.pending == nil {
			w.pending = state
		}
		return false
	}

	if version > w.saved {
		w.saved = version
	}
	w.idle.Broadcast()
	return true
}

// WaitSaved blocks until every state submitted so far has been saved.
func (w *Writer) WaitSaved() {
	w.mu.Lock()
	defer w.mu.Unlock()
	target := w.version
	for w.saved < target {
		w.idle.Wait()
	}
}
