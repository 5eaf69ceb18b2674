package quiz

import (
	"context"
	"sync"
	"time"

	"flashquiz-backend/internal/logger"
)

// SendFunc delivers one outcome, typically an HTTP call to the progress API.
type SendFunc func(ctx context.Context, o Outcome) error

// AsyncReporter sends each outcome on its own goroutine. Failures are logged
// and dropped; nothing is retried.
type AsyncReporter struct {
	send    SendFunc
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewAsyncReporter(send SendFunc, timeout time.Duration, log *logger.Logger) *AsyncReporter {
	return &AsyncReporter{send: send, timeout: timeout, log: log.With("component", "reporter")}
}

// Report returns immediately. The send runs detached from ctx's
// cancellation so that moving on to the next card never aborts it.
func (r *AsyncReporter) Report(ctx context.Context, o Outcome) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		sendCtx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			sendCtx, cancel = context.WithTimeout(sendCtx, r.timeout)
			defer cancel()
		}

		if err := r.send(sendCtx, o); err != nil {
			r.log.Warn("progress report failed", "flashcard_id", o.FlashcardID, "error", err)
		}
	}()
}

// Wait blocks until every report issued so far has finished.
func (r *AsyncReporter) Wait() {
	r.wg.Wait()
}
