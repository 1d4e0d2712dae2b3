// Package notify hands borrow events to an outside channel without making the
// caller wait on it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookborrow/model"
)

type Sender interface {
	Send(ctx context.Context, text string) error
}

type Dispatcher struct {
	ch          chan model.Notification
	sender      Sender
	log         *slog.Logger
	sendTimeout time.Duration
}

const (
	defaultQueue       = 256
	defaultSendTimeout = 10 * time.Second
	drainTimeout       = 15 * time.Second
)

func NewDispatcher(sender Sender, log *slog.Logger, queue int) *Dispatcher {
	if queue <= 0 {
		queue = defaultQueue
	}
	return &Dispatcher{
		ch:          make(chan model.Notification, queue),
		sender:      sender,
		log:         log,
		sendTimeout: defaultSendTimeout,
	}
}

// Notify enqueues n and returns at once. When the queue is full the
// notification is dropped.
func (d *Dispatcher) Notify(ctx context.Context, n model.Notification) {
	select {
	case d.ch <- n:
	default:
		d.log.Warn("notification queue full, dropping", "event", n.Event)
	}
}

// Run delivers queued notifications until ctx is cancelled, then flushes
// whatever is still queued.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			dctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			d.Drain(dctx)
			return nil
		case n := <-d.ch:
			d.deliver(ctx, n)
		}
	}
}

// Drain delivers everything queued right now and returns.
func (d *Dispatcher) Drain(ctx context.Context) {
	for {
		select {
		case n := <-d.ch:
			d.deliver(ctx, n)
		default:
			return
		}
		if ctx.Err() != nil {
			if left := len(d.ch); left > 0 {
				d.log.Warn("notifications left undelivered", "count", left)
			}
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n model.Notification) {
	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	if err := d.sender.Send(sctx, Render(n)); err != nil {
		args := []any{"event", n.Event, "err", err}
		if n.Borrow != nil {
			args = append(args, "borrow_id", n.Borrow.ID)
		}
		d.log.Warn("notification failed", args...)
	}
}

func Render(n model.Notification) string {
	switch n.Event {
	case model.EventNoOverdueToday:
		return "There are no overdue borrowings today."
	case model.EventBorrowCreated:
		return "Created a new Borrow:\n\n" + borrowLines(n.Borrow)
	case model.EventBorrowOverdue:
		return "This Borrow is overdue:\n\n" + borrowLines(n.Borrow)
	default:
		return string(n.Event)
	}
}

func borrowLines(b *model.BorrowDetail) string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Borrow ID: %d\n", b.ID)
	fmt.Fprintf(&sb, "- Borrow date: %s\n", b.BorrowDate.Format(time.DateOnly))
	fmt.Fprintf(&sb, "- Expected return date: %s\n\n", b.ExpectedReturnDate.Format(time.DateOnly))
	fmt.Fprintf(&sb, "- Book ID: %d\n", b.BookID)
	fmt.Fprintf(&sb, "- Book title: %s\n", b.BookTitle)
	fmt.Fprintf(&sb, "- Book author: %s\n\n", b.BookAuthor)
	fmt.Fprintf(&sb, "- Borrower: %s", b.BorrowerID)
	return sb.String()
}
