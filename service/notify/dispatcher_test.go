package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookborrow/model"
	"bookborrow/service/notify"
)

type senderMock struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (m *senderMock) Send(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return m.err
}

func (m *senderMock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func detail() *model.BorrowDetail {
	return &model.BorrowDetail{
		Borrow: model.Borrow{
			ID: 12, BookID: 3, BorrowerID: "reader-9",
			BorrowDate:         time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC),
			ExpectedReturnDate: time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC),
			IsActive:           true,
		},
		BookTitle: "Dune", BookAuthor: "Frank Herbert",
	}
}

func TestRender(t *testing.T) {
	require.Equal(t, "There are no overdue borrowings today.",
		notify.Render(model.Notification{Event: model.EventNoOverdueToday}))

	txt := notify.Render(model.Notification{Event: model.EventBorrowOverdue, Borrow: detail()})
	require.Contains(t, txt, "This Borrow is overdue:")
	require.Contains(t, txt, "- Borrow ID: 12")
	require.Contains(t, txt, "- Expected return date: 2025-12-18")
	require.Contains(t, txt, "- Book title: Dune")
	require.Contains(t, txt, "- Borrower: reader-9")

	txt = notify.Render(model.Notification{Event: model.EventBorrowCreated, Borrow: detail()})
	require.Contains(t, txt, "Created a new Borrow:")
}

func TestNotify_NeverBlocks(t *testing.T) {
	s := &senderMock{}
	d := notify.NewDispatcher(s, quietLog(), 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(context.Background(), model.Notification{Event: model.EventNoOverdueToday})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	d.Drain(context.Background())
	require.Equal(t, 2, s.count())
}

func TestRun_DeliversAndFlushesOnCancel(t *testing.T) {
	s := &senderMock{err: errors.New("telegram down")}
	d := notify.NewDispatcher(s, quietLog(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	d.Notify(ctx, model.Notification{Event: model.EventBorrowCreated, Borrow: detail()})
	require.Eventually(t, func() bool { return s.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)

	d.Notify(context.Background(), model.Notification{Event: model.EventNoOverdueToday})
	d.Drain(context.Background())
	require.Equal(t, 2, s.count())
}
