package sweep

import (
	"context"
	"log/slog"
	"time"

	"bookborrow/model"
	"bookborrow/service/fee"
)

type Ledger interface {
	ListOpenPastDue(ctx context.Context, asOf time.Time) ([]model.BorrowDetail, error)
}

type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

type Service interface {
	// Run reports every open borrow past due on asOf, or a single
	// "no overdue" message when there is none. It never modifies a borrow.
	Run(ctx context.Context, asOf time.Time) (int, error)
}

type service struct {
	ledger   Ledger
	notifier Notifier
	log      *slog.Logger
}

func New(ledger Ledger, notifier Notifier, log *slog.Logger) Service {
	return &service{ledger: ledger, notifier: notifier, log: log}
}

func (s *service) Run(ctx context.Context, asOf time.Time) (int, error) {
	asOf = fee.Date(asOf)
	due, err := s.ledger.ListOpenPastDue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		s.notifier.Notify(ctx, model.Notification{Event: model.EventNoOverdueToday})
		s.log.Info("overdue sweep done", "as_of", asOf.Format(time.DateOnly), "overdue", 0)
		return 0, nil
	}
	for i := range due {
		s.notifier.Notify(ctx, model.Notification{Event: model.EventBorrowOverdue, Borrow: &due[i]})
	}
	s.log.Info("overdue sweep done", "as_of", asOf.Format(time.DateOnly), "overdue", len(due))
	return len(due), nil
}
