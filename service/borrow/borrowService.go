package borrowsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookborrow/model"
	"bookborrow/service/fee"
	"bookborrow/util/database"
)

type Detail = model.BorrowDetail

type Repo interface {
	InsertBorrow(ctx context.Context, tx pgx.Tx, b *model.Borrow) error
	LockBorrow(ctx context.Context, tx pgx.Tx, id int64) (*Detail, error)
	MarkReturned(ctx context.Context, tx pgx.Tx, id int64, on time.Time) error

	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, f model.BorrowFilter) ([]Detail, error)
	ListOpen(ctx context.Context) ([]Detail, error)
	ListOpenPastDue(ctx context.Context, asOf time.Time) ([]Detail, error)
}

// Catalog is the slice of the book service the ledger drives.
type Catalog interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
	DecrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error
	IncrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error
}

type Recorder interface {
	CreateObligation(ctx context.Context, b model.BorrowDetail, kind model.PaymentKind, amount decimal.Decimal) (*model.Payment, error)
}

type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

type OpenRequest struct {
	BookID     int64
	BorrowerID string
	// BorrowDate defaults to today when zero.
	BorrowDate         time.Time
	ExpectedReturnDate time.Time
}

type Service interface {
	// Open takes one copy of the book and records an open borrow in a single
	// transaction, then charges the rental fee and announces the borrow.
	// A borrow that committed is always returned, even alongside an error
	// from the payment step.
	Open(ctx context.Context, req OpenRequest) (*Detail, error)
	// Close returns the copy and closes the borrow in a single transaction,
	// then charges a fine when the return is late.
	Close(ctx context.Context, id int64) (*Detail, error)

	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, f model.BorrowFilter) ([]Detail, error)
	ListOpen(ctx context.Context) ([]Detail, error)
	ListOpenPastDue(ctx context.Context, asOf time.Time) ([]Detail, error)
}

type service struct {
	db       database.TxBeginner
	r        Repo
	catalog  Catalog
	payments Recorder
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// New wires the ledger. now may be nil, in which case time.Now is used.
func New(db database.TxBeginner, r Repo, catalog Catalog, payments Recorder, notifier Notifier, log *slog.Logger, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{db: db, r: r, catalog: catalog, payments: payments, notifier: notifier, log: log, now: now}
}

func (s *service) today() time.Time { return fee.Date(s.now()) }

func (s *service) Open(ctx context.Context, req OpenRequest) (*Detail, error) {
	if strings.TrimSpace(req.BorrowerID) == "" {
		return nil, fmt.Errorf("%w: borrower is required", model.ErrInvalidInput)
	}
	borrowDate := s.today()
	if !req.BorrowDate.IsZero() {
		borrowDate = fee.Date(req.BorrowDate)
	}
	expected := fee.Date(req.ExpectedReturnDate)
	if !expected.After(borrowDate) {
		return nil, model.ErrInvalidDateRange
	}

	book, err := s.catalog.Detail(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	b := &model.Borrow{
		BookID:             req.BookID,
		BorrowerID:         req.BorrowerID,
		BorrowDate:         borrowDate,
		ExpectedReturnDate: expected,
	}
	if err := s.openTx(ctx, b); err != nil {
		return nil, err
	}
	d := &Detail{
		Borrow:       *b,
		BookTitle:    book.Title,
		BookAuthor:   book.Author,
		BookCover:    book.Cover,
		BookDailyFee: book.DailyFee,
	}
	s.log.Info("borrow opened", "borrow_id", b.ID, "book_id", b.BookID, "borrower_id", b.BorrowerID,
		"expected_return_date", expected.Format(time.DateOnly))

	var errs error
	if amount := fee.RentalFee(book.DailyFee, borrowDate, expected); amount.IsPositive() {
		errs = s.charge(ctx, *d, model.PaymentRental, amount)
	}
	s.notifier.Notify(ctx, model.Notification{Event: model.EventBorrowCreated, Borrow: d})
	return d, errs
}

// openTx decrements the book and inserts the borrow. Once the decrement has
// gone through, any later failure is an inventory consistency failure and the
// whole transaction is rolled back.
func (s *service) openTx(ctx context.Context, b *model.Borrow) (err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			database.Rollback(ctx, tx)
		}
	}()

	if err = s.catalog.DecrementAvailability(ctx, tx, b.BookID); err != nil {
		return err
	}
	if err = s.r.InsertBorrow(ctx, tx, b); err != nil {
		return s.consistency(err, "insert borrow", "book_id", b.BookID)
	}
	if err = tx.Commit(ctx); err != nil {
		return s.consistency(err, "commit open", "book_id", b.BookID)
	}
	return nil
}

func (s *service) Close(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.closeTx(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("borrow closed", "borrow_id", d.ID, "book_id", d.BookID,
		"actual_return_date", d.ActualReturnDate.Format(time.DateOnly))

	if fee.DaysBetween(d.ExpectedReturnDate, *d.ActualReturnDate) <= 0 {
		return d, nil
	}
	amount := fee.FineAmount(d.BookDailyFee, d.ExpectedReturnDate, *d.ActualReturnDate)
	if !amount.IsPositive() {
		return d, nil
	}
	return d, s.charge(ctx, *d, model.PaymentFine, amount)
}

func (s *service) closeTx(ctx context.Context, id int64) (_ *Detail, err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			database.Rollback(ctx, tx)
		}
	}()

	d, err := s.r.LockBorrow(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsActive {
		return nil, model.ErrAlreadyClosed
	}
	on := s.today()
	if err = s.r.MarkReturned(ctx, tx, id, on); err != nil {
		return nil, err
	}
	if err = s.catalog.IncrementAvailability(ctx, tx, d.BookID); err != nil {
		return nil, s.consistency(err, "increment availability", "borrow_id", id)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, s.consistency(err, "commit close", "borrow_id", id)
	}
	d.ActualReturnDate = &on
	d.IsActive = false
	return d, nil
}

func (s *service) consistency(cause error, step string, args ...any) error {
	s.log.Error("inventory consistency failure, rolled back", append(args, "step", step, "err", cause)...)
	if errors.Is(cause, model.ErrInventoryConsistency) {
		return cause
	}
	return fmt.Errorf("%w: %s: %w", model.ErrInventoryConsistency, step, cause)
}

func (s *service) charge(ctx context.Context, d Detail, kind model.PaymentKind, amount decimal.Decimal) error {
	_, err := s.payments.CreateObligation(ctx, d, kind, amount)
	if err == nil || errors.Is(err, model.ErrObligationSessionPending) {
		return err
	}
	s.log.Error("record obligation failed", "borrow_id", d.ID, "kind", kind, "amount", amount.String(), "err", err)
	return fmt.Errorf("record %s obligation: %w", kind, err)
}

func (s *service) Get(ctx context.Context, id int64) (*Detail, error) { return s.r.Get(ctx, id) }

func (s *service) List(ctx context.Context, f model.BorrowFilter) ([]Detail, error) {
	return s.r.List(ctx, f)
}

func (s *service) ListOpen(ctx context.Context) ([]Detail, error) { return s.r.ListOpen(ctx) }

func (s *service) ListOpenPastDue(ctx context.Context, asOf time.Time) ([]Detail, error) {
	return s.r.ListOpenPastDue(ctx, fee.Date(asOf))
}
