package borrowsvc_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookborrow/model"
	borrowsvc "bookborrow/service/borrow"
)

// store is an in-memory stand-in for the books and borrows tables. Writes made
// through a memTx are undone when the tx rolls back.
type store struct {
	mu      sync.Mutex
	books   map[int64]*model.Book
	borrows map[int64]*model.BorrowDetail
	nextID  int64

	failInsert    error
	failIncrement error
	failCommit    error
}

var (
	_ borrowsvc.Repo    = (*store)(nil)
	_ borrowsvc.Catalog = (*store)(nil)
)

func newStore() *store {
	return &store{books: map[int64]*model.Book{}, borrows: map[int64]*model.BorrowDetail{}}
}

func (s *store) addBook(id int64, copies int64, dailyFee int64) {
	s.books[id] = &model.Book{
		ID: id, Title: "Dune", Author: "Frank Herbert", Cover: model.CoverHard,
		DailyFee: decimal.NewFromInt(dailyFee), AvailableCopies: copies, TotalCopies: copies,
	}
}

func (s *store) available(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[id].AvailableCopies
}

type memTx struct {
	pgx.Tx
	s    *store
	undo []func()
	done bool
}

func (s *store) BeginTx(ctx context.Context) (pgx.Tx, error) { return &memTx{s: s}, nil }

func (t *memTx) Commit(ctx context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	if t.s.failCommit != nil {
		return t.s.failCommit
	}
	t.done, t.undo = true, nil
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.done, t.undo = true, nil
	return nil
}

func (s *store) Detail(ctx context.Context, id int64) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *store) DecrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return model.ErrBookNotFound
	}
	if b.AvailableCopies == 0 {
		return model.ErrOutOfStock
	}
	b.AvailableCopies--
	mt := tx.(*memTx)
	mt.undo = append(mt.undo, func() { b.AvailableCopies++ })
	return nil
}

func (s *store) IncrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIncrement != nil {
		return s.failIncrement
	}
	b := s.books[id]
	if b.AvailableCopies >= b.TotalCopies {
		return model.ErrInventoryConsistency
	}
	b.AvailableCopies++
	mt := tx.(*memTx)
	mt.undo = append(mt.undo, func() { b.AvailableCopies-- })
	return nil
}

func (s *store) InsertBorrow(ctx context.Context, tx pgx.Tx, b *model.Borrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return s.failInsert
	}
	s.nextID++
	b.ID, b.IsActive = s.nextID, true
	k := s.books[b.BookID]
	s.borrows[b.ID] = &model.BorrowDetail{
		Borrow: *b, BookTitle: k.Title, BookAuthor: k.Author, BookCover: k.Cover, BookDailyFee: k.DailyFee,
	}
	id := b.ID
	mt := tx.(*memTx)
	mt.undo = append(mt.undo, func() { delete(s.borrows, id) })
	return nil
}

func (s *store) LockBorrow(ctx context.Context, tx pgx.Tx, id int64) (*model.BorrowDetail, error) {
	return s.Get(ctx, id)
}

func (s *store) MarkReturned(ctx context.Context, tx pgx.Tx, id int64, on time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.borrows[id]
	if !d.IsActive {
		return model.ErrAlreadyClosed
	}
	d.IsActive, d.ActualReturnDate = false, &on
	mt := tx.(*memTx)
	mt.undo = append(mt.undo, func() { d.IsActive, d.ActualReturnDate = true, nil })
	return nil
}

func (s *store) Get(ctx context.Context, id int64) (*model.BorrowDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.borrows[id]
	if !ok {
		return nil, model.ErrBorrowNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *store) List(ctx context.Context, f model.BorrowFilter) ([]model.BorrowDetail, error) {
	return s.filter(func(d *model.BorrowDetail) bool {
		return (f.BorrowerID == nil || d.BorrowerID == *f.BorrowerID) &&
			(f.IsActive == nil || d.IsActive == *f.IsActive)
	}), nil
}

func (s *store) ListOpen(ctx context.Context) ([]model.BorrowDetail, error) {
	return s.filter(func(d *model.BorrowDetail) bool { return d.IsActive }), nil
}

func (s *store) ListOpenPastDue(ctx context.Context, asOf time.Time) ([]model.BorrowDetail, error) {
	return s.filter(func(d *model.BorrowDetail) bool { return d.IsActive && d.ExpectedReturnDate.Before(asOf) }), nil
}

func (s *store) filter(keep func(*model.BorrowDetail) bool) []model.BorrowDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BorrowDetail
	for _, d := range s.borrows {
		if keep(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type obligation struct {
	BorrowID int64
	Kind     model.PaymentKind
	Amount   decimal.Decimal
}

type recorderMock struct {
	mu    sync.Mutex
	calls []obligation
	err   error
}

func (m *recorderMock) CreateObligation(ctx context.Context, b model.BorrowDetail, kind model.PaymentKind, amount decimal.Decimal) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, obligation{BorrowID: b.ID, Kind: kind, Amount: amount})
	p := &model.Payment{BorrowID: b.ID, Kind: kind, Status: model.PaymentPending, AmountOwed: amount}
	if m.err != nil && !errors.Is(m.err, model.ErrObligationSessionPending) {
		return nil, m.err
	}
	return p, m.err
}

type notifierMock struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (m *notifierMock) Notify(ctx context.Context, n model.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}
