package booksvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookborrow/model"
	"bookborrow/util/database"
)

type Book = model.Book

const (
	uniqueTriple   = "unique_title_author_cover"
	inventoryRange = "books_available_copies_range"
)

// MaxDailyFee is the first fee the books.daily_fee column cannot hold.
var MaxDailyFee = decimal.NewFromInt(1000)

type Repo interface {
	CreateBook(ctx context.Context, nb model.NewBook) (int64, error)
	List(ctx context.Context) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)
	TripleTaken(ctx context.Context, title, author string, cover model.Cover, excludeID int64) (bool, error)

	LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Book, error)
	UpdateBook(ctx context.Context, tx pgx.Tx, b *Book) error
	CountOpenBorrows(ctx context.Context, tx pgx.Tx, id int64) (int64, error)
	DeleteBook(ctx context.Context, tx pgx.Tx, id int64) error

	DecrementAvailable(ctx context.Context, tx pgx.Tx, id int64) (int64, error)
	IncrementAvailable(ctx context.Context, tx pgx.Tx, id int64) (int64, error)
}

type Service interface {
	Create(ctx context.Context, nb model.NewBook) (int64, error)
	Update(ctx context.Context, id int64, p model.BookPatch) (*Book, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Book, error)
	Detail(ctx context.Context, id int64) (*Book, error)

	// DecrementAvailability and IncrementAvailability run inside the
	// caller's transaction so the inventory change commits with the borrow.
	DecrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error
	IncrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error
}

type service struct {
	db  database.TxBeginner
	r   Repo
	log *slog.Logger
}

func New(db database.TxBeginner, r Repo, log *slog.Logger) Service {
	return &service{db: db, r: r, log: log}
}

func validate(b model.NewBook) error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	case strings.TrimSpace(b.Author) == "":
		return fmt.Errorf("%w: author is required", model.ErrInvalidInput)
	case !b.Cover.Valid():
		return fmt.Errorf("%w: cover must be hard or soft", model.ErrInvalidInput)
	case b.DailyFee.IsNegative():
		return fmt.Errorf("%w: daily fee must not be negative", model.ErrInvalidInput)
	case b.DailyFee.GreaterThanOrEqual(MaxDailyFee):
		return fmt.Errorf("%w: daily fee must be below %s", model.ErrInvalidInput, MaxDailyFee)
	case b.TotalCopies < 1:
		return fmt.Errorf("%w: total copies must be at least 1", model.ErrInvalidInput)
	}
	return nil
}

func (s *service) Create(ctx context.Context, nb model.NewBook) (int64, error) {
	if err := validate(nb); err != nil {
		return 0, err
	}
	taken, err := s.r.TripleTaken(ctx, nb.Title, nb.Author, nb.Cover, 0)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, model.ErrDuplicateCatalogEntry
	}
	id, err := s.r.CreateBook(ctx, nb)
	if err != nil {
		// lost a race with a concurrent create
		if database.IsUniqueViolation(err, uniqueTriple) {
			return 0, model.ErrDuplicateCatalogEntry
		}
		return 0, err
	}
	s.log.Info("book created", "book_id", id, "title", nb.Title, "copies", nb.TotalCopies)
	return id, nil
}

func (s *service) Update(ctx context.Context, id int64, p model.BookPatch) (_ *Book, err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			database.Rollback(ctx, tx)
		}
	}()

	b, err := s.r.LockForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	next := applyPatch(*b, p)
	if err = validate(model.NewBook{
		Title: next.Title, Author: next.Author, Cover: next.Cover,
		DailyFee: next.DailyFee, TotalCopies: next.TotalCopies,
	}); err != nil {
		return nil, err
	}
	if next.AvailableCopies < 0 {
		return nil, model.ErrInvalidInventory
	}

	if next.Title != b.Title || next.Author != b.Author || next.Cover != b.Cover {
		taken, terr := s.r.TripleTaken(ctx, next.Title, next.Author, next.Cover, id)
		if terr != nil {
			return nil, terr
		}
		if taken {
			return nil, model.ErrDuplicateCatalogEntry
		}
	}

	if err = s.r.UpdateBook(ctx, tx, &next); err != nil {
		switch {
		case database.IsUniqueViolation(err, uniqueTriple):
			err = model.ErrDuplicateCatalogEntry
		case database.IsCheckViolation(err, inventoryRange):
			err = fmt.Errorf("%w: %w", model.ErrInvalidInventory, err)
		}
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &next, nil
}

// applyPatch shifts available copies by the same delta as total copies, so
// copies currently lent out stay accounted for.
func applyPatch(b Book, p model.BookPatch) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Cover != nil {
		b.Cover = *p.Cover
	}
	if p.DailyFee != nil {
		b.DailyFee = *p.DailyFee
	}
	if p.TotalCopies != nil {
		b.AvailableCopies += *p.TotalCopies - b.TotalCopies
		b.TotalCopies = *p.TotalCopies
	}
	return b
}

// Delete refuses while any borrow of the book is open. The book row is locked
// first, so no borrow can open between the check and the delete.
func (s *service) Delete(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			database.Rollback(ctx, tx)
		}
	}()

	if _, err = s.r.LockForUpdate(ctx, tx, id); err != nil {
		return err
	}
	open, err := s.r.CountOpenBorrows(ctx, tx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return fmt.Errorf("%w: %d open", model.ErrBookHasOpenBorrows, open)
	}
	if err = s.r.DeleteBook(ctx, tx, id); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	s.log.Info("book deleted", "book_id", id)
	return nil
}

func (s *service) List(ctx context.Context) ([]Book, error)            { return s.r.List(ctx) }
func (s *service) Detail(ctx context.Context, id int64) (*Book, error) { return s.r.Detail(ctx, id) }

func (s *service) DecrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error {
	left, err := s.r.DecrementAvailable(ctx, tx, id)
	if err != nil {
		return err
	}
	s.log.Debug("copy taken", "book_id", id, "available", left)
	return nil
}

func (s *service) IncrementAvailability(ctx context.Context, tx pgx.Tx, id int64) error {
	left, err := s.r.IncrementAvailable(ctx, tx, id)
	if err != nil {
		return err
	}
	s.log.Debug("copy returned", "book_id", id, "available", left)
	return nil
}
