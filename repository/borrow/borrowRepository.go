// repository/borrow/borrowRepository.go
package borrowrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"bookborrow/model"
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

type repo struct {
	db database.Querier
}

func New(db database.Querier) Repo { return &repo{db: db} }

var dialect = goqu.Dialect("postgres")

func detailQuery() *goqu.SelectDataset {
	return dialect.
		From(goqu.T("borrows").As("b")).
		Join(goqu.T("books").As("k"), goqu.On(goqu.I("k.id").Eq(goqu.I("b.book_id")))).
		Select(
			"b.id", "b.book_id", "b.borrower_id", "b.borrow_date", "b.expected_return_date",
			"b.actual_return_date", "b.is_active",
			"k.title", "k.author", "k.cover", "k.daily_fee",
		)
}

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	err := row.Scan(
		&d.ID, &d.BookID, &d.BorrowerID, &d.BorrowDate, &d.ExpectedReturnDate,
		&d.ActualReturnDate, &d.IsActive,
		&d.BookTitle, &d.BookAuthor, &d.BookCover, &d.BookDailyFee,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBorrowNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repo) InsertBorrow(ctx context.Context, tx pgx.Tx, b *model.Borrow) error {
	const q = `
		INSERT INTO borrows (book_id, borrower_id, borrow_date, expected_return_date, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id`
	if err := tx.QueryRow(ctx, q, b.BookID, b.BorrowerID, b.BorrowDate, b.ExpectedReturnDate).Scan(&b.ID); err != nil {
		return err
	}
	b.IsActive = true
	return nil
}

// lockQuery locks only the borrow row; the joined book row stays free for
// the inventory update that follows in the same transaction.
func lockQuery(id int64) *goqu.SelectDataset {
	return detailQuery().
		Where(goqu.I("b.id").Eq(id)).
		ForUpdate(exp.Wait, goqu.T("b"))
}

func (r *repo) LockBorrow(ctx context.Context, tx pgx.Tx, id int64) (*Detail, error) {
	sql, args, err := lockQuery(id).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build lock query: %w", err)
	}
	return scanDetail(tx.QueryRow(ctx, sql, args...))
}

func (r *repo) MarkReturned(ctx context.Context, tx pgx.Tx, id int64, on time.Time) error {
	const q = `
		UPDATE borrows
		SET is_active = FALSE,
			actual_return_date = $2
		WHERE id = $1
		AND is_active`
	tag, err := tx.Exec(ctx, q, id, on)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAlreadyClosed
	}
	return nil
}

func (r *repo) Get(ctx context.Context, id int64) (*Detail, error) {
	sql, args, err := detailQuery().Where(goqu.I("b.id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}
	return scanDetail(r.db.QueryRow(ctx, sql, args...))
}

func listQuery(f model.BorrowFilter) *goqu.SelectDataset {
	ds := detailQuery()
	if f.BorrowerID != nil {
		ds = ds.Where(goqu.I("b.borrower_id").Eq(*f.BorrowerID))
	}
	if f.IsActive != nil {
		ds = ds.Where(goqu.I("b.is_active").Eq(*f.IsActive))
	}
	return ds.Order(goqu.I("b.borrow_date").Desc(), goqu.I("b.id").Desc())
}

func openQuery() *goqu.SelectDataset {
	return detailQuery().
		Where(goqu.I("b.is_active").IsTrue()).
		Order(goqu.I("b.expected_return_date").Asc(), goqu.I("b.id").Asc())
}

// pastDueQuery matches open borrows whose expected return date is strictly
// before asOf.
func pastDueQuery(asOf time.Time) *goqu.SelectDataset {
	return detailQuery().
		Where(
			goqu.I("b.is_active").IsTrue(),
			goqu.I("b.expected_return_date").Lt(asOf),
		).
		Order(goqu.I("b.expected_return_date").Asc(), goqu.I("b.id").Asc())
}

func (r *repo) List(ctx context.Context, f model.BorrowFilter) ([]Detail, error) {
	return r.query(ctx, listQuery(f))
}

func (r *repo) ListOpen(ctx context.Context) ([]Detail, error) { return r.query(ctx, openQuery()) }

func (r *repo) ListOpenPastDue(ctx context.Context, asOf time.Time) ([]Detail, error) {
	return r.query(ctx, pastDueQuery(asOf))
}

func (r *repo) query(ctx context.Context, ds *goqu.SelectDataset) ([]Detail, error) {
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
