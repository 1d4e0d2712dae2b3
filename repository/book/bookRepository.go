package bookrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"bookborrow/model"
	"bookborrow/util/database"
)

type Book = model.Book

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

type repo struct{ db database.Querier }

func New(db database.Querier) Repo { return &repo{db} }

const bookCols = `id, title, author, cover, daily_fee, available_copies, total_copies`

func scanBook(row pgx.Row) (*Book, error) {
	var b Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.DailyFee, &b.AvailableCopies, &b.TotalCopies); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repo) CreateBook(ctx context.Context, nb model.NewBook) (int64, error) {
	const q = `
INSERT INTO books (title, author, cover, daily_fee, total_copies, available_copies)
VALUES ($1,$2,$3,$4,$5,$5)
RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, q, nb.Title, nb.Author, nb.Cover, nb.DailyFee, nb.TotalCopies).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) List(ctx context.Context) ([]Book, error) {
	q := `SELECT ` + bookCols + ` FROM books ORDER BY id`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id=$1`
	return scanBook(r.db.QueryRow(ctx, q, id))
}

func (r *repo) TripleTaken(ctx context.Context, title, author string, cover model.Cover, excludeID int64) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM books
	WHERE title=$1 AND author=$2 AND cover=$3 AND id<>$4
)`
	var taken bool
	err := r.db.QueryRow(ctx, q, title, author, cover, excludeID).Scan(&taken)
	return taken, err
}

func (r *repo) LockForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id=$1 FOR UPDATE`
	return scanBook(tx.QueryRow(ctx, q, id))
}

func (r *repo) UpdateBook(ctx context.Context, tx pgx.Tx, b *Book) error {
	const q = `
UPDATE books
SET title=$2, author=$3, cover=$4, daily_fee=$5, total_copies=$6, available_copies=$7
WHERE id=$1`
	tag, err := tx.Exec(ctx, q, b.ID, b.Title, b.Author, b.Cover, b.DailyFee, b.TotalCopies, b.AvailableCopies)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *repo) CountOpenBorrows(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM borrows WHERE book_id=$1 AND is_active`
	var n int64
	err := tx.QueryRow(ctx, q, id).Scan(&n)
	return n, err
}

func (r *repo) DeleteBook(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

// DecrementAvailable takes one copy off the shelf. The guard and the write are
// one statement, so concurrent callers serialize on the book's row lock.
func (r *repo) DecrementAvailable(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	const q = `
UPDATE books
SET available_copies = available_copies - 1
WHERE id = $1
AND available_copies > 0
RETURNING available_copies`
	var left int64
	err := tx.QueryRow(ctx, q, id).Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	if ok, err := r.exists(ctx, tx, id); err != nil {
		return 0, err
	} else if !ok {
		return 0, model.ErrBookNotFound
	}
	return 0, model.ErrOutOfStock
}

func (r *repo) IncrementAvailable(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	const q = `
UPDATE books
SET available_copies = available_copies + 1
WHERE id = $1
AND available_copies < total_copies
RETURNING available_copies`
	var left int64
	err := tx.QueryRow(ctx, q, id).Scan(&left)
	if err == nil {
		return left, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	if ok, err := r.exists(ctx, tx, id); err != nil {
		return 0, err
	} else if !ok {
		return 0, model.ErrBookNotFound
	}
	return 0, fmt.Errorf("book %d already holds all its copies: %w", id, model.ErrInventoryConsistency)
}

func (r *repo) exists(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}
