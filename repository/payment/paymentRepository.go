package paymentrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"bookborrow/model"
	"bookborrow/util/database"
)

type Payment = model.Payment

var ErrNotFound = errors.New("payment not found")

type Repo interface {
	InsertPending(ctx context.Context, borrowID int64, kind model.PaymentKind, amount decimal.Decimal, externalID string) (*Payment, error)
	AttachSession(ctx context.Context, id int64, reference, url string) (bool, error)
	FindBySessionReference(ctx context.Context, reference string) (*Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*Payment, error)
	MarkPaid(ctx context.Context, id int64) (bool, error)
	ListByBorrow(ctx context.Context, borrowID int64) ([]Payment, error)
	ListAwaitingSession(ctx context.Context, limit int) ([]Payment, error)
}

type repo struct{ db database.Querier }

func New(db database.Querier) Repo { return &repo{db} }

const paymentCols = `id, borrow_id, kind, status, amount_owed, external_id, session_reference, session_url, paid_at, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.BorrowID, &p.Kind, &p.Status, &p.AmountOwed, &p.ExternalID,
		&p.SessionReference, &p.SessionURL, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) InsertPending(ctx context.Context, borrowID int64, kind model.PaymentKind, amount decimal.Decimal, externalID string) (*Payment, error) {
	q := `
INSERT INTO payments (borrow_id, kind, status, amount_owed, external_id)
VALUES ($1,$2,'pending',$3,$4)
RETURNING ` + paymentCols
	return scanPayment(r.db.QueryRow(ctx, q, borrowID, kind, amount, externalID))
}

// AttachSession reports false when the payment already carries a reference.
func (r *repo) AttachSession(ctx context.Context, id int64, reference, url string) (bool, error) {
	const q = `
UPDATE payments
SET session_reference=$2, session_url=$3
WHERE id=$1 AND session_reference IS NULL`
	tag, err := r.db.Exec(ctx, q, id, reference, url)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) FindBySessionReference(ctx context.Context, reference string) (*Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE session_reference=$1`
	return scanPayment(r.db.QueryRow(ctx, q, reference))
}

func (r *repo) FindByExternalID(ctx context.Context, externalID string) (*Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE external_id=$1`
	return scanPayment(r.db.QueryRow(ctx, q, externalID))
}

// MarkPaid reports whether this call moved the payment out of pending.
func (r *repo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	const q = `
UPDATE payments
SET status='paid', paid_at=NOW()
WHERE id=$1 AND status='pending'`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListByBorrow(ctx context.Context, borrowID int64) ([]Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE borrow_id=$1 ORDER BY id`
	return r.list(ctx, q, borrowID)
}

func (r *repo) ListAwaitingSession(ctx context.Context, limit int) ([]Payment, error) {
	q := `
SELECT ` + paymentCols + `
FROM payments
WHERE status='pending' AND session_reference IS NULL
ORDER BY created_at
LIMIT $1`
	return r.list(ctx, q, limit)
}

func (r *repo) list(ctx context.Context, q string, args ...any) ([]Payment, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
