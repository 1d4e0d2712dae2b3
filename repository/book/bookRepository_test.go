package bookrepo_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"bookborrow/model"
	bookrepo "bookborrow/repository/book"
)

var (
	decrementSQL = "(?s)" + regexp.QuoteMeta("SET available_copies = available_copies - 1") + ".*" +
		regexp.QuoteMeta("AND available_copies > 0")
	incrementSQL = "(?s)" + regexp.QuoteMeta("SET available_copies = available_copies + 1") + ".*" +
		regexp.QuoteMeta("AND available_copies < total_copies")
	existsSQL = regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM books WHERE id=$1)")
)

func begin(t *testing.T) (pgxmock.PgxPoolIface, pgx.Tx) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	return mock, tx
}

func left(n int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"available_copies"}).AddRow(n)
}

func exists(ok bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(ok)
}

func TestDecrementAvailable(t *testing.T) {
	mock, tx := begin(t)
	mock.ExpectQuery(decrementSQL).WithArgs(int64(7)).WillReturnRows(left(2))

	n, err := bookrepo.New(mock).DecrementAvailable(context.Background(), tx, 7)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementAvailable_Guards(t *testing.T) {
	cases := map[string]struct {
		found bool
		want  error
	}{
		"no copy left": {found: true, want: model.ErrOutOfStock},
		"unknown book": {found: false, want: model.ErrBookNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mock, tx := begin(t)
			mock.ExpectQuery(decrementSQL).WithArgs(int64(7)).
				WillReturnRows(pgxmock.NewRows([]string{"available_copies"}))
			mock.ExpectQuery(existsSQL).WithArgs(int64(7)).WillReturnRows(exists(tc.found))

			_, err := bookrepo.New(mock).DecrementAvailable(context.Background(), tx, 7)
			require.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDecrementAvailable_DriverError(t *testing.T) {
	mock, tx := begin(t)
	boom := errors.New("conn reset")
	mock.ExpectQuery(decrementSQL).WithArgs(int64(7)).WillReturnError(boom)

	_, err := bookrepo.New(mock).DecrementAvailable(context.Background(), tx, 7)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementAvailable(t *testing.T) {
	mock, tx := begin(t)
	mock.ExpectQuery(incrementSQL).WithArgs(int64(7)).WillReturnRows(left(3))

	n, err := bookrepo.New(mock).IncrementAvailable(context.Background(), tx, 7)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementAvailable_AtCeiling(t *testing.T) {
	mock, tx := begin(t)
	mock.ExpectQuery(incrementSQL).WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"available_copies"}))
	mock.ExpectQuery(existsSQL).WithArgs(int64(7)).WillReturnRows(exists(true))

	_, err := bookrepo.New(mock).IncrementAvailable(context.Background(), tx, 7)
	require.ErrorIs(t, err, model.ErrInventoryConsistency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementAvailable_UnknownBook(t *testing.T) {
	mock, tx := begin(t)
	mock.ExpectQuery(incrementSQL).WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows([]string{"available_copies"}))
	mock.ExpectQuery(existsSQL).WithArgs(int64(8)).WillReturnRows(exists(false))

	_, err := bookrepo.New(mock).IncrementAvailable(context.Background(), tx, 8)
	require.ErrorIs(t, err, model.ErrBookNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBook_NotFound(t *testing.T) {
	mock, tx := begin(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id=$1")).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := bookrepo.New(mock).DeleteBook(context.Background(), tx, 4)
	require.ErrorIs(t, err, model.ErrBookNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOpenBorrows(t *testing.T) {
	mock, tx := begin(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM borrows WHERE book_id=$1 AND is_active")).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := bookrepo.New(mock).CountOpenBorrows(context.Background(), tx, 4)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
