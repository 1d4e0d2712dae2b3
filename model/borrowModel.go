// model/borrowModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Borrow struct {
	ID                 int64      `json:"id"`
	BookID             int64      `json:"book_id"`
	BorrowerID         string     `json:"borrower_id"`
	BorrowDate         time.Time  `json:"borrow_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`
	IsActive           bool       `json:"is_active"`
}

// BorrowDetail is a borrow joined with the identity of its book.
type BorrowDetail struct {
	Borrow
	BookTitle    string          `json:"book_title"`
	BookAuthor   string          `json:"book_author"`
	BookCover    Cover           `json:"book_cover"`
	BookDailyFee decimal.Decimal `json:"-"`
}

type BorrowFilter struct {
	BorrowerID *string
	IsActive   *bool
}
