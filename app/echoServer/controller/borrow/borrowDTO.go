package borrow

import (
	"time"

	"bookborrow/model"
	borrowsvc "bookborrow/service/borrow"
)

type OpenBorrowReq struct {
	BookID             int64  `json:"book_id" validate:"required,gt=0"`
	BorrowDate         string `json:"borrow_date" validate:"omitempty,datetime=2006-01-02"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"required,datetime=2006-01-02"`
}

// toModel expects a validated request.
func (r OpenBorrowReq) toModel(borrowerID string) borrowsvc.OpenRequest {
	out := borrowsvc.OpenRequest{BookID: r.BookID, BorrowerID: borrowerID}
	out.ExpectedReturnDate, _ = time.Parse(time.DateOnly, r.ExpectedReturnDate)
	if r.BorrowDate != "" {
		out.BorrowDate, _ = time.Parse(time.DateOnly, r.BorrowDate)
	}
	return out
}

type BorrowResp struct {
	model.BorrowDetail
	// PaymentNote is set when the borrow committed but its charge did not
	// fully go through.
	PaymentNote string `json:"payment_note,omitempty"`
}
