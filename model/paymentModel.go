// model/paymentModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentRental PaymentKind = "rental"
	PaymentFine   PaymentKind = "fine"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// SessionResult is what the payment provider reports for a session.
type SessionResult string

const (
	SessionPaid    SessionResult = "paid"
	SessionExpired SessionResult = "expired"
)

type Payment struct {
	ID               int64           `json:"id"`
	BorrowID         int64           `json:"borrow_id"`
	Kind             PaymentKind     `json:"kind"`
	Status           PaymentStatus   `json:"status"`
	AmountOwed       decimal.Decimal `json:"amount_owed"`
	ExternalID       string          `json:"external_id"`
	SessionReference *string         `json:"session_reference,omitempty"`
	SessionURL       *string         `json:"session_url,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
