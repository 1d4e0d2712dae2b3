package xenditrepo

import (
	"context"

	"github.com/shopspring/decimal"
)

// SessionReq asks the provider for a hosted payment page.
type SessionReq struct {
	ExternalID  string
	Amount      decimal.Decimal
	Description string
	Kind        string
	ExpirySec   int
}

type Session struct {
	Reference   string
	RedirectURL string
	ExpiresAt   string
}

type Repo interface {
	CreateSession(ctx context.Context, req SessionReq) (*Session, error)
	VerifyCallbackToken(token string) error
}
