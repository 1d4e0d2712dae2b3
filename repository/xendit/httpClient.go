package xenditrepo

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookborrow/model"
	"bookborrow/util/httpx"
)

const DefaultBaseURL = "https://api.xendit.co"

type httpRepo struct {
	apiKey        string
	callbackToken string
	baseURL       string
	currency      string
	client        *http.Client
}

type Options struct {
	APIKey        string
	CallbackToken string
	BaseURL       string
	Currency      string
}

func NewHTTP(o Options) Repo {
	base := strings.TrimRight(o.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &httpRepo{
		apiKey:        o.APIKey,
		callbackToken: o.CallbackToken,
		baseURL:       base,
		currency:      o.Currency,
		client:        httpx.Client(),
	}
}

type invoiceBody struct {
	ExternalID      string            `json:"external_id"`
	Amount          float64           `json:"amount"`
	Description     string            `json:"description"`
	InvoiceDuration int               `json:"invoice_duration,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type invoiceResp struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	ExpiryDate string `json:"expiry_date"`
}

func (r *httpRepo) CreateSession(ctx context.Context, req SessionReq) (*Session, error) {
	body := invoiceBody{
		ExternalID:      req.ExternalID,
		Amount:          req.Amount.InexactFloat64(),
		Description:     req.Description,
		InvoiceDuration: req.ExpirySec,
		Currency:        r.currency,
		Metadata:        map[string]string{"type_of_payment": req.Kind},
	}
	var out invoiceResp
	err := httpx.PostJSON(ctx, r.client, r.baseURL+"/v2/invoices", body, &out, func(hr *http.Request) {
		hr.SetBasicAuth(r.apiKey, "")
	})
	if err != nil {
		return nil, fmt.Errorf("xendit create invoice failed: %w", err)
	}
	if out.ID == "" {
		return nil, errors.New("xendit: empty invoice id")
	}

	return &Session{Reference: out.ID, RedirectURL: out.InvoiceURL, ExpiresAt: out.ExpiryDate}, nil
}

func (r *httpRepo) VerifyCallbackToken(token string) error {
	if r.callbackToken == "" {
		return errors.New("xendit: callback token not configured")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(r.callbackToken)) != 1 {
		return model.ErrInvalidCallbackToken
	}
	return nil
}
