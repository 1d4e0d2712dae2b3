package paymentsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"bookborrow/model"
	paymentrepo "bookborrow/repository/payment"
	xenditrepo "bookborrow/repository/xendit"
)

type Payment = model.Payment

type Repo interface {
	InsertPending(ctx context.Context, borrowID int64, kind model.PaymentKind, amount decimal.Decimal, externalID string) (*Payment, error)
	AttachSession(ctx context.Context, id int64, reference, url string) (bool, error)
	FindBySessionReference(ctx context.Context, reference string) (*Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*Payment, error)
	MarkPaid(ctx context.Context, id int64) (bool, error)
	ListByBorrow(ctx context.Context, borrowID int64) ([]Payment, error)
	ListAwaitingSession(ctx context.Context, limit int) ([]Payment, error)
}

// SessionProvider is the external payment collaborator.
type SessionProvider interface {
	CreateSession(ctx context.Context, req xenditrepo.SessionReq) (*xenditrepo.Session, error)
	VerifyCallbackToken(token string) error
}

type Service interface {
	// CreateObligation persists a pending obligation, then asks the provider
	// for a session. A provider failure leaves the obligation without a
	// reference and returns it together with ErrObligationSessionPending.
	CreateObligation(ctx context.Context, b model.BorrowDetail, kind model.PaymentKind, amount decimal.Decimal) (*Payment, error)
	Reconcile(ctx context.Context, reference string, result model.SessionResult) error
	HandleXendit(ctx context.Context, callbackToken string, raw []byte) error
	RetryPendingSessions(ctx context.Context) (int, error)
	ListByBorrow(ctx context.Context, borrowID int64) ([]Payment, error)
}

type Options struct {
	SessionTimeout time.Duration
	SessionExpiry  time.Duration
	RetryBatch     int
}

type service struct {
	r    Repo
	x    SessionProvider
	log  *slog.Logger
	opts Options
}

func New(r Repo, x SessionProvider, log *slog.Logger, opts Options) Service {
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = 10 * time.Second
	}
	if opts.SessionExpiry <= 0 {
		opts.SessionExpiry = 24 * time.Hour
	}
	if opts.RetryBatch <= 0 {
		opts.RetryBatch = 100
	}
	return &service{r: r, x: x, log: log, opts: opts}
}

func (s *service) CreateObligation(ctx context.Context, b model.BorrowDetail, kind model.PaymentKind, amount decimal.Decimal) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: obligation amount must be positive", model.ErrInvalidInput)
	}
	p, err := s.r.InsertPending(ctx, b.ID, kind, amount, uuid.NewString())
	if err != nil {
		return nil, err
	}
	s.log.Info("obligation created", "payment_id", p.ID, "borrow_id", b.ID, "kind", kind, "amount", amount.String())

	desc := fmt.Sprintf("%s by %s", b.BookTitle, b.BookAuthor)
	if _, err := s.requestSession(ctx, p, desc); err != nil {
		return p, err
	}
	return p, nil
}

// requestSession reports whether this call attached the new session to p.
func (s *service) requestSession(ctx context.Context, p *Payment, desc string) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.SessionTimeout)
	defer cancel()

	sess, err := s.x.CreateSession(cctx, xenditrepo.SessionReq{
		ExternalID:  p.ExternalID,
		Amount:      p.AmountOwed,
		Description: desc,
		Kind:        string(p.Kind),
		ExpirySec:   int(s.opts.SessionExpiry.Seconds()),
	})
	if err != nil {
		s.log.Warn("payment session pending", "payment_id", p.ID, "err", err)
		return false, errors.Join(model.ErrObligationSessionPending, err)
	}
	attached, err := s.r.AttachSession(ctx, p.ID, sess.Reference, sess.RedirectURL)
	if err != nil {
		s.log.Error("attach session failed", "payment_id", p.ID, "reference", sess.Reference, "err", err)
		return false, errors.Join(model.ErrObligationSessionPending, err)
	}
	if !attached {
		s.log.Warn("payment already has a session", "payment_id", p.ID, "discarded_reference", sess.Reference)
		return false, nil
	}
	p.SessionReference = &sess.Reference
	p.SessionURL = &sess.RedirectURL
	return true, nil
}

// Reconcile is idempotent: providers may deliver the same callback twice.
func (s *service) Reconcile(ctx context.Context, reference string, result model.SessionResult) error {
	return s.reconcile(ctx, reference, "", result)
}

func (s *service) reconcile(ctx context.Context, reference, externalID string, result model.SessionResult) error {
	p, err := s.find(ctx, reference, externalID)
	if err != nil {
		return err
	}
	if result != model.SessionPaid {
		s.log.Info("session not paid, ignoring", "payment_id", p.ID, "result", result)
		return nil
	}
	if p.Status == model.PaymentPaid {
		return nil
	}
	moved, err := s.r.MarkPaid(ctx, p.ID)
	if err != nil {
		return err
	}
	if moved {
		s.log.Info("obligation paid", "payment_id", p.ID, "borrow_id", p.BorrowID, "kind", p.Kind)
	}
	return nil
}

// find resolves a callback to its obligation. A session whose creation timed
// out on our side is unknown by reference, so the external id is tried next
// and the reference is recorded when the obligation has none yet.
func (s *service) find(ctx context.Context, reference, externalID string) (*Payment, error) {
	p, err := s.r.FindBySessionReference(ctx, reference)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, paymentrepo.ErrNotFound) {
		return nil, err
	}
	if externalID != "" {
		p, err = s.r.FindByExternalID(ctx, externalID)
		switch {
		case err == nil:
			s.adopt(ctx, p, reference)
			return p, nil
		case !errors.Is(err, paymentrepo.ErrNotFound):
			return nil, err
		}
	}
	s.log.Warn("reconcile against unknown session", "reference", reference, "external_id", externalID)
	return nil, model.ErrUnknownSession
}

func (s *service) adopt(ctx context.Context, p *Payment, reference string) {
	if p.SessionReference != nil {
		s.log.Warn("callback for a superseded session", "payment_id", p.ID,
			"reference", reference, "current_reference", *p.SessionReference)
		return
	}
	attached, err := s.r.AttachSession(ctx, p.ID, reference, "")
	if err != nil {
		s.log.Error("attach session from callback failed", "payment_id", p.ID, "reference", reference, "err", err)
		return
	}
	if attached {
		p.SessionReference = &reference
		s.log.Info("session recovered from callback", "payment_id", p.ID, "reference", reference)
	}
}

type xInvoiceEvent struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ExternalID string `json:"external_id"`
}

func (s *service) HandleXendit(ctx context.Context, callbackToken string, raw []byte) error {
	if err := s.x.VerifyCallbackToken(callbackToken); err != nil {
		return err
	}

	var ev xInvoiceEvent
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("%w: bad webhook json: %v", model.ErrInvalidInput, err)
	}
	if ev.ID == "" || ev.Status == "" {
		return fmt.Errorf("%w: missing invoice fields", model.ErrInvalidInput)
	}
	switch ev.Status {
	case "PAID", "SETTLED":
		return s.reconcile(ctx, ev.ID, ev.ExternalID, model.SessionPaid)
	case "EXPIRED":
		return s.reconcile(ctx, ev.ID, ev.ExternalID, model.SessionExpired)
	default:
		s.log.Info("ignoring invoice status", "reference", ev.ID, "status", ev.Status)
		return nil
	}
}

func (s *service) RetryPendingSessions(ctx context.Context) (int, error) {
	ps, err := s.r.ListAwaitingSession(ctx, s.opts.RetryBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range ps {
		p := &ps[i]
		desc := fmt.Sprintf("Borrow #%d %s", p.BorrowID, p.Kind)
		attached, err := s.requestSession(ctx, p, desc)
		if err != nil || !attached {
			continue
		}
		n++
	}
	if len(ps) > 0 {
		s.log.Info("retried payment sessions", "pending", len(ps), "attached", n)
	}
	return n, nil
}

func (s *service) ListByBorrow(ctx context.Context, borrowID int64) ([]Payment, error) {
	return s.r.ListByBorrow(ctx, borrowID)
}
