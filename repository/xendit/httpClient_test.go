package xenditrepo_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bookborrow/model"
	xenditrepo "bookborrow/repository/xendit"
)

func TestCreateSession(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/invoices", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "secret-key", user)

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, jsoniter.Unmarshal(raw, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"inv_1","invoice_url":"https://pay/inv_1","expiry_date":"2025-12-17T00:00:00Z"}`))
	}))
	defer srv.Close()

	x := xenditrepo.NewHTTP(xenditrepo.Options{APIKey: "secret-key", BaseURL: srv.URL})
	s, err := x.CreateSession(context.Background(), xenditrepo.SessionReq{
		ExternalID:  "ext-1",
		Amount:      decimal.NewFromInt(20),
		Description: "Dune by Frank Herbert",
		Kind:        "rental",
	})
	require.NoError(t, err)
	require.Equal(t, "inv_1", s.Reference)
	require.Equal(t, "https://pay/inv_1", s.RedirectURL)
	require.Equal(t, "ext-1", got["external_id"])
	require.EqualValues(t, 20, got["amount"])
	require.Equal(t, map[string]any{"type_of_payment": "rental"}, got["metadata"])
}

func TestCreateSession_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	x := xenditrepo.NewHTTP(xenditrepo.Options{APIKey: "k", BaseURL: srv.URL})
	_, err := x.CreateSession(context.Background(), xenditrepo.SessionReq{ExternalID: "e", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
}

func TestVerifyCallbackToken(t *testing.T) {
	x := xenditrepo.NewHTTP(xenditrepo.Options{CallbackToken: "tok"})
	require.NoError(t, x.VerifyCallbackToken("tok"))
	require.ErrorIs(t, x.VerifyCallbackToken("nope"), model.ErrInvalidCallbackToken)

	unset := xenditrepo.NewHTTP(xenditrepo.Options{})
	require.Error(t, unset.VerifyCallbackToken(""))
}
