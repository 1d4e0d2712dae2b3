package httpx_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"bookborrow/util/httpx"
)

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"n":1}`, string(body))
		require.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct{ OK bool }
	err := httpx.PostJSON(context.Background(), srv.Client(), srv.URL, map[string]int{"n": 1}, &out,
		func(r *http.Request) { r.Header.Set("X-Test", "yes") })
	require.NoError(t, err)
	require.True(t, out.OK)
}

func TestPostJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"description":"chat not found"}`))
	}))
	defer srv.Close()

	var out struct{ Description string }
	err := httpx.PostJSON(context.Background(), srv.Client(), srv.URL, struct{}{}, &out, nil)

	var se *httpx.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusBadRequest, se.Code)
	require.Equal(t, "chat not found", out.Description)
}
