package odoo_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-etl/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-etl/internal/config"
	"github.com/tuanvumaihuynh/inventory-etl/internal/odoo"
)

type fakeOdoo struct {
	t        *testing.T
	password string

	mu       sync.Mutex
	calls    []string
	handlers map[string]func(params map[string]any) any
}

func newFakeOdoo(t *testing.T) *fakeOdoo {
	return &fakeOdoo{
		t:        t,
		password: "secret",
		handlers: map[string]func(params map[string]any) any{},
	}
}

func (f *fakeOdoo) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeOdoo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeOdoo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JSONRPC string         `json:"jsonrpc"`
		Method  string         `json:"method"`
		Params  map[string]any `json:"params"`
	}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	assert.Equal(f.t, "2.0", req.JSONRPC)
	assert.Equal(f.t, "call", req.Method)

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case odoo.AuthenticatePath:
		f.record("authenticate")
		if req.Params["password"] != f.password {
			writeRPCError(w, "Access Denied")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "s3ss10n", Path: "/"})
		writeRPCResult(w, map[string]any{"uid": 7, "db": req.Params["db"]})
	case odoo.CallKWPath:
		key := req.Params["model"].(string) + "." + req.Params["method"].(string)
		f.record(key)
		if c, err := r.Cookie("session_id"); err != nil || c.Value != "s3ss10n" {
			writeRPCError(w, "Session expired")
			return
		}
		h, ok := f.handlers[key]
		if !ok {
			writeRPCError(w, "unknown method "+key)
			return
		}
		writeRPCResult(w, h(req.Params))
	default:
		http.NotFound(w, r)
	}
}

func writeRPCResult(w io.Writer, result any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": 1, "result": result})
}

func writeRPCError(w io.Writer, msg string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"error": map[string]any{
			"code":    200,
			"message": "Odoo Server Error",
			"data":    map[string]any{"name": "odoo.exceptions.AccessDenied", "message": msg},
		},
	})
}

func newClient(t *testing.T, url, password string) *odoo.Client {
	t.Helper()
	c, err := odoo.NewClient(config.Odoo{
		URL:      url,
		DB:       "erp-live",
		Login:    "data.team@example.com",
		Password: password,
		Timeout:  5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestClientAuthenticate(t *testing.T) {
	t.Run("Should open a session", func(t *testing.T) {
		fake := newFakeOdoo(t)
		srv := httptest.NewServer(fake)
		defer srv.Close()

		c := newClient(t, srv.URL+"/", "secret")
		require.NoError(t, c.Authenticate(context.Background()))
		assert.EqualValues(t, 7, c.UID())
	})

	t.Run("Should fail with authentication error on rejected login", func(t *testing.T) {
		fake := newFakeOdoo(t)
		srv := httptest.NewServer(fake)
		defer srv.Close()

		c := newClient(t, srv.URL, "wrong")
		err := c.Authenticate(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.AuthenticationErr)
		assert.ErrorIs(t, err, apperr.RemoteApplicationErr)
		assert.Contains(t, err.Error(), "Access Denied")
	})

	t.Run("Should fail when server returns no uid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeRPCResult(w, map[string]any{"uid": false})
		}))
		defer srv.Close()

		err := newClient(t, srv.URL, "secret").Authenticate(context.Background())
		assert.ErrorIs(t, err, apperr.AuthenticationErr)
	})
}

func TestClientCall(t *testing.T) {
	t.Run("Should reuse session cookie and decode typed records", func(t *testing.T) {
		fake := newFakeOdoo(t)
		fake.handlers["stock.quant.search_read"] = func(params map[string]any) any {
			kwargs := params["kwargs"].(map[string]any)
			assert.Equal(t, []any{[]any{"location_id.usage", "=", "internal"}}, kwargs["domain"])
			assert.Equal(t, []any{"product_id", "location_id", "quantity", "reserved_quantity"}, kwargs["fields"])
			return []any{
				map[string]any{"id": 1, "product_id": []any{10, "Dates 1kg"}, "location_id": []any{3, "WH/Stock"}, "quantity": 10.0, "reserved_quantity": 3.0},
				map[string]any{"id": 2, "product_id": false, "location_id": []any{4, "WH/Shelf"}, "quantity": 2.5, "reserved_quantity": 0},
			}
		}
		fake.handlers["product.product.read"] = func(params map[string]any) any {
			assert.Equal(t, []any{[]any{10.0}}, params["args"])
			return []any{map[string]any{"id": 10, "display_name": "[D1] Dates 1kg", "barcode": false}}
		}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		ctx := context.Background()
		c := newClient(t, srv.URL, "secret")
		require.NoError(t, c.Authenticate(ctx))

		quants, err := c.InternalStockQuants(ctx)
		require.NoError(t, err)
		require.Len(t, quants, 2)
		assert.Equal(t, odoo.Many2One{ID: 10, Name: "Dates 1kg", Valid: true}, quants[0].Product)
		assert.True(t, decimal.NewFromInt(10).Equal(quants[0].Quantity))
		assert.False(t, quants[1].Product.Valid)
		assert.Nil(t, quants[1].Product.IDString())
		assert.Equal(t, "4", *quants[1].Location.IDString())

		products, err := c.Products(ctx, []int64{10})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "[D1] Dates 1kg", *products[0].DisplayName.Ptr())
		assert.Nil(t, products[0].Barcode.Ptr())

		assert.Equal(t, []string{"authenticate", "stock.quant.search_read", "product.product.read"}, fake.Calls())
	})

	t.Run("Should skip read for empty id set", func(t *testing.T) {
		fake := newFakeOdoo(t)
		srv := httptest.NewServer(fake)
		defer srv.Close()

		locations, err := newClient(t, srv.URL, "secret").Locations(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, locations)
		assert.Empty(t, fake.Calls())
	})

	t.Run("Should report application error payload", func(t *testing.T) {
		fake := newFakeOdoo(t)
		srv := httptest.NewServer(fake)
		defer srv.Close()

		// no session: the fake answers with an error member inside a 200 response
		_, err := newClient(t, srv.URL, "secret").InternalStockQuants(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.RemoteApplicationErr)
		assert.Contains(t, err.Error(), "Session expired")
		assert.True(t, odoo.IsRemoteFailure(err))
	})

	t.Run("Should report non-2xx status as transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		err := newClient(t, srv.URL, "secret").Call(context.Background(), odoo.CallKWPath, map[string]any{}, nil)
		assert.ErrorIs(t, err, apperr.TransportErr)
		assert.Contains(t, err.Error(), "unexpected status 502")
	})

	t.Run("Should report unreachable server as transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := newClient(t, url, "secret").Authenticate(context.Background())
		assert.ErrorIs(t, err, apperr.AuthenticationErr)
		assert.ErrorIs(t, err, apperr.TransportErr)
	})

	t.Run("Should reject unexpected record shapes", func(t *testing.T) {
		fake := newFakeOdoo(t)
		fake.handlers["stock.quant.search_read"] = func(map[string]any) any {
			return []any{map[string]any{"id": 1, "product_id": "not-a-reference"}}
		}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		ctx := context.Background()
		c := newClient(t, srv.URL, "secret")
		require.NoError(t, c.Authenticate(ctx))

		_, err := c.InternalStockQuants(ctx)
		assert.ErrorIs(t, err, apperr.RemoteApplicationErr)
	})
}
