package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fintrackr/backend/internal/auth"
	"github.com/fintrackr/backend/internal/market"
	"github.com/fintrackr/backend/internal/model"
	"github.com/fintrackr/backend/internal/store"
	"github.com/stretchr/testify/require"
)

// testEnv wires a service against the in-memory store with the default
// categories seeded, exactly as the server boots locally.
type testEnv struct {
	store  *store.MemoryStore
	svc    *FinanceService
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	memStore := store.NewMemoryStore()
	require.NoError(t, SeedDefaultCategories(context.Background(), memStore))

	svc := NewFinanceService(memStore, market.NewMockPriceSource(42), auth.NewTokenIssuer("test-secret"))
	return &testEnv{
		store:  memStore,
		svc:    svc,
		router: svc.Router(),
	}
}

// do runs a request through the full router, middleware included.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON body into out.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// register creates a user and returns their session token.
func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// defaultCategory fetches a seeded default category by name and type.
func (e *testEnv) defaultCategory(t *testing.T, name string, categoryType model.CategoryType) *model.Category {
	t.Helper()

	categories, err := e.store.ListCategories(context.Background(), "", categoryType)
	require.NoError(t, err)
	for _, category := range categories {
		if category.IsDefault && category.Name == name {
			return category
		}
	}
	t.Fatalf("default category %q (%s) not seeded", name, categoryType)
	return nil
}
