package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/lastforend/airdrop-ledger/pkg/ledgerstore"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

type lookupFunc func(ctx context.Context, apiKey string) (*user.User, error)

func (f lookupFunc) FindByAPIKey(ctx context.Context, apiKey string) (*user.User, error) {
	return f(ctx, apiKey)
}

func TestAPIKeyMiddleware(t *testing.T) {
	known := &user.User{ID: 7, TelegramID: 1001, APIKey: "good-key"}
	lookup := lookupFunc(func(ctx context.Context, apiKey string) (*user.User, error) {
		if apiKey == known.APIKey {
			return known, nil
		}
		return nil, ledgerstore.ErrUserNotFound
	})

	var gotUser *user.User
	handler := APIKeyMiddleware(lookup, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/balance", nil)
	req.Header.Set(APIKeyHeader, "good-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotUser.ID)

	req = httptest.NewRequest(http.MethodGet, "/balance", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/balance", nil)
	req.Header.Set(APIKeyHeader, "bad-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
