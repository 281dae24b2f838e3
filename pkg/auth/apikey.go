package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/lastforend/airdrop-ledger/pkg/app/errors"
	apphttp "github.com/lastforend/airdrop-ledger/pkg/app/http"
	"github.com/lastforend/airdrop-ledger/pkg/user"
)

// APIKeyHeader carries the per-user API key issued at registration.
const APIKeyHeader = "X-API-Key"

// UserLookup resolves an API key to its owner.
type UserLookup interface {
	FindByAPIKey(ctx context.Context, apiKey string) (*user.User, error)
}

// APIKeyMiddleware authenticates requests by API key and stores the
// resolved user in the request context. Unknown keys are rejected without
// revealing whether the key exists.
func APIKeyMiddleware(lookup UserLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "missing API key"))
				return
			}

			u, err := lookup.FindByAPIKey(r.Context(), key)
			if err != nil {
				logger.Debug("API key rejected", zap.Error(err))
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "invalid API key"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
