package middleware

import (
	"context"
	"net/http"

	"github.com/storefront-labs/storefront-backend/api/responses"
	"github.com/storefront-labs/storefront-backend/internal/users"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
)

type userUpserter interface {
	Upsert(ctx context.Context, input users.UpsertUserDTO) (*users.UserDTO, error)
}

// UserSync mirrors the authenticated identity into the users table so owned rows
// always reference an existing user. Must run after Auth.
func UserSync(svc userUpserter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserUUIDFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
				return
			}
			input := users.UpsertUserDTO{ID: userID, Email: EmailFromContext(r.Context())}
			if _, err := svc.Upsert(r.Context(), input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
