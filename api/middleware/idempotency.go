package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/storefront-labs/storefront-backend/api/responses"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	pkgredis "github.com/storefront-labs/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotencyKey = 255

	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
	inFlightTTL            = 2 * time.Minute
)

// IdempotencyStore persists one record per scoped Idempotency-Key.
type IdempotencyStore interface {
	Key(scope, idempotencyKey string) string
	Load(ctx context.Context, key string) (string, bool, error)
	Reserve(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Save(ctx context.Context, key, value string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type idempotencyRule struct {
	method string
	path   *regexp.Regexp
	ttl    time.Duration
}

// Matched against the raw URL path: group middleware runs before chi resolves
// the final route pattern.
var idempotencyRules = []idempotencyRule{
	{http.MethodPost, regexp.MustCompile(`^/api/v1/checkout/?$`), criticalIdempotencyTTL},
	{http.MethodPost, regexp.MustCompile(`^/api/v1/orders/[^/]+/cancel/?$`), criticalIdempotencyTTL},
	{http.MethodPost, regexp.MustCompile(`^/api/v1/orders/?$`), defaultIdempotencyTTL},
}

type idempotencyRecord struct {
	InFlight    bool   `json:"in_flight,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency guards checkout, order creation and cancellation. The first request
// for a key reserves it; repeats replay the stored response, and a repeat with a
// different body is rejected. Server errors release the key so clients can retry.
// A nil store disables the guard.
func Idempotency(store IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if isNilStore(store) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, guarded := idempotencyTTL(r.Method, r.URL.Path)
			if !guarded {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			idemKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idemKey == "" || len(idemKey) > maxIdempotencyKey {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required").
					WithDetails(map[string]string{idempotencyHeader: "must be 1-255 characters"}))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			hash := requestHash(body)
			key := store.Key(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, idemKey)

			if stored, found, err := store.Load(ctx, key); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
				return
			} else if found {
				replay(ctx, logg, w, stored, hash)
				return
			}

			pending, _ := json.Marshal(idempotencyRecord{InFlight: true, RequestHash: hash})
			won, err := store.Reserve(ctx, key, string(pending), inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !won {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is in progress"))
				return
			}

			capture := &responseCapture{statusRecorder: statusRecorder{ResponseWriter: w}}
			next.ServeHTTP(capture, r)

			// detach from the request so a client disconnect does not strand the key
			storeCtx := context.WithoutCancel(ctx)
			if capture.statusCode() >= http.StatusInternalServerError {
				if err := store.Release(storeCtx, key); err != nil && logg != nil {
					logg.Error(storeCtx, "idempotency.release_failed", err)
				}
				return
			}

			record, _ := json.Marshal(idempotencyRecord{
				RequestHash: hash,
				Status:      capture.statusCode(),
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err := store.Save(storeCtx, key, string(record), ttl); err != nil && logg != nil {
				logg.Error(storeCtx, "idempotency.save_failed", err)
			}
		})
	}
}

func replay(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, stored, hash string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reused with a different request body"))
	case record.InFlight:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is in progress"))
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

func isNilStore(store IdempotencyStore) bool {
	if store == nil {
		return true
	}
	client, ok := store.(*pkgredis.Client)
	return ok && client == nil
}

func idempotencyTTL(method, path string) (time.Duration, bool) {
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.path.MatchString(path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func requestHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	statusRecorder
	body bytes.Buffer
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.statusRecorder.Write(b)
}
