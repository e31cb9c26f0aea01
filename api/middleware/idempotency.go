package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/oakmart/storefront-backend/api/responses"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

const (
	idempotencyHeader    = "Idempotency-Key"
	idempotencyBodyLimit = 1 << 20
	replayHeader         = "X-Idempotent-Replay"
)

type idempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// IdempotencyRule marks one route as requiring an Idempotency-Key header.
type IdempotencyRule struct {
	Method  string
	Pattern string
	TTL     time.Duration
}

type idempotencyRecord struct {
	RequestHash string `json:"request_hash"`
	Completed   bool   `json:"completed"`
	Status      int    `json:"status,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency replays the stored response when a key is reused with the same
// payload, and rejects reuse with a different payload. Keys are scoped to the
// caller so two users can pick the same key without colliding.
func Idempotency(store idempotencyStore, rules []IdempotencyRule, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, matched := matchRule(r, rules)
			if store == nil || !matched {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(w, r, log,
					pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, restored, err := readAndRestoreBody(r)
			if err != nil {
				responses.WriteError(w, r, log,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r = restored
			requestHash := hashRequest(r.Method, r.URL.Path, body)

			ctx := r.Context()
			scope := idempotencyScope(ctx, r, rule)
			storageKey := store.IdempotencyKey(scope, key)

			stored, err := store.Get(ctx, storageKey)
			switch {
			case err == nil:
				handleExisting(w, r, log, stored, requestHash)
				return
			case !errors.Is(err, redislib.Nil):
				responses.WriteError(w, r, log,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
				return
			}

			pending, _ := json.Marshal(idempotencyRecord{RequestHash: requestHash})
			claimed, err := store.SetNX(ctx, storageKey, string(pending), rule.TTL)
			if err != nil {
				responses.WriteError(w, r, log,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				responses.WriteError(w, r, log,
					pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is already in flight"))
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			record, _ := json.Marshal(idempotencyRecord{
				RequestHash: requestHash,
				Completed:   true,
				Status:      capture.status,
				Body:        capture.buf.String(),
			})
			if err := store.Set(ctx, storageKey, string(record), rule.TTL); err != nil && log != nil {
				log.Error(ctx, "persist idempotency record", err)
			}
		})
	}
}

func handleExisting(w http.ResponseWriter, r *http.Request, log *logger.Logger, stored, requestHash string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(w, r, log,
			pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(w, r, log,
			pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different payload"))
		return
	}
	if !record.Completed {
		responses.WriteError(w, r, log,
			pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is already in flight"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(replayHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write([]byte(record.Body))
}

func matchRule(r *http.Request, rules []IdempotencyRule) (IdempotencyRule, bool) {
	pattern := normalizePattern(routePattern(r))
	for _, rule := range rules {
		if rule.Method == r.Method && normalizePattern(rule.Pattern) == pattern {
			return rule, true
		}
	}
	return IdempotencyRule{}, false
}

func normalizePattern(pattern string) string {
	if len(pattern) > 1 {
		return strings.TrimRight(pattern, "/")
	}
	return pattern
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func idempotencyScope(ctx context.Context, r *http.Request, rule IdempotencyRule) string {
	parts := []string{rule.Method, rule.Pattern}
	if userID := UserIDFromContext(ctx); userID != uuid.Nil {
		parts = append([]string{userID.String()}, parts...)
	}
	return strings.Join(parts, "|")
}

func readAndRestoreBody(r *http.Request) ([]byte, *http.Request, error) {
	if r.Body == nil {
		return nil, r, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, idempotencyBodyLimit))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return nil, r, err
	}
	return raw, r, nil
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rc *responseCapture) WriteHeader(status int) {
	rc.status = status
	rc.ResponseWriter.WriteHeader(status)
}

func (rc *responseCapture) Write(body []byte) (int, error) {
	rc.buf.Write(body)
	return rc.ResponseWriter.Write(body)
}
