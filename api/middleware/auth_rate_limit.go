package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oakmart/storefront-backend/api/responses"
	"github.com/oakmart/storefront-backend/pkg/config"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/logger"
)

const rateLimitBodyPeekBytes = 1 << 16

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitPolicy is a fixed-window limit applied to one auth endpoint,
// counted per client IP and per submitted email.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// LoginPolicy derives the login endpoint policy from config.
func LoginPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		Window:     cfg.LoginWindow,
		IPLimit:    cfg.LoginIPLimit,
		EmailLimit: cfg.LoginEmailLimit,
	}
}

// RegisterPolicy derives the register endpoint policy from config.
func RegisterPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "register",
		Window:     cfg.RegisterWindow,
		IPLimit:    cfg.RegisterIPLimit,
		EmailLimit: cfg.RegisterEmailLimit,
	}
}

// AuthRateLimit throttles credential endpoints. The body is peeked for the
// email so per-account limits hold across source IPs; emails are hashed
// before they become Redis keys.
func AuthRateLimit(store rateLimiterStore, policy AuthRateLimitPolicy, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || policy.Window <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			if policy.IPLimit > 0 {
				key := store.RateLimitKey("ip:" + policy.Name + ":" + clientIP(r))
				count, err := store.IncrWithTTL(ctx, key, policy.Window)
				if err != nil {
					responses.WriteError(w, r, log,
						pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check"))
					return
				}
				if count > int64(policy.IPLimit) {
					respondRateLimited(w, r, log, policy.Name, "ip")
					return
				}
			}

			if policy.EmailLimit > 0 {
				email, restored := peekEmail(r)
				r = restored
				if email != "" {
					key := store.RateLimitKey("email:" + policy.Name + ":" + hashEmail(email))
					count, err := store.IncrWithTTL(ctx, key, policy.Window)
					if err != nil {
						responses.WriteError(w, r, log,
							pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check"))
						return
					}
					if count > int64(policy.EmailLimit) {
						respondRateLimited(w, r, log, policy.Name, "email")
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(w http.ResponseWriter, r *http.Request, log *logger.Logger, policy, dimension string) {
	if log != nil {
		ctx := log.WithFields(r.Context(), map[string]any{
			"policy":    policy,
			"dimension": dimension,
		})
		log.Warn(ctx, "auth.rate_limit.blocked")
	}
	responses.WriteError(w, r, log,
		pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// peekEmail reads the body to extract the email field, then restores the body
// so the handler can decode it again.
func peekEmail(r *http.Request) (string, *http.Request) {
	if r.Body == nil {
		return "", r
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, rateLimitBodyPeekBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return "", r
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", r
	}
	return strings.ToLower(strings.TrimSpace(payload.Email)), r
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
