package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth"
	demomw "github.com/tendant/chi-demo/middleware"
)

// RequestLogger logs each request with its outcome once the handler returns
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// CORS returns the CORS middleware for the given origins. "*" allows any
// origin without credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowCredentials = false
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-KEY", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}

// AdminGuard protects write routes. Requests carrying an "Authorization:
// Bearer" header are checked as HS256 tokens signed with jwtSecret; all
// others must present the API key whose SHA-256 digest is keySHA256. With
// both empty the guard is disabled and a nil middleware is returned.
func AdminGuard(keySHA256, jwtSecret string) (func(http.Handler) http.Handler, error) {
	var apiKey, bearer func(http.Handler) http.Handler
	if keySHA256 != "" {
		mw, err := demomw.ApiKeyMiddleware(demomw.ApiKeyConfig{
			APIKeys: map[string]string{"admin": keySHA256},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API key middleware: %w", err)
		}
		apiKey = mw
	}
	if jwtSecret != "" {
		auth := newTokenAuth(jwtSecret)
		bearer = func(next http.Handler) http.Handler {
			return jwtauth.Verifier(auth)(jwtauth.Authenticator(next))
		}
	}

	switch {
	case apiKey == nil && bearer == nil:
		return nil, nil
	case bearer == nil:
		return apiKey, nil
	case apiKey == nil:
		return bearer, nil
	}
	return func(next http.Handler) http.Handler {
		viaKey, viaToken := apiKey(next), bearer(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasBearerToken(r) {
				viaToken.ServeHTTP(w, r)
				return
			}
			viaKey.ServeHTTP(w, r)
		})
	}, nil
}

// NewAdminToken issues a token accepted by AdminGuard for the given secret
func NewAdminToken(jwtSecret, subject string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("jwt secret is required")
	}
	claims := map[string]interface{}{"sub": subject}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}
	_, token, err := newTokenAuth(jwtSecret).Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return token, nil
}

func newTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

func hasBearerToken(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	return len(h) > 7 && strings.EqualFold(h[:7], "BEARER ")
}
