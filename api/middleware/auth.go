package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/migios-apps/migios-console-api/api/responses"
	"github.com/migios-apps/migios-console-api/pkg/config"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

// ConsoleClaims is the token payload issued by the core API for console
// operators. The club id scopes every draft and cache key.
type ConsoleClaims struct {
	UserID   string `json:"user_id"`
	ClubID   int64  `json:"club_id"`
	Terminal string `json:"terminal,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := parseToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ClubID == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing club scope"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithClubID(ctx, claims.ClubID)
			if claims.Terminal != "" {
				ctx = WithTerminal(ctx, claims.Terminal)
			}

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
				ctx = logg.WithClubID(ctx, claims.ClubID)
				if claims.Terminal != "" {
					ctx = logg.WithTerminal(ctx, claims.Terminal)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(cfg config.JWTConfig, raw string) (*ConsoleClaims, error) {
	claims := &ConsoleClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
