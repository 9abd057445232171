package stubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type accessClaims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type ctxUserKey struct{}

// issueAccessToken выпускает подписанный HS256 access-токен.
func (a *API) issueAccessToken(userID int64, role string, now time.Time) (string, error) {
	const op = "stubapi.issueAccessToken"

	claims := accessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// validateAccessToken проверяет подпись и срок жизни токена.
func (a *API) validateAccessToken(tokenStr string) (int64, error) {
	const op = "stubapi.validateAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: unexpected signing method", op)
			}

			return []byte(a.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("%s: invalid claims", op)
	}

	return claims.UserID, nil
}

// bearerToken достаёт токен из Authorization.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}

	return ""
}

// authRequired — приватные ресурсы: невалидный/протухший токен -> 401.
func (a *API) authRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		uid, err := a.validateAccessToken(tok)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey{}, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authOptional — публичные ресурсы: токен учитывается, если валиден.
func (a *API) authOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" {
			if uid, err := a.validateAccessToken(tok); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, uid))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// userIDFrom возвращает id пользователя из контекста (0 — аноним).
func userIDFrom(ctx context.Context) int64 {
	if v := ctx.Value(ctxUserKey{}); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}

	return 0
}
