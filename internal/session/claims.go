package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpiry извлекает момент истечения (claim exp) из access-токена
// без проверки подписи: клиент не знает серверного секрета, но ему достаточно
// узнать, пора ли идти за новым токеном. Валидирует токен только сервер.
func AccessTokenExpiry(token string) (time.Time, error) {
	const op = "session.AccessTokenExpiry"

	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if exp == nil {
		return time.Time{}, fmt.Errorf("%s: no exp claim", op)
	}

	return exp.Time, nil
}
