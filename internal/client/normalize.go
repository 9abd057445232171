package client

import (
	"encoding/json"
	"fmt"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
)

// authPayload — сырое тело ответа login/refresh/register.
//
// API отдаёт токены под разными именами в зависимости от версии, поэтому
// парсим все известные варианты и выбираем по задокументированному
// приоритету (см. методы ниже). Это сознательная прослойка совместимости,
// а не попытка угадать.
type authPayload struct {
	AccessToken  string       `json:"access_token"`
	Access       string       `json:"access"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	Refresh      string       `json:"refresh"`
	User         *models.User `json:"user"`
	Data         struct {
		User *models.User `json:"user"`
	} `json:"data"`

	// Поля сообщений об ошибке; detail — формат FastAPI,
	// может быть и не строкой.
	Detail  json.RawMessage `json:"detail"`
	Err     string          `json:"error"`
	Message string          `json:"message"`
}

// parseAuthPayload разбирает тело ответа. Некорректный JSON не ошибка:
// подставляется пустой payload, а сообщение возьмётся из fallback.
func parseAuthPayload(body []byte) authPayload {
	var p authPayload
	_ = json.Unmarshal(body, &p)
	return p
}

// accessToken: access_token > access > token.
func (p authPayload) accessToken() string {
	switch {
	case p.AccessToken != "":
		return p.AccessToken
	case p.Access != "":
		return p.Access
	default:
		return p.Token
	}
}

// refreshToken: refresh_token > refresh.
func (p authPayload) refreshToken() string {
	if p.RefreshToken != "" {
		return p.RefreshToken
	}

	return p.Refresh
}

// user: user > data.user.
func (p authPayload) user() *models.User {
	if p.User != nil {
		return p.User
	}

	return p.Data.User
}

// result собирает нормализованный AuthResult.
func (p authPayload) result() *models.AuthResult {
	return &models.AuthResult{
		AccessToken:  p.accessToken(),
		RefreshToken: p.refreshToken(),
		User:         p.user(),
	}
}

// serverMessage: detail > error > message > fallback.
func (p authPayload) serverMessage(fallback string) string {
	if len(p.Detail) > 0 {
		var s string
		if err := json.Unmarshal(p.Detail, &s); err == nil && s != "" {
			return s
		}
	}

	if p.Err != "" {
		return p.Err
	}

	if p.Message != "" {
		return p.Message
	}

	return fallback
}

// statusFallback — generic-сообщение вида "login failed (401)".
func statusFallback(action string, status int) string {
	return fmt.Sprintf("%s failed (%d)", action, status)
}
