package client

import "errors"

var (
	// ErrLogin — сервер отверг логин (не-2xx) либо успешный ответ
	// пришёл без access-токена. Сообщение сервера добавляется обёрткой.
	ErrLogin = errors.New("login failed")

	// ErrRegistration — сервер отверг регистрацию (не-2xx).
	ErrRegistration = errors.New("registration failed")

	// ErrRefresh — refresh невозможен (нет сохранённого refresh-токена)
	// или сервер его отверг; во втором случае все креды уже зачищены.
	ErrRefresh = errors.New("token refresh failed")

	// ErrAuthRequired — EnsureValidAccessToken не смог обеспечить валидный
	// токен перед отправкой запроса.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthFailed — запрос получил 401, а единственная разрешённая
	// попытка refresh провалилась. Дальше не ретраим никогда.
	ErrAuthFailed = errors.New("authentication failed")
)
