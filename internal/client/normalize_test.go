package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Нормализация мультиформатных auth-ответов: приоритеты полей
// задокументированы в normalize.go и фиксируются здесь.

func TestParseAuthPayload_AccessTokenPriority(t *testing.T) {
	t.Parallel()

	// Все три поля сразу: побеждает access_token.
	p := parseAuthPayload([]byte(`{"access_token":"a1","access":"a2","token":"a3"}`))
	require.Equal(t, "a1", p.accessToken())

	// Без access_token: побеждает access.
	p = parseAuthPayload([]byte(`{"access":"a2","token":"a3"}`))
	require.Equal(t, "a2", p.accessToken())

	// Остался только token.
	p = parseAuthPayload([]byte(`{"token":"a3"}`))
	require.Equal(t, "a3", p.accessToken())

	p = parseAuthPayload([]byte(`{}`))
	require.Empty(t, p.accessToken())
}

func TestParseAuthPayload_RefreshTokenPriority(t *testing.T) {
	t.Parallel()

	p := parseAuthPayload([]byte(`{"refresh_token":"r1","refresh":"r2"}`))
	require.Equal(t, "r1", p.refreshToken())

	p = parseAuthPayload([]byte(`{"refresh":"r2"}`))
	require.Equal(t, "r2", p.refreshToken())
}

func TestParseAuthPayload_UserFromTopLevelOrData(t *testing.T) {
	t.Parallel()

	p := parseAuthPayload([]byte(`{"user":{"id":1,"name":"X"},"data":{"user":{"id":2,"name":"Y"}}}`))
	require.NotNil(t, p.user())
	require.Equal(t, int64(1), p.user().ID)

	p = parseAuthPayload([]byte(`{"data":{"user":{"id":2,"name":"Y"}}}`))
	require.NotNil(t, p.user())
	require.Equal(t, int64(2), p.user().ID)

	p = parseAuthPayload([]byte(`{}`))
	require.Nil(t, p.user())
}

func TestServerMessage_Priority(t *testing.T) {
	t.Parallel()

	p := parseAuthPayload([]byte(`{"detail":"bad creds","error":"e","message":"m"}`))
	require.Equal(t, "bad creds", p.serverMessage("fallback"))

	p = parseAuthPayload([]byte(`{"error":"e","message":"m"}`))
	require.Equal(t, "e", p.serverMessage("fallback"))

	p = parseAuthPayload([]byte(`{"message":"m"}`))
	require.Equal(t, "m", p.serverMessage("fallback"))

	p = parseAuthPayload([]byte(`{}`))
	require.Equal(t, "fallback", p.serverMessage("fallback"))
}

// detail в формате FastAPI бывает и не строкой (массив ошибок валидации) —
// тогда он пропускается в пользу следующего поля.
func TestServerMessage_NonStringDetail(t *testing.T) {
	t.Parallel()

	p := parseAuthPayload([]byte(`{"detail":[{"loc":["body"],"msg":"invalid"}],"message":"m"}`))
	require.Equal(t, "m", p.serverMessage("fallback"))
}

// Некорректный JSON — не ошибка: подставляется пустой payload.
func TestParseAuthPayload_MalformedJSON(t *testing.T) {
	t.Parallel()

	p := parseAuthPayload([]byte("<html>gateway error</html>"))
	require.Empty(t, p.accessToken())
	require.Equal(t, "login failed (502)", p.serverMessage(statusFallback("login", 502)))
}
