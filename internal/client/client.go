// client реализует HTTP-клиент rental-API с автоматическим управлением
// токенами: подстановка bearer-заголовка, упреждающий refresh по exp,
// реактивный refresh по 401 с единственным повтором запроса.
//
// Конкурентность: экземпляр Client безопасен для использования из разных
// горутин. Refresh-вызовы коалесцируются через singleflight — два запроса,
// одновременно увидевшие протухший токен, дождутся одного общего refresh
// вместо гонки за ротацией refresh-токена.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
	logctx "github.com/pribylovaa/go-rental-storefront/internal/pkg/log"
	"github.com/pribylovaa/go-rental-storefront/internal/pkg/redact"
	"github.com/pribylovaa/go-rental-storefront/internal/session"
)

const (
	// defaultEarlyRefreshMargin — запас до exp, после которого access-токен
	// считается «почти протухшим» и обновляется до отправки запроса.
	defaultEarlyRefreshMargin = 15 * time.Second

	defaultHTTPTimeout = 15 * time.Second

	// Лимит на чтение тел ответов auth-эндпойнтов.
	maxAuthBody = 1 << 20
)

// Client — клиент rental-API поверх session.Session.
type Client struct {
	baseURL string
	httpc   *http.Client
	sess    *session.Session
	margin  time.Duration
	sf      singleflight.Group
}

// Options — необязательные параметры клиента.
type Options struct {
	// HTTPClient настраивается извне (таймауты, прокси и т.д.);
	// nil — клиент с таймаутом по умолчанию.
	HTTPClient *http.Client
	// EarlyRefreshMargin — запас до exp; <=0 — значение по умолчанию (15s).
	EarlyRefreshMargin time.Duration
}

// New создаёт клиент для API по адресу baseURL (без завершающего "/").
func New(baseURL string, sess *session.Session, opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultHTTPTimeout}
	}

	margin := opts.EarlyRefreshMargin
	if margin <= 0 {
		margin = defaultEarlyRefreshMargin
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		sess:    sess,
		margin:  margin,
	}
}

// Session возвращает объект сессии клиента.
func (c *Client) Session() *session.Session { return c.sess }

// Login аутентифицирует пользователя и сохраняет пару токенов
// вместе со снимком профиля.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	const op = "client.Login"

	lg := logctx.From(ctx)

	status, body, err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := parseAuthPayload(body)
	res := p.result()

	if !is2xx(status) || res.AccessToken == "" {
		msg := p.serverMessage(statusFallback("login", status))
		lg.Warn("login_rejected",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
			slog.Int("status", status),
		)
		return nil, fmt.Errorf("%s: %w: %s", op, ErrLogin, msg)
	}

	if err := c.sess.Apply(ctx, res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_ok", slog.String("op", op), slog.String("email", redact.Email(email)))

	return res, nil
}

// RegisterParams — поля регистрации.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// Register создаёт аккаунт. Креды НЕ сохраняются: дальше пользователь
// проходит явный Login (даже если сервер вернул токены в ответе).
func (c *Client) Register(ctx context.Context, params RegisterParams) (*models.AuthResult, error) {
	const op = "client.Register"

	status, body, err := c.postJSON(ctx, "/auth/register", params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := parseAuthPayload(body)

	if !is2xx(status) {
		msg := p.serverMessage(statusFallback("registration", status))
		return nil, fmt.Errorf("%s: %w: %s", op, ErrRegistration, msg)
	}

	return p.result(), nil
}

// Refresh обменивает сохранённый refresh-токен на новую пару.
//
// Без сохранённого refresh-токена падает сразу, не ходя в сеть.
// Отказ сервера зачищает все три значения кред — частичного состояния
// не остаётся. Конкурентные вызовы коалесцируются: все ждут один
// общий исход.
func (c *Client) Refresh(ctx context.Context) (*models.AuthResult, error) {
	const op = "client.Refresh"

	_, ok, err := c.sess.RefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w: no refresh token", op, ErrRefresh)
	}

	// Ключ один на клиента: refresh глобален для пары токенов.
	// Токен перечитывается внутри, чтобы опоздавший вызов не отправил
	// уже ротированное значение.
	v, err, _ := c.sf.Do("refresh", func() (any, error) {
		return c.doRefresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.AuthResult), nil
}

func (c *Client) doRefresh(ctx context.Context) (*models.AuthResult, error) {
	const op = "client.Refresh"

	lg := logctx.From(ctx)

	rt, ok, err := c.sess.RefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w: no refresh token", op, ErrRefresh)
	}

	status, body, err := c.postJSON(ctx, "/auth/refresh", map[string]string{
		"refresh": rt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := parseAuthPayload(body)
	res := p.result()

	if !is2xx(status) || res.AccessToken == "" {
		// Сервер отверг refresh-токен — держать его дальше бессмысленно.
		if cerr := c.sess.Clear(ctx); cerr != nil {
			lg.Warn("credentials_clear_failed",
				slog.String("op", op),
				slog.String("err", cerr.Error()),
			)
		}

		msg := p.serverMessage(statusFallback("refresh", status))
		lg.Warn("refresh_rejected", slog.String("op", op), slog.Int("status", status))

		return nil, fmt.Errorf("%s: %w: %s", op, ErrRefresh, msg)
	}

	if err := c.sess.Apply(ctx, res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("refresh_ok", slog.String("op", op))

	return res, nil
}

// EnsureValidAccessToken гарантирует валидный (или предположительно
// валидный) access-токен перед запросом:
//   - токена нет — выполняется Refresh, его ошибка пробрасывается;
//   - токен есть и exp читается — Refresh при now >= exp-margin;
//   - exp не читается — идём оптимистично и полагаемся на реактивный 401.
func (c *Client) EnsureValidAccessToken(ctx context.Context) error {
	const op = "client.EnsureValidAccessToken"

	lg := logctx.From(ctx)

	at, ok, err := c.sess.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		if _, err := c.Refresh(ctx); err != nil {
			return err
		}

		return nil
	}

	exp, err := session.AccessTokenExpiry(at)
	if err != nil {
		// Не смогли определить срок жизни — это best-effort проверка,
		// а не граница безопасности: сервер всё равно ответит 401.
		lg.Warn("access_token_decode_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil
	}

	if !time.Now().Before(exp.Add(-c.margin)) {
		if _, err := c.Refresh(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Request — исходящий запрос к API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body сериализуется в JSON; nil — без тела.
	Body any
	// Raw — сырое тело как есть (multipart и т.п.); приоритетнее Body.
	// Content-Type для него задаётся через ContentType или Header.
	Raw         []byte
	ContentType string
	// OptionalAuth — публичный эндпойнт: токен подставляется, если есть,
	// но его отсутствие или невозможность обновления не ошибка.
	OptionalAuth bool
}

// Do выполняет аутентифицированный запрос.
//
// Последовательность: EnsureValidAccessToken -> подстановка заголовков ->
// отправка. На 401 разрешён ровно один refresh с повтором запроса;
// повторный 401 возвращается вызывающему как есть. Любой другой статус
// тоже возвращается как есть — интерпретация не-auth ошибок на совести
// вызывающего. Транспортные ошибки не ретраятся.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	return c.do(ctx, req, true)
}

func (c *Client) do(ctx context.Context, req Request, allowRetry bool) (*http.Response, error) {
	const op = "client.Do"

	lg := logctx.From(ctx)

	if err := c.EnsureValidAccessToken(ctx); err != nil {
		if !req.OptionalAuth {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrAuthRequired, err)
		}

		lg.Debug("optional_auth_unavailable",
			slog.String("op", op),
			slog.String("path", req.Path),
		)
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("http",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode == http.StatusUnauthorized && allowRetry {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if _, rerr := c.Refresh(ctx); rerr != nil {
			if req.OptionalAuth {
				// Публичный эндпойнт: 401 отдаём как есть, без эскалации.
				return c.do(ctx, req, false)
			}

			return nil, fmt.Errorf("%s: %w: %v", op, ErrAuthFailed, rerr)
		}

		return c.do(ctx, req, false)
	}

	return resp, nil
}

// Logout best-effort уведомляет сервер (ошибка игнорируется) и
// безусловно зачищает все локальные креды — локальная зачистка не
// зависит от успеха сети.
func (c *Client) Logout(ctx context.Context) error {
	const op = "client.Logout"

	lg := logctx.From(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err == nil {
		if at, ok, aerr := c.sess.AccessToken(ctx); aerr == nil && ok {
			httpReq.Header.Set("Authorization", "Bearer "+at)
		}

		resp, derr := c.httpc.Do(httpReq)
		if derr != nil {
			lg.Warn("logout_notify_failed",
				slog.String("op", op),
				slog.String("err", derr.Error()),
			)
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}

	if err := c.sess.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("logout_ok", slog.String("op", op))

	return nil
}

// buildRequest собирает http.Request из описания: тело пересобирается
// на каждую попытку, поэтому повтор после 401 тривиален.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case req.Raw != nil:
		body = bytes.NewReader(req.Raw)
		contentType = req.ContentType
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}

		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	// Content-Type не навязываем, если задан вызывающим
	// (например, multipart со своим boundary).
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	// Authorization вызывающего имеет приоритет.
	if httpReq.Header.Get("Authorization") == "" {
		if at, ok, err := c.sess.AccessToken(ctx); err == nil && ok {
			httpReq.Header.Set("Authorization", "Bearer "+at)
		}
	}

	if httpReq.Header.Get("X-Request-Id") == "" {
		httpReq.Header.Set("X-Request-Id", uuid.NewString())
	}

	return httpReq, nil
}

// postJSON — запрос к auth-эндпойнту: без bearer, тело JSON,
// ответ читается целиком (с лимитом).
func (c *Client) postJSON(ctx context.Context, path string, payload any) (int, []byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return 0, nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthBody))
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
