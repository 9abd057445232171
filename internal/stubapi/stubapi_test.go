package stubapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-rental-storefront/internal/client"
	"github.com/pribylovaa/go-rental-storefront/internal/session"
	"github.com/pribylovaa/go-rental-storefront/internal/storage/memory"
	"github.com/pribylovaa/go-rental-storefront/internal/stubapi"
)

func newStub(t *testing.T, cfg stubapi.Config) *httptest.Server {
	t.Helper()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}

	srv := httptest.NewServer(stubapi.New(cfg, nil).Router())
	t.Cleanup(srv.Close)

	return srv
}

func newClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()

	sess := session.New(memory.New(), memory.New())

	return client.New(baseURL, sess, client.Options{})
}

// Сквозной сценарий: login засеянным пользователем, каталог,
// бронирование, профиль, logout.
func TestStub_FullFlow(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	res, err := c.Login(ctx, "anna@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.User)
	require.Equal(t, "anna@example.com", res.User.Email)

	cities, err := c.Cities(ctx)
	require.NoError(t, err)
	require.Contains(t, cities, "Москва")
	require.Contains(t, cities, "Санкт-Петербург")

	page, err := c.ListProperties(ctx, client.ListPropertiesParams{City: "Москва"})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	for _, p := range page.Items {
		require.Equal(t, "Москва", p.City)
		require.Equal(t, "approved", p.ApprovalStatus)
	}

	detail, err := c.PropertyByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Студия у метро", detail.Title)
	// Залогинен — контакт владельца присутствует.
	require.NotEmpty(t, detail.Host.Phone)

	booking, err := c.CreateBooking(ctx, client.BookingParams{
		PropertyID: 1,
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-10",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), booking.PropertyID)
	require.Equal(t, res.User.ID, booking.UserID)

	list, err := c.MyBookings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, booking.ID, list[0].ID)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, me.ID)

	require.NoError(t, c.Logout(ctx))

	// После logout credentials очищены, приватные ресурсы недоступны.
	_, err = c.Me(ctx)
	require.ErrorIs(t, err, client.ErrAuthRequired)
}

// Анонимный доступ: каталог открыт, контакт владельца скрыт,
// приватные ресурсы закрыты.
func TestStub_Anonymous(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	page, err := c.ListProperties(ctx, client.ListPropertiesParams{})
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)

	detail, err := c.PropertyByID(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, detail.Host.Phone)

	_, err = c.Me(ctx)
	require.ErrorIs(t, err, client.ErrAuthRequired)
}

func TestStub_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	res, err := c.Register(ctx, client.RegisterParams{
		Name:     "Новый Пользователь",
		Email:    "new@example.com",
		Password: "secret123",
		Phone:    "+79990000099",
	})
	require.NoError(t, err)
	require.NotNil(t, res.User)

	// Повторная регистрация на тот же email отклоняется с серверным текстом.
	_, err = c.Register(ctx, client.RegisterParams{
		Email:    "new@example.com",
		Password: "secret123",
	})
	require.ErrorIs(t, err, client.ErrRegistration)
	require.ErrorContains(t, err, "Email exists")

	_, err = c.Login(ctx, "new@example.com", "secret123")
	require.NoError(t, err)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", me.Email)
}

func TestStub_LoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)

	_, err := c.Login(context.Background(), "anna@example.com", "wrong")
	require.ErrorIs(t, err, client.ErrLogin)
	require.ErrorContains(t, err, "Invalid credentials")
}

// Короткий AccessTTL заставляет клиент упреждающе обменять refresh-токен
// перед вторым запросом; ротация выдаёт новый refresh и отзывает старый.
func TestStub_ProactiveRefreshAndRotation(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{AccessTTL: 3 * time.Second})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	res, err := c.Login(ctx, "petr@example.com", "password123")
	require.NoError(t, err)
	firstRefresh := res.RefreshToken

	// Токен живёт 3s при марже 15s: первый же запрос уходит в refresh.
	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "petr@example.com", me.Email)

	// Старый refresh-токен одноразовый.
	resp, err := http.Post(srv.URL+"/auth/refresh", "application/json",
		strings.NewReader(`{"refresh": "`+firstRefresh+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStub_BookingValidation(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.Login(ctx, "anna@example.com", "password123")
	require.NoError(t, err)

	// Конец раньше начала.
	_, err = c.CreateBooking(ctx, client.BookingParams{
		PropertyID: 1,
		StartDate:  "2026-09-10",
		EndDate:    "2026-09-01",
	})
	require.ErrorContains(t, err, "Invalid dates")

	// Объявление на модерации недоступно для бронирования.
	_, err = c.CreateBooking(ctx, client.BookingParams{
		PropertyID: 5,
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-10",
	})
	require.ErrorContains(t, err, "Property not found")
}

// Объявление на модерации не видно ни в списке, ни по id.
func TestStub_PendingPropertyHidden(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	page, err := c.ListProperties(ctx, client.ListPropertiesParams{City: "Казань"})
	require.NoError(t, err)
	require.Equal(t, 0, page.Total)

	_, err = c.PropertyByID(ctx, 5)
	require.ErrorContains(t, err, "Not found")
}

func TestStub_PropertyFilters(t *testing.T) {
	t.Parallel()

	srv := newStub(t, stubapi.Config{})
	c := newClient(t, srv.URL)
	ctx := context.Background()

	page, err := c.ListProperties(ctx, client.ListPropertiesParams{
		MaxPrice: 20000,
		Sort:     "price_asc",
	})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.True(t, page.Items[0].Price <= page.Items[1].Price)

	page, err = c.ListProperties(ctx, client.ListPropertiesParams{
		Type: "room", Gender: "female",
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	page, err = c.ListProperties(ctx, client.ListPropertiesParams{
		Page: 2, PerPage: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, 2, page.Page)
}
