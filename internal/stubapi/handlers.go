package stubapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
	logctx "github.com/pribylovaa/go-rental-storefront/internal/pkg/log"
	"github.com/pribylovaa/go-rental-storefront/internal/pkg/redact"
)

// writeJSON сериализует ответ; ошибки записи только логируются,
// статус к этому моменту уже ушёл клиенту.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail отправляет ошибку в форме {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeSuccess оборачивает полезную нагрузку в конверт {"success", "data"}.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

// issuePair выпускает пару токенов и собирает тело auth-ответа.
func (a *API) issuePair(user models.User) (map[string]any, error) {
	access, err := a.issueAccessToken(user.ID, user.Role, time.Now())
	if err != nil {
		return nil, err
	}

	refresh := a.db.IssueRefresh(user.ID, a.cfg.RefreshTTL)

	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	}, nil
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "stubapi.handleRegister"

	lg := logctx.From(r.Context())

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := a.db.CreateUser(req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			writeDetail(w, http.StatusBadRequest, "Email exists")
			return
		}

		lg.Error("register_failed", slog.String("op", op), slog.String("err", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	lg.Info("user_registered",
		slog.String("op", op),
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "stubapi.handleLogin"

	lg := logctx.From(r.Context())

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.db.Authenticate(req.Email, req.Password)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	body, err := a.issuePair(user)
	if err != nil {
		lg.Error("token_issue_failed", slog.String("op", op), slog.String("err", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	lg.Info("login_ok", slog.String("op", op), slog.Int64("user_id", user.ID))

	writeJSON(w, http.StatusOK, body)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "stubapi.handleRefresh"

	lg := logctx.From(r.Context())

	// Принимаем оба варианта имени поля: разные клиенты шлют по-разному.
	var req struct {
		Refresh      string `json:"refresh"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token := req.Refresh
	if token == "" {
		token = req.RefreshToken
	}
	if token == "" {
		writeDetail(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	userID, err := a.db.ExchangeRefresh(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, ok := a.db.UserByID(userID)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	body, err := a.issuePair(user)
	if err != nil {
		lg.Error("token_issue_failed", slog.String("op", op), slog.String("err", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	lg.Info("refresh_ok", slog.String("op", op), slog.Int64("user_id", user.ID))

	writeJSON(w, http.StatusOK, body)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	const op = "stubapi.handleLogout"

	lg := logctx.From(r.Context())

	// Logout best-effort: отзываем refresh, если bearer валиден,
	// но отвечаем 200 в любом случае.
	if tok := bearerToken(r); tok != "" {
		if uid, err := a.validateAccessToken(tok); err == nil {
			a.db.RevokeRefresh(uid)
			lg.Info("logout_ok", slog.String("op", op), slog.Int64("user_id", uid))
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (a *API) handleCities(w http.ResponseWriter, r *http.Request) {
	cities := a.db.Cities()
	if cities == nil {
		cities = []string{}
	}

	writeJSON(w, http.StatusOK, cities)
}

func (a *API) handleListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := propertyFilter{
		city:     q.Get("city"),
		propType: q.Get("type"),
		gender:   q.Get("gender"),
		sort:     q.Get("sort"),
	}
	f.minPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	f.maxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)
	f.page, _ = strconv.Atoi(q.Get("page"))
	f.perPage, _ = strconv.Atoi(q.Get("per_page"))

	page := a.db.ListProperties(f)
	if page.Items == nil {
		page.Items = []models.Property{}
	}

	writeSuccess(w, http.StatusOK, page)
}

func (a *API) handlePropertyByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid property id")
		return
	}

	withContact := userIDFrom(r.Context()) != 0

	detail, err := a.db.PropertyByID(id, withContact)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := a.db.UserByID(userIDFrom(r.Context()))
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	const op = "stubapi.handleCreateBooking"

	lg := logctx.From(r.Context())

	var req struct {
		PropertyID int64  `json:"property_id"`
		StartDate  string `json:"start_date"`
		EndDate    string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start, err := time.Parse(models.BookingDateLayout, req.StartDate)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid dates")
		return
	}
	end, err := time.Parse(models.BookingDateLayout, req.EndDate)
	if err != nil || !end.After(start) {
		writeDetail(w, http.StatusBadRequest, "Invalid dates")
		return
	}

	booking, err := a.db.CreateBooking(userIDFrom(r.Context()), req.PropertyID, req.StartDate, req.EndDate)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Property not found")
		return
	}

	lg.Info("booking_created",
		slog.String("op", op),
		slog.Int64("booking_id", booking.ID),
		slog.Int64("property_id", booking.PropertyID),
	)

	writeSuccess(w, http.StatusCreated, booking)
}

func (a *API) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	items := a.db.BookingsByUser(userIDFrom(r.Context()))
	if items == nil {
		items = []models.Booking{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
