package stubapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
)

var (
	// ErrEmailExists - регистрация на уже занятый email.
	ErrEmailExists = errors.New("email exists")
	// ErrInvalidCredentials - неизвестный email или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefresh - неизвестный, протухший или отозванный refresh-токен.
	ErrInvalidRefresh = errors.New("invalid refresh token")
	// ErrPropertyNotFound - объявление не существует или не прошло модерацию.
	ErrPropertyNotFound = errors.New("property not found")
)

type storedUser struct {
	user         models.User
	passwordHash []byte
}

type refreshEntry struct {
	userID    int64
	expiresAt time.Time
}

// store - in-memory данные stub-сервера. Все операции под одним мьютексом:
// для инструмента разработки конкурентность не узкое место.
type store struct {
	mu sync.Mutex

	users        map[int64]*storedUser
	usersByEmail map[string]int64
	nextUserID   int64

	// refresh-токены: один активный на пользователя, ротация при обмене.
	refresh       map[string]refreshEntry
	refreshByUser map[int64]string

	hosts      map[int64]models.HostInfo
	properties []models.Property

	bookings      []models.Booking
	nextBookingID int64
}

func newStore() *store {
	s := &store{
		users:         make(map[int64]*storedUser),
		usersByEmail:  make(map[string]int64),
		nextUserID:    1,
		refresh:       make(map[string]refreshEntry),
		refreshByUser: make(map[int64]string),
		hosts:         make(map[int64]models.HostInfo),
		nextBookingID: 1,
	}
	s.seed()

	return s
}

// seed наполняет stub демо-данными: пара пользователей и небольшой каталог.
func (s *store) seed() {
	demo := []struct {
		user     models.User
		password string
	}{
		{
			user:     models.User{Name: "Анна Смирнова", Email: "anna@example.com", Phone: "+79990000001", Role: "user"},
			password: "password123",
		},
		{
			user:     models.User{Name: "Пётр Иванов", Email: "petr@example.com", Phone: "+79990000002", Role: "user"},
			password: "password123",
		},
	}

	for _, d := range demo {
		// bcrypt.MinCost: сеем на каждом старте, дефолтная стоимость
		// заметно тормозила бы тесты.
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.MinCost)
		if err != nil {
			panic("stubapi: seed bcrypt: " + err.Error())
		}

		u := d.user
		u.ID = s.nextUserID
		s.nextUserID++

		s.users[u.ID] = &storedUser{user: u, passwordHash: hash}
		s.usersByEmail[strings.ToLower(u.Email)] = u.ID
	}

	s.hosts[1] = models.HostInfo{ID: 1, Name: "Ольга Крылова", Phone: "+79991112233"}
	s.hosts[2] = models.HostInfo{ID: 2, Name: "Сергей Волков", Phone: "+79994445566"}

	s.properties = []models.Property{
		{
			ID: 1, Title: "Студия у метро", Description: "Светлая студия, 5 минут до метро.",
			Price: 32000, City: "Москва", Locality: "Марьино", Type: "studio", Gender: "any",
			Images: []string{"https://img.example.com/p1-1.jpg"}, HostID: 1, ApprovalStatus: "approved",
		},
		{
			ID: 2, Title: "Комната в центре", Description: "Комната в трёшке, тихий двор.",
			Price: 18000, City: "Москва", Locality: "Арбат", Type: "room", Gender: "female",
			Images: []string{"https://img.example.com/p2-1.jpg"}, HostID: 2, ApprovalStatus: "approved",
		},
		{
			ID: 3, Title: "Однушка с ремонтом", Description: "Свежий ремонт, техника новая.",
			Price: 27000, City: "Санкт-Петербург", Locality: "Московский район", Type: "flat", Gender: "any",
			Images: []string{"https://img.example.com/p3-1.jpg", "https://img.example.com/p3-2.jpg"},
			HostID: 1, ApprovalStatus: "approved",
		},
		{
			ID: 4, Title: "Комната у парка", Description: "Рядом парк и набережная.",
			Price: 15000, City: "Санкт-Петербург", Locality: "Приморский район", Type: "room", Gender: "male",
			Images: nil, HostID: 2, ApprovalStatus: "approved",
		},
		{
			// На модерации: не должна попадать в публичную выдачу.
			ID: 5, Title: "Новое объявление", Description: "Ожидает проверки.",
			Price: 40000, City: "Казань", Locality: "Вахитовский район", Type: "flat", Gender: "any",
			Images: nil, HostID: 1, ApprovalStatus: "pending",
		},
	}
}

// CreateUser регистрирует пользователя; email нормализуется к нижнему регистру.
func (s *store) CreateUser(name, email, password, phone string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.usersByEmail[key]; ok {
		return models.User{}, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		ID:    s.nextUserID,
		Name:  name,
		Email: key,
		Phone: phone,
		Role:  "user",
	}
	s.nextUserID++

	s.users[u.ID] = &storedUser{user: u, passwordHash: hash}
	s.usersByEmail[key] = u.ID

	return u, nil
}

// Authenticate проверяет пару email/пароль.
func (s *store) Authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	stored := s.users[id]
	if err := bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return stored.user, nil
}

// UserByID возвращает профиль пользователя.
func (s *store) UserByID(id int64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}

	return stored.user, true
}

// IssueRefresh выпускает новый refresh-токен, отзывая прежний токен пользователя.
func (s *store) IssueRefresh(userID int64, ttl time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revokeLocked(userID)

	token := uuid.NewString()
	s.refresh[token] = refreshEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	s.refreshByUser[userID] = token

	return token
}

// ExchangeRefresh обменивает refresh-токен на id пользователя и отзывает его:
// ротация означает, что старый токен одноразовый.
func (s *store) ExchangeRefresh(token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.refresh[token]
	if !ok {
		return 0, ErrInvalidRefresh
	}

	delete(s.refresh, token)
	delete(s.refreshByUser, entry.userID)

	if time.Now().After(entry.expiresAt) {
		return 0, ErrInvalidRefresh
	}

	return entry.userID, nil
}

// RevokeRefresh отзывает активный refresh-токен пользователя (logout).
func (s *store) RevokeRefresh(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revokeLocked(userID)
}

func (s *store) revokeLocked(userID int64) {
	if old, ok := s.refreshByUser[userID]; ok {
		delete(s.refresh, old)
		delete(s.refreshByUser, userID)
	}
}

// propertyFilter - фильтры публичного каталога.
type propertyFilter struct {
	city     string
	minPrice float64
	maxPrice float64
	propType string
	gender   string
	sort     string
	page     int
	perPage  int
}

// ListProperties возвращает страницу одобренных объявлений под фильтрами.
func (s *store) ListProperties(f propertyFilter) models.PropertiesPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Property
	for _, p := range s.properties {
		if p.ApprovalStatus != "approved" {
			continue
		}
		if f.city != "" && !strings.EqualFold(p.City, f.city) {
			continue
		}
		if f.minPrice > 0 && p.Price < f.minPrice {
			continue
		}
		if f.maxPrice > 0 && p.Price > f.maxPrice {
			continue
		}
		if f.propType != "" && p.Type != f.propType {
			continue
		}
		if f.gender != "" && p.Gender != f.gender {
			continue
		}

		matched = append(matched, p)
	}

	switch f.sort {
	case "price_asc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case "price_desc":
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	page, perPage := f.page, f.perPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	total := len(matched)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	items := make([]models.Property, end-start)
	copy(items, matched[start:end])

	return models.PropertiesPage{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}

// PropertyByID возвращает детальную карточку одобренного объявления.
// Контакт владельца отдаётся только аутентифицированным (withContact).
func (s *store) PropertyByID(id int64, withContact bool) (models.PropertyDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.properties {
		if p.ID != id || p.ApprovalStatus != "approved" {
			continue
		}

		host := s.hosts[p.HostID]
		if !withContact {
			host.Phone = ""
		}

		return models.PropertyDetail{Property: p, Host: host}, nil
	}

	return models.PropertyDetail{}, ErrPropertyNotFound
}

// Cities возвращает отсортированный список городов с одобренными объявлениями.
func (s *store) Cities() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var cities []string
	for _, p := range s.properties {
		if p.ApprovalStatus != "approved" {
			continue
		}
		if _, ok := seen[p.City]; ok {
			continue
		}
		seen[p.City] = struct{}{}
		cities = append(cities, p.City)
	}

	sort.Strings(cities)

	return cities
}

// CreateBooking создаёт бронирование одобренного объявления.
func (s *store) CreateBooking(userID, propertyID int64, start, end string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, p := range s.properties {
		if p.ID == propertyID && p.ApprovalStatus == "approved" {
			found = true
			break
		}
	}
	if !found {
		return models.Booking{}, ErrPropertyNotFound
	}

	b := models.Booking{
		ID:         s.nextBookingID,
		PropertyID: propertyID,
		UserID:     userID,
		StartDate:  start,
		EndDate:    end,
		CreatedAt:  time.Now().UTC(),
	}
	s.nextBookingID++
	s.bookings = append(s.bookings, b)

	return b, nil
}

// BookingsByUser возвращает бронирования пользователя (новые первыми).
func (s *store) BookingsByUser(userID int64) []models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for i := len(s.bookings) - 1; i >= 0; i-- {
		if s.bookings[i].UserID == userID {
			out = append(out, s.bookings[i])
		}
	}

	return out
}
