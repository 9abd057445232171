package models

// User - кэшированный профиль пользователя, который API отдаёт вместе с токенами.
//
// Это денормализованный снимок, а не источник истины: при каждом login/refresh,
// вернувшем профиль, он заменяется целиком и никогда не мёржится по полям.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}
