package models

// AuthResult - нормализованный результат login/refresh.
//
// Описание:
//   - AccessToken — короткоживущий bearer-токен для API-запросов;
//   - RefreshToken — долгоживущий секрет для выпуска нового access-токена;
//     пустая строка означает «сервер не вернул» (ротация опциональна);
//   - User — снимок профиля; nil, если сервер его не прислал.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         *User
}
