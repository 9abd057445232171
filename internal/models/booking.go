package models

import "time"

// Даты бронирования ходят по проводу как "YYYY-MM-DD".
const BookingDateLayout = "2006-01-02"

// Booking - бронирование объявления пользователем.
type Booking struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	UserID     int64     `json:"user_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
}
