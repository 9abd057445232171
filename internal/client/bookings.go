package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
)

// BookingParams — создание бронирования; даты в формате "YYYY-MM-DD".
type BookingParams struct {
	PropertyID int64  `json:"property_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// CreateBooking бронирует объявление. Требует аутентификации;
// валидация дат и доступности — на сервере.
func (c *Client) CreateBooking(ctx context.Context, params BookingParams) (*models.Booking, error) {
	const op = "client.CreateBooking"

	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/bookings",
		Body:   params,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !is2xx(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	var envelope struct {
		Success bool           `json:"success"`
		Data    models.Booking `json:"data"`
	}
	if err := decodeJSON(resp, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &envelope.Data, nil
}

// MyBookings возвращает бронирования текущего пользователя.
func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	const op = "client.MyBookings"

	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/bookings",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !is2xx(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	var out struct {
		Items []models.Booking `json:"items"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Items, nil
}
