package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
)

// ListPropertiesParams — фильтры каталога. Нулевые значения не отправляются.
type ListPropertiesParams struct {
	City     string
	MinPrice float64
	MaxPrice float64
	Type     string
	Gender   string
	Sort     string
	Page     int
	PerPage  int
}

func (p ListPropertiesParams) query() url.Values {
	q := url.Values{}

	if p.City != "" {
		q.Set("city", p.City)
	}
	if p.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(p.MaxPrice, 'f', -1, 64))
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Gender != "" {
		q.Set("gender", p.Gender)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}

	return q
}

// ListProperties возвращает страницу каталога. Эндпойнт публичный:
// токен подставляется, если есть.
func (c *Client) ListProperties(ctx context.Context, params ListPropertiesParams) (*models.PropertiesPage, error) {
	const op = "client.ListProperties"

	resp, err := c.Do(ctx, Request{
		Method:       http.MethodGet,
		Path:         "/properties",
		Query:        params.query(),
		OptionalAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !is2xx(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	// Каталог завёрнут в конверт {"success": true, "data": {...}}.
	var envelope struct {
		Success bool                  `json:"success"`
		Data    models.PropertiesPage `json:"data"`
	}
	if err := decodeJSON(resp, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &envelope.Data, nil
}

// PropertyByID возвращает детальную карточку объявления.
// Для залогиненных пользователей сервер дополняет её контактами владельца.
func (c *Client) PropertyByID(ctx context.Context, id int64) (*models.PropertyDetail, error) {
	const op = "client.PropertyByID"

	resp, err := c.Do(ctx, Request{
		Method:       http.MethodGet,
		Path:         fmt.Sprintf("/properties/%d", id),
		OptionalAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !is2xx(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	var detail models.PropertyDetail
	if err := decodeJSON(resp, &detail); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &detail, nil
}

// Cities возвращает список городов, в которых есть объявления.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	const op = "client.Cities"

	resp, err := c.Do(ctx, Request{
		Method:       http.MethodGet,
		Path:         "/cities",
		OptionalAuth: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !is2xx(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	var cities []string
	if err := decodeJSON(resp, &cities); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cities, nil
}
