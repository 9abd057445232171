package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-rental-storefront/internal/models"
)

// Me возвращает профиль текущего пользователя с сервера
// (источник истины, в отличие от кэша в сессии).
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	const op = "client.Me"

	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/me",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !is2xx(resp.StatusCode) {
		return nil, statusError(op, resp)
	}

	var u models.User
	if err := decodeJSON(resp, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}
