package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// decodeJSON читает тело ответа в out и закрывает его.
func decodeJSON(resp *http.Response, out any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError превращает не-2xx ответ в ошибку с серверным сообщением.
// Тело вычитывается и закрывается.
func statusError(op string, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxAuthBody))
	msg := parseAuthPayload(body).serverMessage(statusFallback("request", resp.StatusCode))

	return fmt.Errorf("%s: %s", op, msg)
}
