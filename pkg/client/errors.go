package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrInvalidURL is returned by New for a worker URL that is not absolute
// http(s).
var ErrInvalidURL = errors.New("invalid worker url")

const maxErrorBody = 1 << 20

// APIError is a non-2xx reply from a JSON endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func newAPIError(resp *http.Response) *APIError {
	e := &APIError{Status: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		e.Message = body.Error
	} else {
		e.Message = http.StatusText(resp.StatusCode)
		if e.Message == "" {
			e.Message = "unexpected status"
		}
	}

	return e
}
