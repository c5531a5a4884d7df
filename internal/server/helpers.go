package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/STTM-NSU/crypto-dashboard/internal/auth"
	"github.com/STTM-NSU/crypto-dashboard/internal/coingecko"
	"github.com/STTM-NSU/crypto-dashboard/internal/dashboard"
	"github.com/STTM-NSU/crypto-dashboard/internal/market"
	"github.com/STTM-NSU/crypto-dashboard/internal/portfolio"
	"github.com/bytedance/sonic"
)

const _maxBodySize = 1 << 20

var InvalidBodyError = errors.New("invalid request body")

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := sonic.Marshal(data)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body = []byte(`{"error":"can't encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, _maxBodySize))
	if err != nil {
		return errors.Join(InvalidBodyError, err)
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return errors.Join(InvalidBodyError, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP statuses. Anything unrecognised is a
// 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, InvalidBodyError),
		errors.Is(err, auth.EmptyCredentialsError),
		errors.Is(err, portfolio.InvalidInputError),
		errors.Is(err, portfolio.IndexOutOfRangeError),
		errors.Is(err, market.UnknownViewError),
		errors.Is(err, coingecko.EmptyCoinIDError):
		return http.StatusBadRequest
	case errors.Is(err, portfolio.NotLoggedInError),
		errors.Is(err, auth.IncorrectPasswordError):
		return http.StatusUnauthorized
	case errors.Is(err, auth.UserNotFoundError),
		errors.Is(err, dashboard.ChartUnavailableError):
		return http.StatusNotFound
	case errors.Is(err, auth.UserExistsError),
		errors.Is(err, market.FetchInProgressError),
		errors.Is(err, market.StaleResponseError):
		return http.StatusConflict
	case errors.Is(err, coingecko.RateLimitedError):
		return http.StatusTooManyRequests
	case errors.Is(err, coingecko.RequestError),
		errors.Is(err, coingecko.MalformedResponseError):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorMessage hides internal failures and passes domain messages through.
func errorMessage(err error, status int) string {
	switch {
	case status == http.StatusInternalServerError:
		return "Internal server error"
	case errors.Is(err, InvalidBodyError):
		return InvalidBodyError.Error()
	case errors.Is(err, coingecko.RateLimitedError):
		return coingecko.RateLimitedError.Error() + "."
	}
	return err.Error()
}
