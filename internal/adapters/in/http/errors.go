package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the uniform error body of the API.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// writeError maps a domain error onto an HTTP status. Conflicts surface as
// 400 so clients treat them as a bad request against current state rather
// than retrying; a retryable upstream failure is the gateway's 502, a
// non-retryable one means the upstream rejected the input.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrQuotationExpired):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
			Hint:    "request a new quotation and retry",
		})

	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrConflict):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})

	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})

	case errors.Is(err, errs.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{
			Code:    http.StatusForbidden,
			Message: err.Error(),
		})

	case errors.Is(err, errs.ErrVersionIsInvalid):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Code:    http.StatusConflict,
			Message: "the delivery was modified concurrently, retry the request",
		})

	case errs.IsRetryableUpstream(err):
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    http.StatusBadGateway,
			Message: "the courier service is temporarily unavailable",
		})

	case errors.Is(err, errs.ErrUpstream):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}
