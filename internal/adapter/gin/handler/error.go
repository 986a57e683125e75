package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "lending-service/pkg/errors"
)

// ErrorResponse is the uniform error body. Validation failures carry the
// per-field message map; everything else is a short message class with
// no internal detail.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError maps the core error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		unauthenticated *apperrors.UnauthenticatedError
		unavailable     *apperrors.BookUnavailableError
		noLoan          *apperrors.NoActiveLoanError
		validation      *apperrors.ValidationError
		notFound        *apperrors.NotFoundError
		borrowFailed    *apperrors.BorrowFailedError
		returnFailed    *apperrors.ReturnFailedError
		storeErr        *apperrors.StoreError
	)

	switch {
	case errors.As(err, &unauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_credentials", Message: err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_failed", Fields: validation.Fields})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "book_unavailable", Message: err.Error()})
	case errors.As(err, &noLoan):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no_active_loan", Message: err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &borrowFailed):
		// The operation may have partially advanced; the caller must
		// re-fetch authoritative state rather than trust the last response.
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "borrow_failed", Message: "borrow did not complete, refresh and retry"})
	case errors.As(err, &returnFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "return_failed", Message: "return did not complete, refresh and retry"})
	case errors.As(err, &storeErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "store_unavailable", Message: "the library store is not reachable"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
	}
}
