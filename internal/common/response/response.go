package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivehub/service-rental/internal/common/domain"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Meta carries pagination information.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// detailer is implemented by errors that carry structured context for the client.
type detailer interface {
	Details() interface{}
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Error: &ErrorBody{Code: string(domain.KindValidation), Message: message},
	})
}

// Error maps a domain error to its status code; anything else is a 500.
func Error(c *gin.Context, err error) {
	var kinded domain.KindedError
	if !errors.As(err, &kinded) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
			Error: &ErrorBody{Code: "internal", Message: "internal server error"},
		})
		return
	}

	body := &ErrorBody{Code: string(kinded.Kind()), Message: kinded.Error()}
	var d detailer
	if errors.As(err, &d) {
		body.Details = d.Details()
	}
	c.AbortWithStatusJSON(StatusFor(kinded.Kind()), Envelope{Error: body})
}

// StatusFor returns the HTTP status code for an error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindConflict, domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
