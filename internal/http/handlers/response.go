// Package handlers provides the HTTP endpoints of the public API.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. Every error response
// uses the same envelope so clients can handle failures uniformly:
//
//	HTTP/1.1 404 Not Found
//	{ "error": "Image file not found" }
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studybuddy/go-study-backend/internal/http/middleware"
	"github.com/studybuddy/go-study-backend/internal/services"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error" example:"Image file not found"`
}

// fail writes the error envelope and logs server-side failures with the
// request-scoped logger.
func fail(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().Int("status", status).Msg(message)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// failErr maps well-known service errors onto statuses and falls back to a
// 500 with the error text, matching the API's historical behavior.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInvalidSession):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserExists):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoContent):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrQuizFormat):
		fail(c, http.StatusInternalServerError, err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("request failed")
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
