package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/db"
)

type errorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	Needed    int    `json:"needed,omitempty"`
	Available *int   `json:"available,omitempty"`
}

// statusFor maps engine and store errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, allocator.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, allocator.ErrCapacityExceeded), errors.Is(err, db.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, allocator.ErrRouteNotOperating),
		errors.Is(err, allocator.ErrInvalidInput),
		errors.Is(err, allocator.ErrInvalidDate),
		errors.Is(err, allocator.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: allocator.UserMessage(err)}

	if errors.Is(err, db.ErrConflict) {
		resp.Error = "The record was changed by someone else, please retry"
	}
	if status != http.StatusInternalServerError {
		resp.Detail = err.Error()
	} else {
		_ = c.Error(err)
	}

	var capErr *allocator.CapacityError
	if errors.As(err, &capErr) {
		resp.Needed = capErr.Needed
		resp.Available = &capErr.Available
	}

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "Malformed request", Detail: err.Error()})
}
