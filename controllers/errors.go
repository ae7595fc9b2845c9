package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/phillip/nft-ticketing-go/config"
	"github.com/phillip/nft-ticketing-go/middleware"
	"github.com/phillip/nft-ticketing-go/models"
)

type apiError struct {
	status int
	code   string
}

var errorTable = []struct {
	target error
	apiError
}{
	{models.ErrMissingField, apiError{http.StatusBadRequest, "missing_required_field"}},
	{models.ErrEventNotFound, apiError{http.StatusNotFound, "event_not_found"}},
	{models.ErrUserNotFound, apiError{http.StatusNotFound, "user_not_found"}},
	{models.ErrDuplicateTicket, apiError{http.StatusBadRequest, "duplicate_ticket"}},
	{models.ErrEventClosed, apiError{http.StatusBadRequest, "event_closed"}},
	{models.ErrPaymentFailed, apiError{http.StatusBadRequest, "payment_failed"}},
	{models.ErrInvalidTicketType, apiError{http.StatusBadRequest, "invalid_ticket_type"}},
	{models.ErrInvalidPrice, apiError{http.StatusBadRequest, "invalid_price"}},
	{models.ErrInvalidStatus, apiError{http.StatusBadRequest, "invalid_status"}},
	{models.ErrInvalidStatusTransition, apiError{http.StatusBadRequest, "invalid_status_transition"}},
	{models.ErrInvalidStartTime, apiError{http.StatusBadRequest, "invalid_start_time"}},
	{models.ErrForbidden, apiError{http.StatusForbidden, "forbidden"}},
	{models.ErrUnauthenticated, apiError{http.StatusUnauthorized, "unauthorized"}},
}

// respondError maps domain errors to a status and a stable code. Anything
// unrecognized is logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			body := gin.H{"error": err.Error(), "code": e.code}
			var mf *models.MissingFieldError
			if errors.As(err, &mf) {
				body["field"] = mf.Field
			}
			c.JSON(e.status, body)
			return
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		slog.Error("request timed out", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out", "code": "timeout"})
		return
	}

	_ = c.Error(err)
	slog.Error("internal error", "path", c.Request.URL.Path, "request_id", c.GetString("request_id"), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal_error"})
}

// bindError turns a failed ShouldBind into a MissingField error when a
// required tag tripped, and a plain 400 otherwise.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
		respondError(c, models.MissingField(verrs[0].Field()))
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "invalid_request", "details": err.Error()})
}

// RegisterValidation makes validation errors report the JSON field name.
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

func requestContext(c *gin.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
}

func actorID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}
