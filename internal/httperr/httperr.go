package httperr

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ContextLogger is the gin context key holding the request-scoped logger.
const ContextLogger = "logger"

type HTTPError struct {
	Success bool   `json:"success"`
	Code    string `json:"error_code"`
	Message string `json:"error"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// Respond writes err as a JSON envelope. Unexpected errors are logged with
// full detail and reach the client only as a generic message.
func Respond(c *gin.Context, err error) {
	appErr := Classify(err)

	if appErr.Kind == KindUnexpected {
		loggerFrom(c).ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}

	Write(c, appErr.Kind.Status(), appErr.Code, appErr.Message)
}

// Bind converts a gin binding failure into a ValidationError naming the
// offending fields.
func Bind(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return &AppError{
			Kind:    KindValidation,
			Code:    "invalid_request",
			Message: "Données invalides: " + strings.Join(fields, ", "),
			Err:     err,
		}
	}
	return &AppError{
		Kind:    KindValidation,
		Code:    "invalid_request",
		Message: "Données invalides.",
		Err:     err,
	}
}

func loggerFrom(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(ContextLogger); ok {
		if l, ok := v.(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
