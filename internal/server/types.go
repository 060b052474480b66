// Package server defines the connection request parameters and utility
// helpers that are reused across client and session logic.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// JoinParams are the handshake parameters read from the connection request.
type JoinParams struct {
	Room     string `validate:"required,max=128"`
	Username string `validate:"required,max=64"`
}

func parseJoinParams(r *http.Request) (JoinParams, error) {
	query := r.URL.Query()
	params := JoinParams{
		Room:     query.Get("room"),
		Username: query.Get("username"),
	}
	if err := validate.Struct(params); err != nil {
		return params, fmt.Errorf("%w: %w", chat.ErrConnectParams, err)
	}
	return params, nil
}

// connectRejectReason turns a parameter error into the close frame reason.
func connectRejectReason(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() != "required" {
				return "Room or username too long"
			}
		}
	}
	return "Missing room or username parameters"
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
