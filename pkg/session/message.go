package session

import (
	"errors"
	"strings"
)

const genericMessage = "Something went wrong. Please try again."

// UserMessenger is implemented by errors that carry text meant for the user,
// such as the detail field of an API error response.
type UserMessenger interface {
	UserMessage() string
}

// Message returns the text to show the user for err: the server-provided
// message when the error carries one, else a single-line error text, else a
// generic message. It returns an empty string for a nil error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var um UserMessenger
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	// Joined chains render one error per line.
	if msg := strings.TrimSpace(err.Error()); msg != "" && !strings.Contains(msg, "\n") {
		return msg
	}
	return genericMessage
}
