package identitypool

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrExchangeRejected = errors.New("identitypool: credential exchange rejected")

// ExchangeError is a rejection from the credential exchange service. Message
// carries the service's message verbatim for pass-through into Outcome
// reasons.
type ExchangeError struct {
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

func (e *ExchangeError) Error() string {
	if e == nil {
		return ErrExchangeRejected.Error()
	}
	base := ErrExchangeRejected.Error()
	if strings.TrimSpace(e.Code) != "" {
		base += ": " + strings.TrimSpace(e.Code)
	}
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	if e.StatusCode > 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}
	return base
}

func (e *ExchangeError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return ErrExchangeRejected
	}
	return errors.Join(ErrExchangeRejected, e.Cause)
}

// RemoteMessage returns the exchange service's original message.
func (e *ExchangeError) RemoteMessage() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return e.Error()
}

type wireError struct {
	Type          string `json:"__type"`
	Message       string `json:"message"`
	LegacyMessage string `json:"Message"`
}

func decodeExchangeError(status int, body []byte) error {
	decoded := wireError{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			return &ExchangeError{
				StatusCode: status,
				Message:    fmt.Sprintf("exchange returned status %d", status),
				Cause:      err,
			}
		}
	}

	code := decoded.Type
	if idx := strings.LastIndex(code, "#"); idx >= 0 {
		code = code[idx+1:]
	}
	message := decoded.Message
	if message == "" {
		message = decoded.LegacyMessage
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &ExchangeError{
		StatusCode: status,
		Code:       strings.TrimSpace(code),
		Message:    message,
	}
}
