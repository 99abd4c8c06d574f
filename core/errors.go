package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// DirectoryCodeUserNotConfirmed is the directory failure code for accounts
// that exist but have not completed confirmation.
const DirectoryCodeUserNotConfirmed = "UserNotConfirmedException"

var (
	// ErrNotAuthenticated signals that the login continuation was invoked
	// without an authenticated user. This is a programming error, not a
	// flow outcome; public entry points never reach it.
	ErrNotAuthenticated = errors.New("core: no authenticated user")

	ErrPoolNotConfigured     = errors.New("core: directory pool is not configured")
	ErrExchangeNotConfigured = errors.New("core: credential exchange is not configured")
)

const (
	FederationErrorBadInput         = "FEDERATION_BAD_INPUT"
	FederationErrorDirectory        = "FEDERATION_DIRECTORY_REJECTED"
	FederationErrorExchange         = "FEDERATION_EXCHANGE_REJECTED"
	FederationErrorNotAuthenticated = "FEDERATION_NOT_AUTHENTICATED"
	FederationErrorInternal         = "FEDERATION_INTERNAL_ERROR"
)

// DirectoryError is a rejection from the identity directory. Message carries
// the directory's human-readable message verbatim; Code carries its failure
// code when the wire protocol exposes one.
type DirectoryError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DirectoryError) Error() string {
	if e == nil {
		return "core: directory rejected request"
	}
	base := "core: directory rejected request"
	if strings.TrimSpace(e.Code) != "" {
		base += ": " + strings.TrimSpace(e.Code)
	}
	if strings.TrimSpace(e.Message) != "" {
		base += ": " + strings.TrimSpace(e.Message)
	}
	return base
}

func (e *DirectoryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// RemoteMessage returns the directory's original message for verbatim
// pass-through into Outcome reasons.
func (e *DirectoryError) RemoteMessage() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return e.Error()
}

// IsUserNotConfirmed reports whether err is a directory rejection for an
// unconfirmed account.
func IsUserNotConfirmed(err error) bool {
	var dirErr *DirectoryError
	if !errors.As(err, &dirErr) || dirErr == nil {
		return false
	}
	return dirErr.Code == DirectoryCodeUserNotConfirmed
}

type remoteMessenger interface {
	RemoteMessage() string
}

// ReasonFromError extracts the remote service's message from err, falling
// back to err.Error(). Flow outcomes must never discard the original remote
// message.
func ReasonFromError(err error) string {
	if err == nil {
		return ""
	}
	var remote remoteMessenger
	if errors.As(err, &remote) {
		if message := remote.RemoteMessage(); strings.TrimSpace(message) != "" {
			return message
		}
	}
	return err.Error()
}

func federationErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureFederationErrorEnvelope(richErr)
	}

	if errors.Is(err, ErrNotAuthenticated) {
		return newFederationError(err.Error(), goerrors.CategoryAuth, FederationErrorNotAuthenticated)
	}

	var dirErr *DirectoryError
	if errors.As(err, &dirErr) {
		return newFederationError(err.Error(), goerrors.CategoryExternal, FederationErrorDirectory)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "exchange"):
		return newFederationError(err.Error(), goerrors.CategoryExternal, FederationErrorExchange)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newFederationError(err.Error(), goerrors.CategoryBadInput, FederationErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureFederationErrorEnvelope(mapped)
}

func newFederationError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureFederationErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureFederationErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = federationHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultFederationTextCode(err.Category)
	}
	return err
}

func defaultFederationTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return FederationErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return FederationErrorNotAuthenticated
	case goerrors.CategoryExternal:
		return FederationErrorDirectory
	default:
		return FederationErrorInternal
	}
}

func federationHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return http.StatusUnauthorized
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
