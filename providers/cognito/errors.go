package cognito

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-federation/core"
)

type wireError struct {
	Type          string `json:"__type"`
	Message       string `json:"message"`
	LegacyMessage string `json:"Message"`
}

// decodeDirectoryError maps a non-2xx directory response to a
// core.DirectoryError, keeping the wire failure code and the directory's
// message verbatim. The __type field sometimes carries a namespace prefix
// ("com.example#UserNotConfirmedException"); only the code after the hash
// is meaningful.
func decodeDirectoryError(status int, body []byte) error {
	decoded := wireError{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			return &core.DirectoryError{
				Message: fmt.Sprintf("directory returned status %d", status),
				Cause:   err,
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

	return &core.DirectoryError{
		Code:    strings.TrimSpace(code),
		Message: message,
	}
}
