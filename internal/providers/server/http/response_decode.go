package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/crmarques/boxctl/faults"
	"github.com/crmarques/boxctl/resource"
)

type envelope struct {
	Result any            `json:"result"`
	Error  *envelopeError `json:"error"`
}

type envelopeError struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
}

// decodeEnvelope turns a BoxBilling response into a value or a typed error.
// An application error in the body takes precedence over the HTTP status.
func decodeEnvelope(statusCode int, body []byte) (resource.Value, error) {
	decoded, decodeErr := parseEnvelope(body)
	if decodeErr == nil && decoded.Error != nil {
		return nil, applicationError(decoded.Error)
	}
	if statusCode >= http.StatusBadRequest {
		return nil, classifyStatusError(statusCode, body)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return normalizeResult(decoded.Result), nil
}

func parseEnvelope(body []byte) (envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return envelope{}, internalError("remote API returned an empty response body", nil)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var decoded envelope
	if err := decoder.Decode(&decoded); err != nil {
		return envelope{}, internalError(
			fmt.Sprintf("remote API response is not a JSON envelope: %s", summarizeBody(body)),
			err,
		)
	}
	return decoded, nil
}

// normalizeResult maps the falsy results BoxBilling uses for "nothing" to nil.
func normalizeResult(value any) resource.Value {
	switch typed := value.(type) {
	case nil:
		return nil
	case bool:
		if !typed {
			return nil
		}
	case string:
		if typed == "" {
			return nil
		}
	case []any:
		if len(typed) == 0 {
			return nil
		}
	case map[string]any:
		if len(typed) == 0 {
			return nil
		}
		return resource.Data(typed)
	}
	return value
}

func applicationError(apiErr *envelopeError) error {
	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = "remote API reported an error"
	}
	code, _ := strconv.Atoi(resource.CanonicalString(apiErr.Code))
	return faults.NewApplicationError(message, code)
}

func classifyStatusError(statusCode int, body []byte) error {
	message := fmt.Sprintf("remote request failed with status %d: %s", statusCode, summarizeBody(body))

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	}

	if statusCode >= 400 && statusCode < 500 {
		return validationError(message, nil)
	}
	return transportError(message, nil)
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
