package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bnema/adminkit/internal/domain"
)

// failure is a raw failed response before classification.
type failure struct {
	Status         int
	Data           []byte
	ContentType    string
	TransportError string
}

// transportFailure is the synthetic 500 standing in for a network or parse error.
func transportFailure(message string) failure {
	message = strings.TrimSpace(message)
	if message == "" {
		message = domain.MessageNetworkError
	}

	data, _ := json.Marshal(errorPayload{Message: message})

	return failure{
		Status:         http.StatusInternalServerError,
		Data:           data,
		ContentType:    "application/json",
		TransportError: message,
	}
}

type errorPayload struct {
	Message string `json:"Message"`
}

func effectiveStatus(f failure) int {
	if f.Status > 0 {
		return f.Status
	}
	return http.StatusInternalServerError
}

// classify derives the ClassifiedError for a failure. It is pure so the
// returned value and the published event can never disagree.
func classify(method string, f failure) domain.ClassifiedError {
	status := effectiveStatus(f)
	message, raw := decodeErrorBody(f.Data, f.ContentType)

	switch {
	case status == http.StatusBadRequest && strings.EqualFold(method, http.MethodGet):
		return domain.ClassifiedError{
			Status:     status,
			Message:    firstNonEmpty(message, domain.MessageBadRequest),
			Returnable: true,
		}
	case status >= 500 && status < 600:
		switch status {
		case http.StatusBadGateway:
			message = domain.MessageBadGateway
		case http.StatusGatewayTimeout:
			message = domain.MessageGatewayTimeout
		default:
			message = firstNonEmpty(message, raw, domain.MessageServerError)
		}
		return domain.ClassifiedError{Status: status, Message: message}
	default:
		return domain.ClassifiedError{
			Status:  status,
			Message: firstNonEmpty(f.TransportError, message, raw, domain.MessageGenericError),
		}
	}
}

// decodeErrorBody returns the body's Message field and, when the body is a
// bare string, that string. HTML payloads never surface as a message.
func decodeErrorBody(data []byte, contentType string) (message string, raw string) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", ""
	}

	switch trimmed[0] {
	case '{':
		return messageField([]byte(trimmed)), ""
	case '"':
		var text string
		if err := json.Unmarshal([]byte(trimmed), &text); err == nil {
			trimmed = strings.TrimSpace(text)
		}
	case '[':
		return "", ""
	}

	if isHTML(trimmed, contentType) {
		return "", ""
	}

	return "", trimmed
}

// messageField reads the exact "Message" key; other casings do not count.
func messageField(data []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}

	var message string
	if err := json.Unmarshal(fields["Message"], &message); err != nil {
		return ""
	}

	return strings.TrimSpace(message)
}

func isHTML(body string, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}

	lower := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(lower, "<!doctype html") || strings.Contains(lower, "<html")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}

	return ""
}
