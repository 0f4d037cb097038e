package transport

import (
	"net/http"
	"testing"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatusFallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 404, effectiveStatus(failure{Status: 404}))
	assert.Equal(t, 500, effectiveStatus(failure{}))
	assert.Equal(t, 500, effectiveStatus(transportFailure("decode response: invalid JSON payload")))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		method string
		f      failure
		want   domain.ClassifiedError
	}{
		{
			name:   "bad request on read without message",
			method: http.MethodGet,
			f:      failure{Status: 400, Data: []byte(`{}`)},
			want:   domain.ClassifiedError{Status: 400, Message: "Bad request", Returnable: true},
		},
		{
			name:   "server error message field",
			method: http.MethodPut,
			f:      failure{Status: 500, Data: []byte(`{"Message":"db down"}`)},
			want:   domain.ClassifiedError{Status: 500, Message: "db down"},
		},
		{
			name:   "server error bare json string",
			method: http.MethodGet,
			f:      failure{Status: 503, Data: []byte(`"maintenance"`)},
			want:   domain.ClassifiedError{Status: 503, Message: "maintenance"},
		},
		{
			name:   "server error html body",
			method: http.MethodGet,
			f:      failure{Status: 500, Data: []byte(`<html><body>oops</body></html>`)},
			want:   domain.ClassifiedError{Status: 500, Message: "Server error"},
		},
		{
			name:   "generic prefers transport error",
			method: http.MethodGet,
			f:      failure{Status: 404, Data: []byte(`{"Message":"missing"}`), TransportError: "dial failed"},
			want:   domain.ClassifiedError{Status: 404, Message: "dial failed"},
		},
		{
			name:   "generic body message",
			method: http.MethodGet,
			f:      failure{Status: 404, Data: []byte(`{"Message":"missing"}`)},
			want:   domain.ClassifiedError{Status: 404, Message: "missing"},
		},
		{
			name:   "lowercase message key is ignored",
			method: http.MethodGet,
			f:      failure{Status: 404, Data: []byte(`{"message":"missing"}`)},
			want:   domain.ClassifiedError{Status: 404, Message: "An error occurred"},
		},
		{
			name:   "lowercase message key on server error",
			method: http.MethodPost,
			f:      failure{Status: 500, Data: []byte(`{"message":"db down"}`)},
			want:   domain.ClassifiedError{Status: 500, Message: "Server error"},
		},
		{
			name:   "non-string message field",
			method: http.MethodGet,
			f:      failure{Status: 409, Data: []byte(`{"Message":{"text":"conflict"}}`)},
			want:   domain.ClassifiedError{Status: 409, Message: "An error occurred"},
		},
		{
			name:   "generic fallback",
			method: http.MethodGet,
			f:      failure{Status: 422, Data: []byte(`[1,2]`)},
			want:   domain.ClassifiedError{Status: 422, Message: "An error occurred"},
		},
		{
			name:   "forbidden html string",
			method: http.MethodGet,
			f:      failure{Status: 403, Data: []byte(`<!doctype html><p>denied</p>`), ContentType: "text/html"},
			want:   domain.ClassifiedError{Status: 403, Message: "An error occurred"},
		},
		{
			name:   "missing status",
			method: http.MethodGet,
			f:      failure{},
			want:   domain.ClassifiedError{Status: 500, Message: "Server error"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.method, tc.f))
		})
	}
}

func TestTransportFailureFallbackMessage(t *testing.T) {
	t.Parallel()

	got := classify(http.MethodGet, transportFailure("  "))
	assert.Equal(t, domain.ClassifiedError{Status: 500, Message: "Network error"}, got)
}
