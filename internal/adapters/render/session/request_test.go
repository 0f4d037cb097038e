package session

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestModelShowsMethodAndURL(t *testing.T) {
	m := newRequestModel(RequestProgress{Method: http.MethodGet, URL: "users?offset=0&limit=10"}, nil)

	view := m.View()
	assert.Contains(t, view, "GET")
	assert.Contains(t, view, "users?offset=0&limit=10")
	assert.NotContains(t, view, "retry")
}

func TestRequestModelShowsRetryAttempt(t *testing.T) {
	m := newRequestModel(RequestProgress{Method: http.MethodPut, URL: "users/9", Attempt: 3}, nil)
	assert.Contains(t, m.View(), "(retry 3/5)")

	m = newRequestModel(RequestProgress{Method: http.MethodPut, URL: "users/9", Attempt: 1, MaxRetries: 2}, nil)
	assert.Contains(t, m.View(), "(retry 1/2)")
}

func TestRequestModelClearsViewWhenDone(t *testing.T) {
	m := newRequestModel(RequestProgress{Method: http.MethodGet, URL: "users"}, nil)

	next, cmd := m.Update(requestDoneMsg{result: domain.Result{Status: http.StatusOK}})
	require.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

func TestRunRequestReturnsResult(t *testing.T) {
	want := domain.Result{Status: http.StatusOK, Data: []byte(`{"id":1}`)}

	got, err := RunRequest(context.Background(), &bytes.Buffer{}, RequestProgress{Method: http.MethodGet, URL: "users/1"},
		func(context.Context) (domain.Result, error) {
			return want, nil
		})

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunRequestReturnsRunError(t *testing.T) {
	boom := errors.New("boom")

	_, err := RunRequest(context.Background(), &bytes.Buffer{}, RequestProgress{Method: http.MethodDelete, URL: "users/1"},
		func(context.Context) (domain.Result, error) {
			return domain.Result{}, boom
		})

	require.ErrorIs(t, err, boom)
}

func TestRunRequestStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := RunRequest(ctx, &bytes.Buffer{}, RequestProgress{Method: http.MethodGet, URL: "users"},
		func(ctx context.Context) (domain.Result, error) {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return domain.Result{}, ctx.Err()
		})

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
