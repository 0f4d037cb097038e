package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server

	dials  atomic.Int32
	hellos chan HelloPayload
}

// newTestServer accepts up to maxAccepts websocket connections (0 for no
// limit), records each hello payload and hands the connection to serve.
func newTestServer(t *testing.T, maxAccepts int32, serve func(n int32, conn *websocket.Conn, r *http.Request)) *testServer {
	t.Helper()

	ts := &testServer{hellos: make(chan HelloPayload, 16)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := ts.dials.Add(1)
		if maxAccepts > 0 && n > maxAccepts {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{Subprotocols: []string{DefaultSubprotocol}})
		if err != nil {
			return
		}
		defer conn.CloseNow()

		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var hello Envelope
		if err := json.Unmarshal(data, &hello); err != nil || hello.Validate() != nil || hello.Type != TypeHello {
			_ = conn.Close(websocket.StatusPolicyViolation, "bad hello")
			return
		}
		var payload HelloPayload
		_ = json.Unmarshal(hello.Payload, &payload)
		ts.hellos <- payload

		serve(n, conn, r)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func holdOpen(_ int32, conn *websocket.Conn, r *http.Request) {
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	_ = conn.Write(ctx, websocket.MessageText, data)
}

type inbox struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func (i *inbox) add(env Envelope) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.envelopes = append(i.envelopes, env)
}

func (i *inbox) types() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]string, 0, len(i.envelopes))
	for _, env := range i.envelopes {
		out = append(out, env.Type)
	}
	return out
}

func TestBinderOpenSendsTokenAndDeliversMessages(t *testing.T) {
	ts := newTestServer(t, 0, func(n int32, conn *websocket.Conn, r *http.Request) {
		notification, _ := newEnvelope(TypeNotification, map[string]string{"text": "hi"})
		writeEnvelope(r.Context(), conn, Envelope{V: 2, Type: TypeNotification, ID: "x", TS: time.Now(), Payload: json.RawMessage(`{}`)})
		writeEnvelope(r.Context(), conn, notification)
		holdOpen(n, conn, r)
	})

	received := &inbox{}
	binder := NewBinder(Config{URL: ts.wsURL()}, zerolog.Nop(), received.add)

	require.NoError(t, binder.Open(context.Background(), "tok-1"))
	require.NoError(t, binder.Open(context.Background(), "tok-2"))
	assert.True(t, binder.Connected())

	select {
	case hello := <-ts.hellos:
		assert.Equal(t, "tok-1", hello.Token)
	case <-time.After(time.Second):
		t.Fatal("no hello received")
	}

	require.Eventually(t, func() bool {
		return len(received.types()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{TypeNotification}, received.types())

	require.NoError(t, binder.Close())
	require.NoError(t, binder.Close())
	assert.False(t, binder.Connected())
	assert.Equal(t, int32(1), ts.dials.Load())
}

func TestBinderReconnectsAfterDrop(t *testing.T) {
	ts := newTestServer(t, 0, func(n int32, conn *websocket.Conn, r *http.Request) {
		if n == 1 {
			_ = conn.Close(websocket.StatusGoingAway, "restart")
			return
		}
		holdOpen(n, conn, r)
	})

	binder := NewBinder(Config{URL: ts.wsURL(), MaxReconnectAttempts: 3, ReconnectDelay: 5 * time.Millisecond}, zerolog.Nop(), nil)
	require.NoError(t, binder.Open(context.Background(), "tok"))
	t.Cleanup(func() { _ = binder.Close() })

	require.Eventually(t, func() bool { return ts.dials.Load() == 2 }, time.Second, 5*time.Millisecond)
	for range 2 {
		select {
		case hello := <-ts.hellos:
			assert.Equal(t, "tok", hello.Token)
		case <-time.After(time.Second):
			t.Fatal("missing hello")
		}
	}
	assert.True(t, binder.Connected())
}

func TestBinderDropsHandleWhenReconnectIsExhausted(t *testing.T) {
	ts := newTestServer(t, 1, func(_ int32, conn *websocket.Conn, _ *http.Request) {
		_ = conn.Close(websocket.StatusGoingAway, "bye")
	})

	binder := NewBinder(Config{URL: ts.wsURL(), MaxReconnectAttempts: 2, ReconnectDelay: 5 * time.Millisecond}, zerolog.Nop(), nil)
	require.NoError(t, binder.Open(context.Background(), "tok"))

	require.Eventually(t, func() bool { return !binder.Connected() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), ts.dials.Load())
	require.NoError(t, binder.Close())
}

func TestBinderOpenRequiresEndpoint(t *testing.T) {
	binder := NewBinder(Config{}, zerolog.Nop(), nil)

	require.ErrorIs(t, binder.Open(context.Background(), "tok"), ErrNoEndpoint)
	assert.False(t, binder.Connected())
}

func TestBinderOpenFailsOnUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	binder := NewBinder(Config{URL: "ws" + strings.TrimPrefix(server.URL, "http")}, zerolog.Nop(), nil)
	err := binder.Open(context.Background(), "tok")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial realtime endpoint")
	assert.False(t, binder.Connected())
}

func TestEnvelopeValidate(t *testing.T) {
	env, err := newEnvelope(TypeHello, HelloPayload{Token: "t"})
	require.NoError(t, err)
	require.NoError(t, env.Validate())

	env.Type = "chat"
	assert.EqualError(t, env.Validate(), "unsupported type: chat")
}
