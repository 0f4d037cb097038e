package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	Version            = 1
	DefaultSubprotocol = "adminkit.realtime.v1"

	TypeHello        = "hello"
	TypeHelloAck     = "hello.ack"
	TypeNotification = "notification"
	TypeError        = "error"
)

var AllowedTypes = map[string]struct{}{
	TypeHello:        {},
	TypeHelloAck:     {},
	TypeNotification: {},
	TypeError:        {},
}

type Envelope struct {
	V       int             `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	TS      time.Time       `json:"ts"`
	Payload json.RawMessage `json:"payload"`
}

func (e Envelope) Validate() error {
	if e.V != Version {
		return fmt.Errorf("invalid protocol version: got=%d want=%d", e.V, Version)
	}
	if e.Type == "" {
		return errors.New("missing type")
	}
	if _, ok := AllowedTypes[e.Type]; !ok {
		return fmt.Errorf("unsupported type: %s", e.Type)
	}
	if e.ID == "" {
		return errors.New("missing id")
	}
	if e.TS.IsZero() {
		return errors.New("missing ts")
	}
	if e.Payload == nil {
		return errors.New("missing payload")
	}
	return nil
}

// HelloPayload is the auth payload sent right after the handshake.
type HelloPayload struct {
	Token string `json:"token"`
}

func newEnvelope(typ string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}

	return Envelope{
		V:       Version,
		Type:    typ,
		ID:      ulid.Make().String(),
		TS:      time.Now().UTC(),
		Payload: raw,
	}, nil
}
