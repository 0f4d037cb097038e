package ports

import "github.com/bnema/adminkit/internal/domain"

// EventPublisher fans session-wide events out to any number of subscribers.
type EventPublisher interface {
	Publish(event domain.Event)
}
