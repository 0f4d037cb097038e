package application

import (
	"testing"

	"github.com/bnema/adminkit/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus(fixedClock{now: testNow})

	var order []string
	bus.Subscribe(func(domain.Event) { order = append(order, "first") })
	bus.Subscribe(func(domain.Event) { order = append(order, "second") })

	bus.Publish(domain.Event{Kind: domain.EventAuthenticated})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventBusStampsIDAndTime(t *testing.T) {
	bus := NewEventBus(fixedClock{now: testNow})

	var got domain.Event
	bus.Subscribe(func(event domain.Event) { got = event })
	bus.Publish(domain.Event{Kind: domain.EventLoggedOut, Reason: domain.LogoutReasonUser})

	assert.Equal(t, testNow, got.At)
	id, err := ulid.Parse(got.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(testNow), id.Time())
}

func TestEventBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewEventBus(fixedClock{now: testNow})

	calls := 0
	unsubscribe := bus.Subscribe(func(domain.Event) { calls++ })
	other := 0
	bus.Subscribe(func(domain.Event) { other++ })

	bus.Publish(domain.Event{Kind: domain.EventCountdownTick})
	unsubscribe()
	unsubscribe()
	bus.Publish(domain.Event{Kind: domain.EventCountdownTick})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestEventBusAllowsPublishFromSubscriber(t *testing.T) {
	bus := NewEventBus(fixedClock{now: testNow})

	var kinds []domain.EventKind
	bus.Subscribe(func(event domain.Event) {
		kinds = append(kinds, event.Kind)
		if event.Kind == domain.EventCredentialExpired {
			bus.Publish(domain.Event{Kind: domain.EventLoggedOut})
		}
	})

	bus.Publish(domain.Event{Kind: domain.EventCredentialExpired})

	assert.Equal(t, []domain.EventKind{domain.EventCredentialExpired, domain.EventLoggedOut}, kinds)
}
