package ws

import (
	"context"
	"encoding/json"

	"learnmap/internal/events"
)

// Forward subscribes the hub to bus. Each event goes to its owner's
// connections only. The returned func unsubscribes.
func Forward(bus *events.Bus, hub *Hub) func() {
	return bus.Subscribe(func(ctx context.Context, e events.Event) {
		b, err := json.Marshal(e)
		if err != nil {
			hub.log.WithError(err).WithField("type", e.Kind).Warn("encode event failed")
			return
		}
		hub.Broadcast(e.UserID, b)
	})
}
