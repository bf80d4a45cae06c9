package reworm

import "time"

// Observer receives store lifecycle and broadcast events.
// Implementations must be cheap and must not call back into the container.
// See package observe for Prometheus and OpenTelemetry implementations.
type Observer interface {
	// StoreCreated is called after Create. replaced is true when the
	// identifier was already registered.
	StoreCreated(id string, replaced bool)

	// Broadcast is called after a changed value was delivered.
	Broadcast(id string, delivered int, elapsed time.Duration)

	// Suppressed is called when a write produced an equal value.
	Suppressed(id string)

	// SetFailed is called when a write returned an error.
	SetFailed(id string, err error)

	// ListenerPanicked is called for every recovered listener panic.
	ListenerPanicked(id string, err error)

	// ListenersChanged reports the emitter's listener count.
	ListenersChanged(n int)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) StoreCreated(string, bool) {}
func (NopObserver) Broadcast(string, int, time.Duration) {}
func (NopObserver) Suppressed(string) {}
func (NopObserver) SetFailed(string, error) {}
func (NopObserver) ListenerPanicked(string, error) {}
func (NopObserver) ListenersChanged(int) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) StoreCreated(id string, replaced bool) {
	for _, obs := range o {
		obs.StoreCreated(id, replaced)
	}
}

func (o Observers) Broadcast(id string, delivered int, elapsed time.Duration) {
	for _, obs := range o {
		obs.Broadcast(id, delivered, elapsed)
	}
}

func (o Observers) Suppressed(id string) {
	for _, obs := range o {
		obs.Suppressed(id)
	}
}

func (o Observers) SetFailed(id string, err error) {
	for _, obs := range o {
		obs.SetFailed(id, err)
	}
}

func (o Observers) ListenerPanicked(id string, err error) {
	for _, obs := range o {
		obs.ListenerPanicked(id, err)
	}
}

func (o Observers) ListenersChanged(n int) {
	for _, obs := range o {
		obs.ListenersChanged(n)
	}
}
