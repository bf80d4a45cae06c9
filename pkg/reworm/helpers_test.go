package reworm

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"github.com/pedronauck/reworm/pkg/value"
)

// recordingObserver captures observer events for assertions.
type recordingObserver struct {
	mu         sync.Mutex
	created    []string
	replaced   []string
	broadcasts map[string]int
	delivered  map[string]int
	suppressed map[string]int
	failures   []error
	panics     []error
	listeners  int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		broadcasts: make(map[string]int),
		delivered:  make(map[string]int),
		suppressed: make(map[string]int),
	}
}

func (o *recordingObserver) StoreCreated(id string, replaced bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = append(o.created, id)
	if replaced {
		o.replaced = append(o.replaced, id)
	}
}

func (o *recordingObserver) Broadcast(id string, delivered int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.broadcasts[id]++
	o.delivered[id] += delivered
}

func (o *recordingObserver) Suppressed(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suppressed[id]++
}

func (o *recordingObserver) SetFailed(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, err)
}

func (o *recordingObserver) ListenerPanicked(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.panics = append(o.panics, err)
}

func (o *recordingObserver) ListenersChanged(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = n
}

// bufferLogger returns a debug-level text logger writing into buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// collect returns a subscriber that appends every value it receives.
func collect(into *[]value.Value) func(value.Value) {
	return func(v value.Value) {
		*into = append(*into, v)
	}
}
