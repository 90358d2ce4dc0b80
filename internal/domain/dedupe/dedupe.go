// Package dedupe remembers recently seen idempotency keys so a retried
// match report is not recorded twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper records seen keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a failed request can be retried with it.
	Unrecord(ctx context.Context, key string)

	// Clear forgets every key.
	Clear(ctx context.Context)

	Size() int64
}

// window keeps at most maxSize keys and evicts the oldest first.
// A maxSize of zero or less disables eviction.
type window struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	index   map[string]*list.Element
}

// NewWindow creates an in-memory deduper.
func NewWindow(opts ...Option) Deduper {
	w := &window{
		maxSize: defaultMaxSize,
		order:   list.New(),
		index:   make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *window) SeenAndRecord(_ context.Context, key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[key]; ok {
		return true
	}
	if w.maxSize > 0 && w.order.Len() >= w.maxSize {
		oldest := w.order.Back()
		w.order.Remove(oldest)
		delete(w.index, oldest.Value.(string))
	}
	w.index[key] = w.order.PushFront(key)
	return false
}

func (w *window) Unrecord(_ context.Context, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if el, ok := w.index[key]; ok {
		w.order.Remove(el)
		delete(w.index, key)
	}
}

func (w *window) Clear(_ context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.order.Init()
	clear(w.index)
}

func (w *window) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.order.Len())
}
