package registry

import (
	stderrors "errors"
	"sync"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
)

var ErrClosed = stderrors.New("instance registry closed")

// ErrNotFound matches (via errors.Is) every resolve failure for a stale or
// unknown dispatch context.
var ErrNotFound = errors.NotFound(errors.PhaseResolve, "instance", nil)

// Table maps opaque dispatch handles to the host instances they denote.
// Handles carry a generation tag; a revoked handle keeps failing resolution
// even after its slot is reused, so untrusted callers can never reach a
// recycled instance.
type Table struct {
	entries   []entry
	freeList  []uint32
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value any
	gen   uint32
	valid bool
}

// NewTable creates an empty instance registry.
func NewTable() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Expose registers a host instance and returns its dispatch handle.
func (t *Table) Expose(value any) (abi.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	var idx uint32
	if len(t.freeList) > 0 {
		idx = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[idx-1].value = value
		t.entries[idx-1].valid = true
	} else {
		t.entries = append(t.entries, entry{value: value, gen: 1, valid: true})
		idx = uint32(len(t.entries))
	}

	h := abi.PackHandle(idx, t.entries[idx-1].gen)
	t.notify(Event{Type: EventExposed, Handle: h, Value: value})
	return h, nil
}

// Resolve returns the instance a dispatch handle denotes. Unknown, revoked,
// or recycled handles fail with ErrNotFound, never with arbitrary data.
func (t *Table) Resolve(h abi.Handle) (any, error) {
	idx := h.Index()
	if idx == 0 {
		return nil, errors.NotFound(errors.PhaseResolve, "instance", h)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(idx) > len(t.entries) {
		return nil, errors.NotFound(errors.PhaseResolve, "instance", h)
	}
	e := t.entries[idx-1]
	if !e.valid || e.gen != h.Generation() {
		return nil, errors.NotFound(errors.PhaseResolve, "instance", h)
	}
	return e.value, nil
}

// Revoke invalidates a handle and returns (value, true) if it was live.
// The slot's generation is bumped so the old handle stays dead across reuse.
func (t *Table) Revoke(h abi.Handle) (any, bool) {
	idx := h.Index()
	if idx == 0 {
		return nil, false
	}

	t.mu.Lock()
	if t.closed || int(idx) > len(t.entries) {
		t.mu.Unlock()
		return nil, false
	}
	e := &t.entries[idx-1]
	if !e.valid || e.gen != h.Generation() {
		t.mu.Unlock()
		return nil, false
	}

	value := e.value
	e.valid = false
	e.value = nil
	e.gen++
	t.freeList = append(t.freeList, idx)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventRevoked, Handle: h, Value: value})
	return value, true
}

// Len returns the number of live instances.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over all live instances.
func (t *Table) Each(fn func(abi.Handle, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(abi.PackHandle(uint32(i+1), e.gen), e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close revokes all instances and stops accepting registrations.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	var dropped []any
	for i := range t.entries {
		if t.entries[i].valid {
			if _, ok := t.entries[i].value.(Dropper); ok {
				dropped = append(dropped, t.entries[i].value)
			}
			t.entries[i].valid = false
			t.entries[i].value = nil
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, v := range dropped {
		v.(Dropper).Drop()
	}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnInstanceEvent(e)
	}
}
