package hstring

import (
	"sync"

	"github.com/wippyai/com-bridge/errors"
)

// Handle is an opaque platform string handle. Handle 0 is the null handle
// and always denotes the empty string; it is valid forever and freeing it
// is a no-op. The low 32 bits carry a pool index, the high 32 bits a
// generation tag.
type Handle uint64

// DefaultLimit bounds how many live strings a pool holds before Alloc
// reports allocation failure.
const DefaultLimit = 1 << 20

// Pool converts host strings to and from platform string handles.
//
// Ownership rules: a handle produced by Alloc is owned by the receiver,
// who must Free it; a handle passed in is read via Get only and is never
// freed by the reader.
type Pool struct {
	entries  []entry
	freeList []uint32
	mu       sync.RWMutex
	limit    int
	live     int
}

type entry struct {
	value string
	gen   uint32
	valid bool
}

// NewPool creates a pool with the default capacity limit.
func NewPool() *Pool {
	return NewPoolWithLimit(DefaultLimit)
}

// NewPoolWithLimit creates a pool that fails allocation beyond limit live
// handles.
func NewPoolWithLimit(limit int) *Pool {
	return &Pool{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
		limit:    limit,
	}
}

// Alloc converts a host string to a new handle owned by the caller.
// The empty string maps to the null handle. On failure no handle is
// allocated at all.
func (p *Pool) Alloc(s string) (Handle, error) {
	if s == "" {
		return 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.live >= p.limit {
		return 0, errors.AllocationFailed(errors.PhaseMarshal, "string pool limit reached")
	}

	var idx uint32
	if len(p.freeList) > 0 {
		idx = p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		p.entries[idx-1].value = s
		p.entries[idx-1].valid = true
	} else {
		p.entries = append(p.entries, entry{value: s, gen: 1, valid: true})
		idx = uint32(len(p.entries))
	}
	p.live++

	return pack(idx, p.entries[idx-1].gen), nil
}

// Get reads the host string a handle denotes without consuming it.
func (p *Pool) Get(h Handle) (string, error) {
	if h == 0 {
		return "", nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	e, err := p.lookup(h)
	if err != nil {
		return "", err
	}
	return e.value, nil
}

// Len returns the byte length of the string behind a handle.
func (p *Pool) Len(h Handle) (int, error) {
	s, err := p.Get(h)
	if err != nil {
		return 0, err
	}
	return len(s), nil
}

// Dup allocates an independent handle for the same string value. The new
// handle is owned by the caller and freed separately.
func (p *Pool) Dup(h Handle) (Handle, error) {
	s, err := p.Get(h)
	if err != nil {
		return 0, err
	}
	return p.Alloc(s)
}

// Free releases a handle owned by the caller. Freeing the null handle is
// a no-op; freeing a stale or already-freed handle is an error, never
// corruption.
func (p *Pool) Free(h Handle) error {
	if h == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, err := p.lookup(h)
	if err != nil {
		return err
	}
	e.valid = false
	e.value = ""
	e.gen++
	p.freeList = append(p.freeList, h.index())
	p.live--
	return nil
}

// Count returns the number of live handles.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.live
}

// lookup requires p.mu held (read or write).
func (p *Pool) lookup(h Handle) (*entry, error) {
	idx := h.index()
	if idx == 0 || int(idx) > len(p.entries) {
		return nil, errors.NotFound(errors.PhaseMarshal, "string handle", h)
	}
	e := &p.entries[idx-1]
	if !e.valid || e.gen != h.generation() {
		return nil, errors.NotFound(errors.PhaseMarshal, "string handle", h)
	}
	return e, nil
}

func pack(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(h >> 32)
}
