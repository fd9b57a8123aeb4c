// Package arena implements the parser's node arena: a contiguous byte
// buffer with a single high-water mark, used to accumulate node bodies
// (IRIs, strings, blank labels, numbers) a byte or escape sequence at a
// time while a production is mid-parse. On production failure the arena
// is rewound to the production's entry mark, discarding partial work
// without per-node deallocation.
package arena

import "errors"

// ErrOverflow is returned when a push would exceed the arena's capacity.
// The caller treats this as a fatal BAD_STACK parse error.
var ErrOverflow = errors.New("arena: stack overflow")

// Kind tags the node currently being grown. The arena itself doesn't
// interpret Kind; it's carried so callers can recover what they were
// building after a rewind-free read.
type Kind uint8

// Handle identifies a pushed node. It stays valid until the node (or an
// older one) is rewound via RewindTo; growing the node with the Append
// family of methods keeps it valid — handles are positions, not pointers.
type Handle int

type header struct {
	kind  Kind
	start int
	flags uint32
}

// Arena is a single up-front allocation (per the spec's "Parser arena"
// resource model) sized by cap at construction. Growth beyond cap is an
// OVERFLOW error, never a reallocation.
type Arena struct {
	buf     []byte
	cap     int
	headers []header
}

// New allocates an arena with the given fixed byte capacity.
func New(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, capacity), cap: capacity}
}

// Mark returns the current high-water mark (byte length + node count),
// suitable for passing to RewindTo on production failure.
func (a *Arena) Mark() (bytePos int, nodeCount int) {
	return len(a.buf), len(a.headers)
}

// RewindTo restores the arena to a previously captured Mark, discarding
// any nodes and bytes pushed since.
func (a *Arena) RewindTo(bytePos, nodeCount int) {
	a.buf = a.buf[:bytePos]
	a.headers = a.headers[:nodeCount]
}

// Push starts a new node of the given kind with initial contents, and
// returns a handle to it. The new node must remain the topmost allocation
// while it is grown with Append/AppendByte.
func (a *Arena) Push(kind Kind, initial []byte, flags uint32) (Handle, error) {
	start := len(a.buf)
	if start+len(initial) > a.cap {
		return 0, ErrOverflow
	}
	a.buf = append(a.buf, initial...)
	a.headers = append(a.headers, header{kind: kind, start: start, flags: flags})
	return Handle(len(a.headers) - 1), nil
}

// Append grows the topmost node. It is an error (caller bug, not a parse
// error) to call Append on anything but the topmost node.
func (a *Arena) Append(h Handle, p []byte) error {
	if int(h) != len(a.headers)-1 {
		return errors.New("arena: Append target is not the topmost node")
	}
	if len(a.buf)+len(p) > a.cap {
		return ErrOverflow
	}
	a.buf = append(a.buf, p...)
	return nil
}

// AppendByte grows the topmost node by one byte.
func (a *Arena) AppendByte(h Handle, b byte) error {
	return a.Append(h, []byte{b})
}

// Bytes returns the current byte slice for the node identified by h. The
// slice aliases the arena buffer and is invalidated by any subsequent
// Push/Append that reallocates, or by RewindTo; callers that need the
// bytes to outlive the next mutation must copy them out (e.g. via
// String).
func (a *Arena) Bytes(h Handle) []byte {
	hd := a.headers[h]
	end := len(a.buf)
	if int(h) < len(a.headers)-1 {
		end = a.headers[h+1].start
	}
	return a.buf[hd.start:end]
}

// String copies the node's current bytes out as a Go string, the boundary
// at which arena-owned bytes become caller-owned per the spec's
// allocation discipline (§5): nodes emitted to a sink are borrowed unless
// copied out like this.
func (a *Arena) String(h Handle) string {
	return string(a.Bytes(h))
}

// Flags returns the node's flag bitset.
func (a *Arena) Flags(h Handle) uint32 { return a.headers[h].flags }

// SetFlags overwrites the node's flag bitset.
func (a *Arena) SetFlags(h Handle, flags uint32) { a.headers[h].flags = flags }

// Kind returns the node's kind tag.
func (a *Arena) Kind(h Handle) Kind { return a.headers[h].kind }

// Len reports the arena's current byte usage and capacity, for
// diagnostics/testing.
func (a *Arena) Len() (used, capacity int) { return len(a.buf), a.cap }
