package reactor

// connTable is a descriptor-indexed, never-shrinking slice of
// Connection slots: slot i belongs to fd i whenever slot i is live. This
// trades memory proportional to the largest fd ever seen for O(1)
// fd-to-connection lookup on every epoll event, avoiding a map lookup in
// the hot path.
//
// Each live fd owns exactly one slot at a time (single-owner-per-fd
// invariant): a slot is only ever marked live by accept() and only ever
// marked dead by the worker's single close primitive, which also removes
// the fd from epoll first — so a stale event for an already-closed fd can
// never be misdelivered to a slot since-reused by a different fd, because
// the slot is reset (not merely flagged free) whenever it is reused.
type connTable struct {
	slots []*Connection
	live  []bool
}

func newConnTable(initialCap int) *connTable {
	return &connTable{
		slots: make([]*Connection, initialCap),
		live:  make([]bool, initialCap),
	}
}

// grow doubles the table's capacity until fd fits.
func (t *connTable) grow(fd int) {
	newCap := len(t.slots)
	if newCap == 0 {
		newCap = 16
	}
	for newCap <= fd {
		newCap *= 2
	}

	slots := make([]*Connection, newCap)
	live := make([]bool, newCap)
	copy(slots, t.slots)
	copy(live, t.live)
	t.slots = slots
	t.live = live
}

// acquire marks fd live, allocating a new Connection if this slot has
// never been used before, and returns it reset and ready to use.
func (t *connTable) acquire(fd int, nowMs int64) *Connection {
	if fd >= len(t.slots) {
		t.grow(fd)
	}
	if t.slots[fd] == nil {
		t.slots[fd] = &Connection{}
	}
	conn := t.slots[fd]
	conn.reset(fd, nowMs)
	t.live[fd] = true
	return conn
}

// get returns the live connection for fd, or nil if fd has no live
// connection (already closed, or never accepted).
func (t *connTable) get(fd int) *Connection {
	if fd < 0 || fd >= len(t.slots) || !t.live[fd] {
		return nil
	}
	return t.slots[fd]
}

// release marks fd's slot dead. The underlying *Connection is kept
// (never deallocated) so the next acquire() for the same fd reuses the
// allocation.
func (t *connTable) release(fd int) {
	if fd < 0 || fd >= len(t.live) {
		return
	}
	t.live[fd] = false
}

// forEachLive calls fn for every currently live connection. Used by the
// idle reaper and by shutdown.
func (t *connTable) forEachLive(fn func(*Connection)) {
	for fd, alive := range t.live {
		if alive {
			fn(t.slots[fd])
		}
	}
}
