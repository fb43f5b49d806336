package store

// Map is a sparse (x,y,z) -> int table for one chunk. Coordinates are stored relative
// to the map origin in 10 bits per axis, so a map covers 1024 cells along each axis.
//
// Open addressing keeps Clone a flat copy and makes iteration order a pure function of
// the sequence of Set calls.
type Map struct {
	dx, dy, dz int

	mask  uint32
	used  int // occupied slots, including cells set back to zero
	live  int // non-zero cells
	slots []slot
}

type slot struct {
	key uint32 // 0 = free
	w   int32
}

const (
	axisBits = 10
	axisMax  = 1<<axisBits - 1
)

// NewMap allocates a map anchored at (dx, dy, dz). capacity is a hint.
func NewMap(dx, dy, dz, capacity int) *Map {
	n := 16
	for n < capacity*2 {
		n <<= 1
	}
	return &Map{
		dx:    dx,
		dy:    dy,
		dz:    dz,
		mask:  uint32(n - 1),
		slots: make([]slot, n),
	}
}

func (m *Map) Origin() (dx, dy, dz int) {
	return m.dx, m.dy, m.dz
}

func (m *Map) pack(x, y, z int) (uint32, bool) {
	lx, ly, lz := x-m.dx, y-m.dy, z-m.dz
	if lx < 0 || ly < 0 || lz < 0 || lx > axisMax || ly > axisMax || lz > axisMax {
		return 0, false
	}
	return uint32(lx|ly<<axisBits|lz<<(2*axisBits)) + 1, true
}

func (m *Map) unpack(key uint32) (x, y, z int) {
	k := int(key - 1)
	return m.dx + k&axisMax, m.dy + (k>>axisBits)&axisMax, m.dz + (k>>(2*axisBits))&axisMax
}

func hashKey(key uint32) uint32 {
	key ^= key >> 16
	key *= 0x7feb352d
	key ^= key >> 15
	key *= 0x846ca68b
	key ^= key >> 16
	return key
}

// Get returns 0 for unset cells, out-of-range cells and a nil map.
func (m *Map) Get(x, y, z int) int {
	if m == nil {
		return 0
	}
	key, ok := m.pack(x, y, z)
	if !ok {
		return 0
	}
	for i := hashKey(key) & m.mask; ; i = (i + 1) & m.mask {
		s := &m.slots[i]
		if s.key == 0 {
			return 0
		}
		if s.key == key {
			return int(s.w)
		}
	}
}

// Set stores w and reports whether the stored value changed. Setting an unset cell to
// zero is a no-op. Cells outside the map range are ignored.
func (m *Map) Set(x, y, z, w int) bool {
	key, ok := m.pack(x, y, z)
	if !ok {
		return false
	}
	i := hashKey(key) & m.mask
	for ; m.slots[i].key != 0; i = (i + 1) & m.mask {
		s := &m.slots[i]
		if s.key != key {
			continue
		}
		if int(s.w) == w {
			return false
		}
		switch {
		case s.w == 0:
			m.live++
		case w == 0:
			m.live--
		}
		s.w = int32(w)
		return true
	}
	if w == 0 {
		return false
	}
	m.slots[i] = slot{key: key, w: int32(w)}
	m.used++
	m.live++
	if m.used*2 > len(m.slots) {
		m.grow()
	}
	return true
}

func (m *Map) grow() {
	old := m.slots
	m.slots = make([]slot, len(old)*2)
	m.mask = uint32(len(m.slots) - 1)
	m.used = 0
	for _, s := range old {
		if s.key == 0 || s.w == 0 {
			continue
		}
		i := hashKey(s.key) & m.mask
		for m.slots[i].key != 0 {
			i = (i + 1) & m.mask
		}
		m.slots[i] = s
		m.used++
	}
}

// Len counts non-zero cells.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.live
}

// Each visits non-zero cells.
func (m *Map) Each(fn func(x, y, z, w int)) {
	if m == nil {
		return
	}
	for _, s := range m.slots {
		if s.key == 0 || s.w == 0 {
			continue
		}
		x, y, z := m.unpack(s.key)
		fn(x, y, z, int(s.w))
	}
}

// Clone returns a deep copy; nil clones to nil.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := *m
	c.slots = make([]slot, len(m.slots))
	copy(c.slots, m.slots)
	return &c
}

func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, m.Len())
	m.Each(func(x, y, z, w int) {
		out = append(out, Entry{X: x, Y: y, Z: z, W: w})
	})
	return out
}

// MapFromEntries rebuilds a map anchored at (dx, dy, dz).
func MapFromEntries(dx, dy, dz int, entries []Entry) *Map {
	m := NewMap(dx, dy, dz, len(entries))
	for _, e := range entries {
		m.Set(e.X, e.Y, e.Z, e.W)
	}
	return m
}
