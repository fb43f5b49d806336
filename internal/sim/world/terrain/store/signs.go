package store

// MaxSignText bounds stored sign text, in bytes.
const MaxSignText = 63

type Sign struct {
	X, Y, Z int
	Face    int
	Text    string
}

// SignList holds the signs anchored in one chunk.
type SignList struct {
	items []Sign
}

// Add replaces any sign on the same block face.
func (l *SignList) Add(s Sign) {
	if len(s.Text) > MaxSignText {
		s.Text = s.Text[:MaxSignText]
	}
	l.Remove(s.X, s.Y, s.Z, s.Face)
	l.items = append(l.items, s)
}

// Remove deletes the sign on one face and reports how many were removed.
func (l *SignList) Remove(x, y, z, face int) int {
	return l.filter(func(s Sign) bool {
		return s.X == x && s.Y == y && s.Z == z && s.Face == face
	})
}

// RemoveAll deletes every sign anchored at the block.
func (l *SignList) RemoveAll(x, y, z int) int {
	return l.filter(func(s Sign) bool {
		return s.X == x && s.Y == y && s.Z == z
	})
}

func (l *SignList) filter(drop func(Sign) bool) int {
	kept := l.items[:0]
	n := 0
	for _, s := range l.items {
		if drop(s) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = Sign{}
	}
	l.items = kept
	return n
}

func (l *SignList) Len() int { return len(l.items) }

// All returns a copy of the signs in insertion order.
func (l *SignList) All() []Sign {
	out := make([]Sign, len(l.items))
	copy(out, l.items)
	return out
}

func (l *SignList) Get(x, y, z, face int) (Sign, bool) {
	for _, s := range l.items {
		if s.X == x && s.Y == y && s.Z == z && s.Face == face {
			return s, true
		}
	}
	return Sign{}, false
}
