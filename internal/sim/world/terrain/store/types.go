package store

type ChunkKey struct {
	P int
	Q int
}

type Vec3i struct {
	X int
	Y int
	Z int
}

// Entry is one non-zero cell of a Map in world coordinates.
type Entry struct {
	X, Y, Z int
	W       int
}
