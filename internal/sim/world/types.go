package world

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelcraft.ai/voxelclient/internal/sim/world/feature/movement"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mesh"
	"voxelcraft.ai/voxelclient/internal/sim/world/terrain/store"
)

type ChunkKey struct {
	P int
	Q int
}

// Chunk is one CHUNK_SIZE x CHUNK_SIZE column of the world. Its maps also cover a one
// block border holding negative shadow copies of the neighbors' edge blocks.
type Chunk struct {
	P, Q int

	Blocks *store.Map
	Lights *store.Map
	Damage *store.Map
	Signs  store.SignList

	Faces     int
	SignFaces int
	Dirty     bool
	MinY      int
	MaxY      int

	// Mesh is the last installed build, nil until the first one lands.
	Mesh     *mesh.Result
	SignMesh *mesh.SignMesh
}

func (c *Chunk) Key() ChunkKey { return ChunkKey{P: c.P, Q: c.Q} }

// Controls is one frame of local input. Move.Now is filled in by the frame loop.
type Controls struct {
	Move  movement.Input
	Break bool
	Place bool
	// Item is the block id placed by Place.
	Item int
}

type Player struct {
	ID    int
	Name  string
	Actor movement.Actor
}

// Store is the persistence collaborator. Loads fill the given map and leave it
// untouched for unknown chunks. Implementations must be safe for use from worker
// goroutines.
type Store interface {
	LoadBlocks(m *store.Map, p, q int)
	LoadLights(m *store.Map, p, q int)
	LoadDamage(m *store.Map, p, q int)
	TrimDamage(p, q int)
	LoadSigns(list *store.SignList, p, q int)

	InsertBlock(p, q, x, y, z, w int)
	InsertLight(p, q, x, y, z, w int)
	InsertDamage(p, q, x, y, z, d int)
	InsertSign(p, q, x, y, z, face int, text string)
	DeleteSign(x, y, z, face int)
	DeleteSigns(x, y, z int)

	GetKey(p, q int) int
	SetKey(p, q, key int)

	SaveState(x, y, z, rx, ry float32)
	LoadState() (x, y, z, rx, ry float32, ok bool)

	Commit()
}

// Generator produces the natural blocks of a chunk, border shadows included.
type Generator interface {
	Generate(p, q int, sink func(x, y, z, w int))
}

type Network interface {
	SendBlock(x, y, z, w int)
	SendLight(x, y, z, w int)
	SendSign(x, y, z, face int, text string)
	SendPosition(x, y, z, rx, ry float32)
	RequestChunk(p, q, key int)
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type AuditEntry struct {
	Time   string `json:"time"`
	Actor  int    `json:"actor"`
	Action string `json:"action"` // e.g. "SET_BLOCK"
	Pos    [3]int `json:"pos"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	Reason string `json:"reason,omitempty"`
}

type UpdateKind int

const (
	UpdateBlock UpdateKind = iota + 1
	UpdateLight
	UpdateSign
	UpdateKey
	UpdateRedraw
	UpdatePlayer
	UpdateLeave
	UpdateYou
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateBlock:
		return "BLOCK"
	case UpdateLight:
		return "LIGHT"
	case UpdateSign:
		return "SIGN"
	case UpdateKey:
		return "KEY"
	case UpdateRedraw:
		return "REDRAW"
	case UpdatePlayer:
		return "PLAYER"
	case UpdateLeave:
		return "LEAVE"
	case UpdateYou:
		return "YOU"
	default:
		return "UNKNOWN"
	}
}

// RemoteUpdate is one inbound change from the server. Fields not used by Kind are zero.
type RemoteUpdate struct {
	Kind UpdateKind

	P, Q    int
	X, Y, Z int
	W       int
	Face    int
	Text    string
	Key     int

	PlayerID int
	Name     string
	Pos      mgl32.Vec3
	RX, RY   float32
}

// NopStore persists nothing and loads nothing.
type NopStore struct{}

func (NopStore) LoadBlocks(*store.Map, int, int)                       {}
func (NopStore) LoadLights(*store.Map, int, int)                       {}
func (NopStore) LoadDamage(*store.Map, int, int)                       {}
func (NopStore) TrimDamage(int, int)                                   {}
func (NopStore) LoadSigns(*store.SignList, int, int)                   {}
func (NopStore) InsertBlock(int, int, int, int, int, int)              {}
func (NopStore) InsertLight(int, int, int, int, int, int)              {}
func (NopStore) InsertDamage(int, int, int, int, int, int)             {}
func (NopStore) InsertSign(int, int, int, int, int, int, string)       {}
func (NopStore) DeleteSign(int, int, int, int)                         {}
func (NopStore) DeleteSigns(int, int, int)                             {}
func (NopStore) GetKey(int, int) int                                   { return 0 }
func (NopStore) SetKey(int, int, int)                                  {}
func (NopStore) SaveState(float32, float32, float32, float32, float32) {}
func (NopStore) LoadState() (x, y, z, rx, ry float32, ok bool)         { return 0, 0, 0, 0, 0, false }
func (NopStore) Commit()                                               {}

// NopNetwork drops every outbound message; used when playing offline.
type NopNetwork struct{}

func (NopNetwork) SendBlock(int, int, int, int)                             {}
func (NopNetwork) SendLight(int, int, int, int)                             {}
func (NopNetwork) SendSign(int, int, int, int, string)                      {}
func (NopNetwork) SendPosition(float32, float32, float32, float32, float32) {}
func (NopNetwork) RequestChunk(int, int, int)                               {}
