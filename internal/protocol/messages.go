package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Name            string `json:"name"`
	SessionID       string `json:"session_id"`
	Token           string `json:"token,omitempty"`
}

// WELCOME (server -> client): the local player's identity and spawn.
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        int         `json:"player_id"`
	Name            string      `json:"name"`
	Pos             [3]float32  `json:"pos"`
	RX              float32     `json:"rx"`
	RY              float32     `json:"ry"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Seed      int64  `json:"seed"`
	ChunkSize int    `json:"chunk_size"`
	Height    int    `json:"height"`
	Digest    string `json:"blocks_digest,omitempty"`
}

// BLOCK (both ways). Chunk names the owning chunk on server updates; a border shadow
// arrives with the neighbor's chunk. Clients leave it out.
type BlockMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Chunk           *[2]int `json:"chunk,omitempty"`
	Pos             [3]int  `json:"pos"`
	W               int     `json:"w"`
}

// LIGHT (both ways)
type LightMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Chunk           *[2]int `json:"chunk,omitempty"`
	Pos             [3]int  `json:"pos"`
	W               int     `json:"w"`
}

// SIGN (both ways). Empty text removes the sign from the face.
type SignMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Chunk           *[2]int `json:"chunk,omitempty"`
	Pos             [3]int  `json:"pos"`
	Face            int     `json:"face"`
	Text            string  `json:"text"`
}

// POSITION (both ways). PlayerID and Name are set on server updates only.
type PositionMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerID        int        `json:"player_id,omitempty"`
	Name            string     `json:"name,omitempty"`
	Pos             [3]float32 `json:"pos"`
	RX              float32    `json:"rx"`
	RY              float32    `json:"ry"`
}

// LEAVE (server -> client)
type LeaveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        int    `json:"player_id"`
}

// CHUNK (client -> server) asks for every edit in a chunk newer than Key.
type ChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Chunk           [2]int `json:"chunk"`
	Key             int    `json:"key"`
}

// KEY (server -> client) is the chunk's version after a CHUNK reply.
type KeyMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Chunk           [2]int `json:"chunk"`
	Key             int    `json:"key"`
}

// REDRAW (server -> client) follows a batch of chunk edits.
type RedrawMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Chunk           [2]int `json:"chunk"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
