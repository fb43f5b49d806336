package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelcraft.ai/voxelclient/internal/protocol"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

// asJSON round-trips v through encoding/json so the validator sees plain values.
func asJSON(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateMessages(t *testing.T) {
	chunk := &[2]int{0, -1}
	cases := []struct {
		schema string
		msg    any
	}{
		{"hello.schema.json", protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Name: "alice", SessionID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427"}},
		{"welcome.schema.json", protocol.WelcomeMsg{
			Type: protocol.TypeWelcome, ProtocolVersion: protocol.Version, PlayerID: 7, Name: "alice",
			Pos: [3]float32{0, 40, 0}, WorldParams: protocol.WorldParams{Seed: 1337, ChunkSize: 32, Height: 256},
		}},
		{"block.schema.json", protocol.BlockMsg{Type: protocol.TypeBlock, ProtocolVersion: protocol.Version, Pos: [3]int{1, 2, -3}, W: 3}},
		{"block.schema.json", protocol.BlockMsg{Type: protocol.TypeBlock, ProtocolVersion: protocol.Version, Chunk: chunk, Pos: [3]int{1, 2, -3}, W: -3}},
		{"light.schema.json", protocol.LightMsg{Type: protocol.TypeLight, ProtocolVersion: protocol.Version, Pos: [3]int{1, 2, 3}, W: 15}},
		{"sign.schema.json", protocol.SignMsg{Type: protocol.TypeSign, ProtocolVersion: protocol.Version, Chunk: chunk, Pos: [3]int{1, 2, 3}, Face: 5, Text: "hello"}},
		{"position.schema.json", protocol.PositionMsg{Type: protocol.TypePosition, ProtocolVersion: protocol.Version, Pos: [3]float32{1.5, 20, -3}, RX: 0.5}},
		{"position.schema.json", protocol.PositionMsg{Type: protocol.TypePosition, ProtocolVersion: protocol.Version, PlayerID: 4, Name: "bob"}},
		{"leave.schema.json", protocol.LeaveMsg{Type: protocol.TypeLeave, ProtocolVersion: protocol.Version, PlayerID: 4}},
		{"chunk.schema.json", protocol.ChunkMsg{Type: protocol.TypeChunk, ProtocolVersion: protocol.Version, Chunk: [2]int{3, -2}, Key: 12}},
		{"key.schema.json", protocol.KeyMsg{Type: protocol.TypeKey, ProtocolVersion: protocol.Version, Chunk: [2]int{3, -2}, Key: 13}},
		{"redraw.schema.json", protocol.RedrawMsg{Type: protocol.TypeRedraw, ProtocolVersion: protocol.Version, Chunk: [2]int{3, -2}}},
		{"error.schema.json", protocol.ErrorMsg{Type: protocol.TypeError, ProtocolVersion: protocol.Version, Code: protocol.ErrRateLimit}},
	}
	for _, c := range cases {
		if err := compileSchema(t, c.schema).Validate(asJSON(t, c.msg)); err != nil {
			t.Fatalf("%s: %v", c.schema, err)
		}
	}
}

func TestSchemas_RejectBadMessages(t *testing.T) {
	cases := []struct {
		schema string
		raw    string
	}{
		{"block.schema.json", `{"type":"BLOCK","protocol_version":"1.0","pos":[1,2],"w":3}`},
		{"block.schema.json", `{"type":"LIGHT","protocol_version":"1.0","pos":[1,2,3],"w":3}`},
		{"sign.schema.json", `{"type":"SIGN","protocol_version":"1.0","pos":[1,2,3],"face":8,"text":"x"}`},
		{"hello.schema.json", `{"type":"HELLO","protocol_version":"0.9","name":"a","session_id":"s"}`},
		{"chunk.schema.json", `{"type":"CHUNK","protocol_version":"1.0","chunk":[0,0],"key":1,"extra":true}`},
	}
	for _, c := range cases {
		var v any
		if err := json.Unmarshal([]byte(c.raw), &v); err != nil {
			t.Fatalf("bad sample %s: %v", c.raw, err)
		}
		if err := compileSchema(t, c.schema).Validate(v); err == nil {
			t.Fatalf("%s accepted %s", c.schema, c.raw)
		}
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := protocol.DecodeBase([]byte(`{"type":"KEY","protocol_version":"1.0","chunk":[1,2],"key":3}`))
	if err != nil || m.Type != protocol.TypeKey || m.ProtocolVersion != protocol.Version {
		t.Fatalf("decode: %+v %v", m, err)
	}
	if _, err := protocol.DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
}
