package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version   int    `json:"version"`
	WorldID   string `json:"world_id"`
	Frame     uint64 `json:"frame"`
	Chunks    int    `json:"chunks"`
	CreatedAt string `json:"created_at"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed         int64  `json:"seed"`
	ChunkSize    int    `json:"chunk_size"`
	Height       int    `json:"height"`
	BlocksDigest string `json:"blocks_digest"`

	Player PlayerV1  `json:"player"`
	Chunks []ChunkV1 `json:"chunks"`
}

type PlayerV1 struct {
	X  float32 `json:"x"`
	Y  float32 `json:"y"`
	Z  float32 `json:"z"`
	RX float32 `json:"rx"`
	RY float32 `json:"ry"`
}

// ChunkV1 holds the sparse maps of one chunk. Block entries include the negative
// border shadows so a restored chunk meshes without its neighbors.
type ChunkV1 struct {
	P      int       `json:"p"`
	Q      int       `json:"q"`
	Blocks []EntryV1 `json:"blocks"`
	Lights []EntryV1 `json:"lights,omitempty"`
	Damage []EntryV1 `json:"damage,omitempty"`
	Signs  []SignV1  `json:"signs,omitempty"`
}

type EntryV1 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
	W int `json:"w"`
}

type SignV1 struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	Face int    `json:"face"`
	Text string `json:"text"`
}

// WriteSnapshot stores snap as a zstd stream: one JSON header line followed by the gob
// encoded snapshot. The file is written to a temp path and renamed into place.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	snap.Header.Chunks = len(snap.Chunks)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, snap); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(w io.Writer, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the leading JSON line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}
