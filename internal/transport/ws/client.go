package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"voxelcraft.ai/voxelclient/internal/protocol"
	"voxelcraft.ai/voxelclient/internal/sim/world"
	"voxelcraft.ai/voxelclient/internal/sim/world/logic/mathx"
)

var ErrClosed = errors.New("ws: closed")

type Options struct {
	Name  string
	Token string

	// ChunkSize places server edits that arrive without a chunk. WELCOME overrides it.
	ChunkSize int
	QueueSize int
	// PositionRate caps POSITION messages per second.
	PositionRate float64

	HandshakeTimeout time.Duration
	Logger           *log.Logger
}

func (o *Options) applyDefaults() {
	if o.Name == "" {
		o.Name = "player"
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 32
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 1024
	}
	if o.PositionRate <= 0 {
		o.PositionRate = 10
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "[ws] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// Client is the websocket connection to the world server. It implements
// world.Network; outbound messages go through a bounded queue drained by a writer
// goroutine and are dropped when the queue is full.
type Client struct {
	conn    *websocket.Conn
	opts    Options
	log     *log.Logger
	session string
	welcome protocol.WelcomeMsg

	out     chan []byte
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	drops atomic.Uint64
}

// Dial connects, sends HELLO and waits for WELCOME.
func Dial(ctx context.Context, url string, opts Options) (*Client, error) {
	opts.applyDefaults()
	dialer := websocket.Dialer{
		HandshakeTimeout: opts.HandshakeTimeout,
		ReadBufferSize:   64 * 1024,
		WriteBufferSize:  64 * 1024,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		opts:    opts,
		log:     opts.Logger,
		session: uuid.NewString(),
		out:     make(chan []byte, opts.QueueSize),
		limiter: rate.NewLimiter(rate.Limit(opts.PositionRate), 1),
	}
	if err := c.handshake(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if cs := c.welcome.WorldParams.ChunkSize; cs > 0 {
		c.opts.ChunkSize = cs
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.writeLoop()
	}()
	return c, nil
}

func (c *Client) handshake() error {
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		Name:            c.opts.Name,
		SessionID:       c.session,
		Token:           c.opts.Token,
	}
	if err := writeJSON(c.conn, hello); err != nil {
		return fmt.Errorf("ws: hello: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("ws: welcome: %w", err)
	}
	_ = c.conn.SetReadDeadline(time.Time{})

	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return fmt.Errorf("ws: welcome: %w", err)
	}
	if base.Type == protocol.TypeError {
		var e protocol.ErrorMsg
		_ = json.Unmarshal(msg, &e)
		return fmt.Errorf("ws: server refused: %w", e)
	}
	if base.Type != protocol.TypeWelcome {
		return fmt.Errorf("ws: expected WELCOME, got %q", base.Type)
	}
	if base.ProtocolVersion != protocol.Version {
		return fmt.Errorf("ws: protocol version %q, want %q", base.ProtocolVersion, protocol.Version)
	}
	if err := json.Unmarshal(msg, &c.welcome); err != nil {
		return fmt.Errorf("ws: welcome: %w", err)
	}
	return nil
}

func (c *Client) SessionID() string { return c.session }

func (c *Client) Welcome() protocol.WelcomeMsg { return c.welcome }

// Dropped counts outbound messages lost to a full queue.
func (c *Client) Dropped() uint64 { return c.drops.Load() }

// WelcomeUpdate places the local player where the server spawned it.
func (c *Client) WelcomeUpdate() world.RemoteUpdate {
	w := c.welcome
	return world.RemoteUpdate{
		Kind:     world.UpdateYou,
		PlayerID: w.PlayerID,
		Name:     w.Name,
		Pos:      w.Pos,
		RX:       w.RX,
		RY:       w.RY,
	}
}

// Run reads server messages and hands each decoded update to sink until the
// connection fails, sink fails, or ctx is done.
func (c *Client) Run(ctx context.Context, sink func(context.Context, world.RemoteUpdate) error) error {
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.ctx.Done():
		}
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.ctx.Err() != nil {
				return ErrClosed
			}
			return fmt.Errorf("ws: read: %w", err)
		}
		u, ok, err := Decode(msg, c.opts.ChunkSize)
		if err != nil {
			var se protocol.ErrorMsg
			if errors.As(err, &se) && protocol.Fatal(se.Code) {
				return fmt.Errorf("ws: %w", err)
			}
			c.log.Printf("drop message: %v", err)
			continue
		}
		if !ok {
			continue
		}
		if err := sink(ctx, u); err != nil {
			return err
		}
	}
}

// Decode turns one server message into a world update. It reports false for
// messages that carry no update.
func Decode(msg []byte, chunkSize int) (world.RemoteUpdate, bool, error) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return world.RemoteUpdate{}, false, err
	}
	if base.ProtocolVersion != protocol.Version {
		return world.RemoteUpdate{}, false, fmt.Errorf("%s: protocol version %q", base.Type, base.ProtocolVersion)
	}
	place := func(chunk *[2]int, pos [3]int) (int, int) {
		if chunk != nil {
			return chunk[0], chunk[1]
		}
		return mathx.ChunkedInt(pos[0], chunkSize), mathx.ChunkedInt(pos[2], chunkSize)
	}

	switch base.Type {
	case protocol.TypeBlock:
		var m protocol.BlockMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		p, q := place(m.Chunk, m.Pos)
		return world.RemoteUpdate{Kind: world.UpdateBlock, P: p, Q: q, X: m.Pos[0], Y: m.Pos[1], Z: m.Pos[2], W: m.W}, true, nil
	case protocol.TypeLight:
		var m protocol.LightMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		p, q := place(m.Chunk, m.Pos)
		return world.RemoteUpdate{Kind: world.UpdateLight, P: p, Q: q, X: m.Pos[0], Y: m.Pos[1], Z: m.Pos[2], W: m.W}, true, nil
	case protocol.TypeSign:
		var m protocol.SignMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		p, q := place(m.Chunk, m.Pos)
		return world.RemoteUpdate{Kind: world.UpdateSign, P: p, Q: q, X: m.Pos[0], Y: m.Pos[1], Z: m.Pos[2], Face: m.Face, Text: m.Text}, true, nil
	case protocol.TypePosition:
		var m protocol.PositionMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		return world.RemoteUpdate{Kind: world.UpdatePlayer, PlayerID: m.PlayerID, Name: m.Name, Pos: m.Pos, RX: m.RX, RY: m.RY}, true, nil
	case protocol.TypeLeave:
		var m protocol.LeaveMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		return world.RemoteUpdate{Kind: world.UpdateLeave, PlayerID: m.PlayerID}, true, nil
	case protocol.TypeKey:
		var m protocol.KeyMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		return world.RemoteUpdate{Kind: world.UpdateKey, P: m.Chunk[0], Q: m.Chunk[1], Key: m.Key}, true, nil
	case protocol.TypeRedraw:
		var m protocol.RedrawMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		return world.RemoteUpdate{Kind: world.UpdateRedraw, P: m.Chunk[0], Q: m.Chunk[1]}, true, nil
	case protocol.TypeError:
		var m protocol.ErrorMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return world.RemoteUpdate{}, false, err
		}
		return world.RemoteUpdate{}, false, fmt.Errorf("server error: %w", m)
	default:
		return world.RemoteUpdate{}, false, fmt.Errorf("unknown message type %q", base.Type)
	}
}

func (c *Client) SendBlock(x, y, z, w int) {
	c.enqueue(protocol.BlockMsg{Type: protocol.TypeBlock, ProtocolVersion: protocol.Version, Pos: [3]int{x, y, z}, W: w})
}

func (c *Client) SendLight(x, y, z, w int) {
	c.enqueue(protocol.LightMsg{Type: protocol.TypeLight, ProtocolVersion: protocol.Version, Pos: [3]int{x, y, z}, W: w})
}

func (c *Client) SendSign(x, y, z, face int, text string) {
	c.enqueue(protocol.SignMsg{Type: protocol.TypeSign, ProtocolVersion: protocol.Version, Pos: [3]int{x, y, z}, Face: face, Text: text})
}

// SendPosition is throttled; updates over the rate are skipped.
func (c *Client) SendPosition(x, y, z, rx, ry float32) {
	if !c.limiter.Allow() {
		return
	}
	c.enqueue(protocol.PositionMsg{Type: protocol.TypePosition, ProtocolVersion: protocol.Version, Pos: [3]float32{x, y, z}, RX: rx, RY: ry})
}

func (c *Client) RequestChunk(p, q, key int) {
	c.enqueue(protocol.ChunkMsg{Type: protocol.TypeChunk, ProtocolVersion: protocol.Version, Chunk: [2]int{p, q}, Key: key})
}

var _ world.Network = (*Client)(nil)

func (c *Client) enqueue(v any) {
	if c.ctx.Err() != nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		c.log.Printf("marshal: %v", err)
		return
	}
	select {
	case c.out <- b:
	default:
		c.drops.Add(1)
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case b := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.log.Printf("write: %v", err)
				c.cancel()
				return
			}
		}
	}
}

// Close sends a close frame and stops the writer. Queued messages not yet written
// are lost.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		c.wg.Wait()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
