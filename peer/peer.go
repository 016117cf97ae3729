package peer

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	defaultPongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	defaultPingPeriod = (defaultPongWait * 8) / 10

	// Maximum message size allowed from peer. Requests may carry embeds.
	defaultMaxMessageSize = 8192

	defaultMessageQueueLen = 32
)

// MessageListeners holds the callbacks a session layer hangs on a connection.
type MessageListeners struct {
	// OnMessage is invoked for every frame read from the connection.
	OnMessage func(msg []byte) error

	OnDisconnect func() error
}

// Config tunes one connection.
type Config struct {

	// Time allowed to write a message to the peer.
	WriteWait time.Duration
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than pongWait.
	PingPeriod time.Duration
	// Maximum message size allowed from peer.
	MaxMessageSize int

	// MessageQueueLen message len
	MessageQueueLen int

	Logger zerolog.Logger

	Listeners *MessageListeners
}

type outMessage struct {
	message []byte
	done    chan<- struct{}
}

// Peer wraps the websocket transport: read/write pumps, deadlines and
// keepalive. It carries no protocol knowledge.
type Peer struct {
	id     string
	config *Config
	conn   *websocket.Conn
	send   chan outMessage
	quit   chan struct{}

	timeConnected time.Time

	connected int32
}

// NewPeer builds a Peer; zero config fields fall back to defaults.
func NewPeer(id string, config *Config) *Peer {
	if config.WriteWait == 0 {
		config.WriteWait = defaultWriteWait
	}
	if config.PongWait == 0 {
		config.PongWait = defaultPongWait
	}
	if config.PingPeriod == 0 {
		config.PingPeriod = defaultPingPeriod
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = defaultMaxMessageSize
	}
	if config.MessageQueueLen == 0 {
		config.MessageQueueLen = defaultMessageQueueLen
	}

	if config.PingPeriod >= config.PongWait {
		config.PingPeriod = (config.PongWait * 9) / 10
	}
	return &Peer{
		id:     id,
		config: config,
		send:   make(chan outMessage, config.MessageQueueLen),
		quit:   make(chan struct{}),
	}
}

// ID connection id
func (p *Peer) ID() string {
	return p.id
}

// SetConnection bind connection , start
func (p *Peer) SetConnection(conn *websocket.Conn) {
	// Already connected?
	if !atomic.CompareAndSwapInt32(&p.connected, 0, 1) {
		return
	}

	p.conn = conn
	p.timeConnected = time.Now()

	go p.handleRead()
	go p.handleWrite()
}

func (p *Peer) handleRead() {
	defer func() {
		p.config.Listeners.OnDisconnect()
		p.disconnect()
	}()
	p.conn.SetReadLimit(int64(p.config.MaxMessageSize))
	p.conn.SetReadDeadline(time.Now().Add(p.config.PongWait))
	p.conn.SetPongHandler(func(string) error { p.conn.SetReadDeadline(time.Now().Add(p.config.PongWait)); return nil })
	for {
		messageType, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.config.Logger.Warn().Err(err).Str("peer", p.id).Msg("read failed")
			}
			break
		}
		if messageType == websocket.CloseMessage {
			break
		}

		// Frames are handled in arrival order. A handler error is logged,
		// not fatal to the connection.
		if err := p.config.Listeners.OnMessage(message); err != nil {
			p.config.Logger.Warn().Err(err).Str("peer", p.id).Msg("message handler failed")
		}
	}
}

func (p *Peer) handleWrite() {
	ticker := time.NewTicker(p.config.PingPeriod)
	defer func() {
		ticker.Stop()
		p.disconnect()
	}()
	for {
		select {
		case out := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteWait))
			err := p.conn.WriteMessage(websocket.TextMessage, out.message)
			if out.done != nil {
				out.done <- struct{}{}
			}
			if err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.quit:
			p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteWait))
			p.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// PushMessage queues a frame for delivery. doneChan, if not nil, is
// signalled once the frame is written (or dropped on a dead connection).
func (p *Peer) PushMessage(message []byte, doneChan chan<- struct{}) {
	if atomic.LoadInt32(&p.connected) == 0 {
		if doneChan != nil {
			go func() {
				doneChan <- struct{}{}
			}()
		}
		return
	}
	// send is never closed; a teardown racing this enqueue settles in the
	// select instead of panicking on a closed channel.
	select {
	case p.send <- outMessage{message: message, done: doneChan}:
	case <-p.quit:
		if doneChan != nil {
			go func() {
				doneChan <- struct{}{}
			}()
		}
	}
}

// Close close conn
func (p *Peer) Close() {
	p.disconnect()
}

func (p *Peer) disconnect() {
	if !atomic.CompareAndSwapInt32(&p.connected, 1, 0) {
		return
	}
	close(p.quit)
	p.conn.Close()
}
