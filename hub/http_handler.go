package hub

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mc-hub/wire"
)

// optionsWait is how long a fresh connection has to present its
// options frame before being cut off.
const optionsWait = 10 * time.Second

// Run serves the peer websocket endpoint and the platform-event ingress
// until Close is called.
func (h *Hub) Run() error {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if h.config.Server.Origin == "*" || h.config.Server.Origin == "" {
				return true
			}
			return strings.Contains(h.config.Server.Origin, r.Header.Get("Origin"))
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/server", func(w http.ResponseWriter, r *http.Request) {
		h.handleServerWebSocket(upgrader, w, r)
	})
	mux.HandleFunc("/platform/message", func(w http.ResponseWriter, r *http.Request) {
		handleIngress(h, w, r, h.HandlePlatformMessage)
	})
	mux.HandleFunc("/platform/reaction", func(w http.ResponseWriter, r *http.Request) {
		handleIngress(h, w, r, h.HandlePlatformReaction)
	})

	addr := fmt.Sprintf("%s:%d", h.config.Server.ListenIP, h.config.Server.ListenPort)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-h.quit
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	h.log.Info().Str("addr", addr).Msg("listening")
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleServerWebSocket authenticates a peer connection: the first
// frame must be an options message whose token matches the registered
// server identity. Success is silent; any failure closes the socket.
func (h *Hub) handleServerWebSocket(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	opts, err := readOptions(conn)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("options rejected")
		conn.Close()
		return
	}

	server, err := h.store.FindServer(opts.ServerID, opts.Token)
	if err != nil {
		h.log.Error().Err(err).Msg("authentication lookup failed")
		conn.Close()
		return
	}
	if server == nil {
		h.log.Warn().Str("server", opts.ServerID).Str("remote", r.RemoteAddr).Msg("failed authentication")
		conn.Close()
		return
	}

	sp := newServerPeer(h, uuid.New().String(), opts)
	h.registerPeer(sp)
	sp.SetConnection(conn)
}

func readOptions(conn *websocket.Conn) (*wire.MsgOptions, error) {
	conn.SetReadDeadline(time.Now().Add(optionsWait))
	defer conn.SetReadDeadline(time.Time{})

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	msg, err := wire.Decode(raw)
	if err != nil {
		return nil, err
	}
	opts, ok := msg.Body.(*wire.MsgOptions)
	if !ok {
		return nil, fmt.Errorf("expected options, got %s", msg.Event)
	}
	if opts.ServerID == "" || opts.Token == "" {
		return nil, fmt.Errorf("missing credentials")
	}
	return opts, nil
}

// handleIngress accepts one platform gateway event over HTTP, guarded
// by the shared server secret.
func handleIngress[T any](h *Hub, w http.ResponseWriter, r *http.Request, deliver func(*T)) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	secret := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if h.config.Server.Secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.config.Server.Secret)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	var event T
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	deliver(&event)
	fmt.Fprint(w, "ok")
}
