package peer

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func dialTestConn(t *testing.T) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func newConnectedPeer(t *testing.T, id string) *Peer {
	t.Helper()
	p := NewPeer(id, &Config{
		Logger: zerolog.Nop(),
		Listeners: &MessageListeners{
			OnMessage:    func([]byte) error { return nil },
			OnDisconnect: func() error { return nil },
		},
	})
	p.SetConnection(dialTestConn(t))
	return p
}

// A session being superseded can have emits still in flight when the hub
// closes it; tearing down must never panic the sender.
func TestPushMessageCloseRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		p := newConnectedPeer(t, fmt.Sprintf("conn-%d", i))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				p.PushMessage([]byte("x"), nil)
			}
		}()
		go func() {
			defer wg.Done()
			p.Close()
		}()
		wg.Wait()

		p.PushMessage([]byte("after close"), nil)
		p.Close()
	}
}

func TestPushMessageDoneAfterClose(t *testing.T) {
	p := newConnectedPeer(t, "conn-done")
	p.Close()

	done := make(chan struct{}, 1)
	p.PushMessage([]byte("x"), done)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("doneChan not signalled for a closed peer")
	}
}

func TestPushMessageDelivers(t *testing.T) {
	p := newConnectedPeer(t, "conn-send")
	defer p.Close()

	done := make(chan struct{}, 1)
	p.PushMessage([]byte("hello"), done)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame was not written")
	}
}
