package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chatroom-service/internal/models"
)

func TestHubAddAndRemove(t *testing.T) {
	hub := NewHub()

	hub.Add(nil, ConnInfo{ConnID: "c1"})
	if len(hub.conns) != 1 {
		t.Fatalf("expected connection to be tracked")
	}

	hub.Remove(nil)
	if len(hub.conns) != 0 {
		t.Fatalf("expected connection to be removed")
	}
}

func TestHubSetAuthenticated(t *testing.T) {
	hub := NewHub()
	hub.Add(nil, ConnInfo{ConnID: "c1"})

	hub.SetAuthenticated(nil, "alice")

	info, ok := hub.Info(nil)
	if !ok {
		t.Fatalf("expected connection info")
	}
	if !info.Authenticated || info.DisplayName != "alice" {
		t.Fatalf("expected authenticated member alice, got %+v", info)
	}
}

func TestHubInfoUnknownConn(t *testing.T) {
	hub := NewHub()

	if _, ok := hub.Info(nil); ok {
		t.Fatalf("expected no info for untracked connection")
	}
}

// Broadcasts run on every sender's read-loop goroutine, so several members
// sending at once write to the same third connection concurrently. Gorilla
// panics on unserialized concurrent writes; this must survive.
func TestHubConcurrentBroadcasts(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(conn, ConnInfo{ConnID: "member", Authenticated: true, ConnectedAt: time.Now()})
		registered <- conn
	}))
	defer srv.Close()

	dialURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(dialURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer clientConn.Close()

	serverConn := <-registered
	defer serverConn.Close()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := clientConn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Broadcast(models.RoomEvent{
					Type: models.EventCreated,
					Data: models.DeletedPayload{MessageID: "m"},
				})
			}
		}()
	}
	wg.Wait()

	if _, ok := hub.Info(serverConn); !ok {
		t.Fatalf("expected connection to survive concurrent broadcasts")
	}

	serverConn.Close()
	<-readerDone
}
