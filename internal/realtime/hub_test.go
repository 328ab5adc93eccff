package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	upgrader := Upgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("user"))
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitOnline(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.OnlineCount(context.Background()) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("在线连接数未达到 %d", want)
}

func TestHub_PublishToUser(t *testing.T) {
	hub, srv := startHub(t)

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitOnline(t, hub, 2)

	hub.Publish("alice", "notification", map[string]string{"titre": "Nouvelle note"})

	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := alice.ReadMessage()
	if err != nil {
		t.Fatalf("读取消息失败: %v", err)
	}

	var ev struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("解析消息失败: %v", err)
	}
	if ev.Type != "notification" || ev.Payload["titre"] != "Nouvelle note" {
		t.Errorf("消息内容不符: %+v", ev)
	}

	// bob 不应收到
	_ = bob.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Error("其他用户不应收到推送")
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "carol")
	waitOnline(t, hub, 1)

	conn.Close()
	waitOnline(t, hub, 0)
}

func TestUpgrader_CheckOrigin(t *testing.T) {
	u := Upgrader([]string{"http://localhost:3000"})

	ok := httptest.NewRequest(http.MethodGet, "/", nil)
	ok.Header.Set("Origin", "http://localhost:3000")
	if !u.CheckOrigin(ok) {
		t.Error("白名单来源应放行")
	}

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Origin", "http://evil.example")
	if u.CheckOrigin(bad) {
		t.Error("非白名单来源应拒绝")
	}
}
