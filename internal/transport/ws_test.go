package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/NgoTomek/PortfolioPanic/internal/engine"
	"github.com/NgoTomek/PortfolioPanic/internal/infra"
	"github.com/NgoTomek/PortfolioPanic/internal/service"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Seed = 42
	cfg.RoundDuration = time.Hour
	game := service.NewGameService(cfg, nil, nil, &infra.Metrics{})
	t.Cleanup(game.Close)

	srv := NewServer(game, nil, &infra.Metrics{}, 50*time.Millisecond)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type anyMsg struct {
	Type    string          `json:"type"`
	Command string          `json:"command"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error"`
	Event   json.RawMessage `json:"event"`
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) anyMsg {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg anyMsg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read failed waiting for %q: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, ts := testServer(t)
	srv.metrics.RecordTrade()
	srv.metrics.RecordNews()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	var body healthMsg
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("Expected status ok, got %s", body.Status)
	}
	if body.Metrics.TradesExecuted != 1 || body.Metrics.NewsEmitted != 1 {
		t.Errorf("Expected recorded counters in the payload, got %+v", body.Metrics)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("GET /leaderboard failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}

	// The user filter serves one player's history.
	resp, err = http.Get(ts.URL + "/leaderboard?user=alice")
	if err != nil {
		t.Fatalf("GET /leaderboard?user=alice failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 for user filter, got %d", resp.StatusCode)
	}
}

func TestNewGameOverWebsocket(t *testing.T) {
	_, ts := testServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(Command{Type: "new_game", User: "alice"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	res := readUntil(t, conn, "result")
	if !res.OK {
		t.Fatalf("Expected new_game to succeed, got %s", res.Error)
	}
	// State-changing commands push a fresh snapshot.
	readUntil(t, conn, "snapshot")
}

func TestTradeOverWebsocket(t *testing.T) {
	_, ts := testServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(Command{Type: "new_game", User: "alice"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	readUntil(t, conn, "result")

	if err := conn.WriteJSON(Command{Type: "trade", AssetID: "TECH", Action: "buy", Amount: "1000"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	res := readUntil(t, conn, "result")
	if !res.OK {
		t.Fatalf("Expected trade to succeed, got %s", res.Error)
	}

	if err := conn.WriteJSON(Command{Type: "trade", AssetID: "TECH", Action: "buy", Amount: "999999"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	res = readUntil(t, conn, "result")
	if res.OK {
		t.Error("Expected overdraw to be rejected")
	}
	if res.Error == "" {
		t.Error("Expected an error message")
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	_, ts := testServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(Command{Type: "teleport"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	res := readUntil(t, conn, "result")
	if res.OK {
		t.Error("Expected unknown command to fail")
	}
}
