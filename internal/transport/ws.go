package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/infra"
	"github.com/NgoTomek/PortfolioPanic/internal/notify"
	"github.com/NgoTomek/PortfolioPanic/internal/service"
)

// Command is one inbound client message.
type Command struct {
	Type    string `json:"type"`
	User    string `json:"user,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
	Action  string `json:"action,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Mission string `json:"mission,omitempty"`
	ID      string `json:"id,omitempty"`
}

// outbound message envelopes
type snapshotMsg struct {
	Type     string      `json:"type"`
	Snapshot interface{} `json:"snapshot"`
}

type eventMsg struct {
	Type  string       `json:"type"`
	Event notify.Event `json:"event"`
}

type resultMsg struct {
	Type    string      `json:"type"`
	Command string      `json:"command"`
	OK      bool        `json:"ok"`
	Error   string      `json:"error,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Server is the websocket boundary: it streams session snapshots and
// notifications to connected clients and routes their commands to the
// game service.
type Server struct {
	game     *service.GameService
	log      *slog.Logger
	metrics  *infra.Metrics
	interval time.Duration
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer creates the websocket server. interval is the snapshot
// push cadence.
func NewServer(game *service.GameService, logger *slog.Logger, metrics *infra.Metrics, interval time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Server{
		game:     game,
		log:      logger,
		metrics:  metrics,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Routes returns the HTTP mux for the server.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/leaderboard", s.HandleLeaderboard)
	mux.HandleFunc("/healthz", s.HandleHealth)
	return mux
}

// Start launches the snapshot pusher and the notification fan-out.
// Both stop when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.pushLoop(ctx)
	go s.eventLoop(ctx)
}

// HandleWS upgrades the connection and starts the per-client read loop.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.IncrementConnections()

	// Send the current state immediately so the client does not wait
	// for the next push tick.
	if snap, ok := s.game.Snapshot(); ok {
		c.writeJSON(snapshotMsg{Type: "snapshot", Snapshot: snap})
	}

	go s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		c.conn.Close()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		s.metrics.DecrementConnections()
	}()

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		s.dispatch(c, cmd)
	}
}

func (s *Server) dispatch(c *client, cmd Command) {
	var (
		err    error
		result interface{}
	)

	switch cmd.Type {
	case "new_game":
		user := cmd.User
		if user == "" {
			user = s.game.LastUser()
		}
		err = s.game.NewGame(context.Background(), user)

	case "trade":
		var amount decimal.Decimal
		amount, err = decimal.NewFromString(cmd.Amount)
		if err == nil {
			result, err = s.game.Trade(cmd.AssetID, cmd.Action, amount)
		}

	case "pause":
		err = s.game.PauseToggle()

	case "next_round":
		err = s.game.NextRound()

	case "end_game":
		err = s.game.EndGame()

	case "mission_progress":
		err = s.game.UpdateMissionProgress(cmd.Mission)

	case "mission_complete":
		err = s.game.CompleteMission(cmd.Mission)

	case "mission_fail":
		err = s.game.FailMission(cmd.Mission)

	case "unlock_achievement":
		err = s.game.UnlockAchievement(cmd.ID)

	default:
		c.writeJSON(resultMsg{Type: "result", Command: cmd.Type, OK: false, Error: "unknown command"})
		return
	}

	msg := resultMsg{Type: "result", Command: cmd.Type, OK: err == nil, Result: result}
	if err != nil {
		msg.Error = err.Error()
	}
	c.writeJSON(msg)

	// Commands change state; reflect it without waiting for the tick.
	if err == nil {
		if snap, ok := s.game.Snapshot(); ok {
			c.writeJSON(snapshotMsg{Type: "snapshot", Snapshot: snap})
		}
	}
}

// pushLoop broadcasts the session snapshot to every client on a fixed
// cadence.
func (s *Server) pushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok := s.game.Snapshot()
			if !ok {
				continue
			}
			s.broadcast(snapshotMsg{Type: "snapshot", Snapshot: snap})
		}
	}
}

// eventLoop fans the notification stream out to every client.
func (s *Server) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.game.Events():
			if !ok {
				return
			}
			s.broadcast(eventMsg{Type: "event", Event: ev})
		}
	}
}

func (s *Server) broadcast(v interface{}) {
	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := c.writeJSON(v); err != nil {
			s.log.Debug("broadcast write failed", slog.String("error", err.Error()))
		}
	}
}

// HandleLeaderboard serves the top scores as JSON. A user query
// parameter narrows the list to that player's history.
func (s *Server) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	var (
		scores interface{}
		err    error
	)
	if user := r.URL.Query().Get("user"); user != "" {
		scores, err = s.game.UserScores(user)
	} else {
		scores, err = s.game.Leaderboard(10)
	}
	if err != nil {
		s.metrics.RecordError()
		http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scores)
}

// healthMsg is the liveness payload with the runtime counters attached.
type healthMsg struct {
	Status  string                `json:"status"`
	Metrics infra.MetricsSnapshot `json:"metrics"`
}

// HandleHealth is a liveness probe that doubles as the status surface.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthMsg{Status: "ok", Metrics: s.metrics.Snapshot()})
}
