package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"kvs-workload/internal/config"
	"kvs-workload/internal/events"
	"kvs-workload/internal/logger"
	"kvs-workload/internal/metrics"
	"kvs-workload/internal/workload"

	"golang.org/x/net/websocket"
)

// DefaultMaxOps は1ストリームあたりの最大操作数
const DefaultMaxOps = 10_000_000

// Server はワークロード配信サーバー
type Server struct {
	addr   string
	maxOps int
	bus    *events.Bus

	mu       sync.RWMutex
	active   int
	watchers map[*websocket.Conn]bool
	streams  atomic.Int64

	server *http.Server
	log    *logger.Scoped
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(addr string) *Server {
	return &Server{
		addr:     addr,
		maxOps:   DefaultMaxOps,
		bus:      events.NewBus(),
		watchers: make(map[*websocket.Conn]bool),
		log:      logger.For("api"),
	}
}

// SetMaxOps は1ストリームあたりの最大操作数を設定する
func (s *Server) SetMaxOps(n int) {
	s.maxOps = n
}

// EventBus はサーバーのイベントバスを返す
func (s *Server) EventBus() *events.Bus {
	return s.bus
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/presets", s.handlePresets)

	mux.Handle("/ws/workload", websocket.Handler(s.handleWorkload))
	mux.Handle("/ws/events", websocket.Handler(s.handleEvents))

	return mux
}

// Start はサーバーを開始する
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	// バックグラウンドで生成イベントを配信
	go s.broadcastLoop(ctx)

	s.log.Info("Workload server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	ActiveStreams int   `json:"active_streams"`
	TotalStreams  int64 `json:"total_streams"`
	Watchers      int   `json:"watchers"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	resp := StatusResponse{
		ActiveStreams: s.active,
		TotalStreams:  s.streams.Load(),
		Watchers:      len(s.watchers),
	}
	s.mu.RUnlock()

	s.writeJSON(w, resp)
}

// PresetInfo はプリセット情報
type PresetInfo struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	NumKeys         int     `json:"num_keys"`
	NumOps          int     `json:"num_ops"`
	PercentageReads float64 `json:"percentage_reads"`
	MaxReadDistance int     `json:"max_read_distance"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := config.ListPresets()
	presets := make([]PresetInfo, 0, len(names))
	for _, name := range names {
		p, _ := config.GetPreset(name)
		p = p.Normalize()
		presets = append(presets, PresetInfo{
			Name:            name,
			Description:     config.PresetDescription(name),
			NumKeys:         p.NumKeys,
			NumOps:          p.NumOps,
			PercentageReads: p.PercentageReads,
			MaxReadDistance: p.MaxReadDistance,
		})
	}

	s.writeJSON(w, presets)
}

// Summary はストリームの最後に送る結果メッセージ
type Summary struct {
	Type     string            `json:"type"`
	Workload string            `json:"workload"`
	Seed     int64             `json:"seed,omitempty"`
	Stats    *metrics.Snapshot `json:"stats,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsSink は1行を1テキストフレームとして送る
type wsSink struct {
	ws *websocket.Conn
}

func (s wsSink) WriteLine(line string) error {
	return websocket.Message.Send(s.ws, line)
}

// handleWorkload はリクエストを1件受け取り、ワークロードを行単位で配信する
func (s *Server) handleWorkload(ws *websocket.Conn) {
	defer func() { _ = ws.Close() }()

	id := s.streams.Add(1)

	var req config.WorkloadConfig
	if err := websocket.JSON.Receive(ws, &req); err != nil {
		s.sendSummary(ws, Summary{Type: "error", Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("stream-%d", id)
	}

	params, err := req.ToParams()
	if err == nil && params.NumOps > s.maxOps {
		err = fmt.Errorf("%w: num_ops %d exceeds server limit %d", config.ErrInvalidConfig, params.NumOps, s.maxOps)
	}
	if err != nil {
		s.sendSummary(ws, Summary{Type: "error", Workload: name, Error: err.Error()})
		return
	}

	log := s.log.For(name)
	gen, err := workload.New(params, workload.WithName(name), workload.WithEventBus(s.bus), workload.WithLogger(log))
	if err != nil {
		s.sendSummary(ws, Summary{Type: "error", Workload: name, Error: err.Error()})
		return
	}

	s.mu.Lock()
	s.active++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	snap, err := gen.Run(ws.Request().Context(), wsSink{ws: ws})
	if err != nil {
		log.Warn("Stream aborted: %v", err)
		s.sendSummary(ws, Summary{Type: "error", Workload: name, Seed: gen.Seed(), Error: err.Error()})
		return
	}

	s.sendSummary(ws, Summary{Type: "summary", Workload: name, Seed: gen.Seed(), Stats: &snap})
}

func (s *Server) sendSummary(ws *websocket.Conn, summary Summary) {
	if err := websocket.JSON.Send(ws, summary); err != nil {
		s.log.Debug("Failed to send summary: %v", err)
	}
}

// handleEvents は生成イベントの購読者を登録する
func (s *Server) handleEvents(ws *websocket.Conn) {
	s.mu.Lock()
	s.watchers[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.watchers))
	for ws := range s.watchers {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(event)
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON: %v", err)
	}
}
