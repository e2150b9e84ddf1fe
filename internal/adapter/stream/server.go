package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
	"snowviz/internal/domain/playback"
	"snowviz/internal/domain/snowman"
)

const (
	DefaultFrameRateHz = 60
	writeTimeout       = 5 * time.Second
	readTimeout        = 120 * time.Second
)

// PlayerSource hands out a fresh player per connection.
type PlayerSource interface {
	Player(ctx context.Context, runID string) (ports.RunRecord, *playback.Player, error)
}

type Server struct {
	source       PlayerSource
	log          *zap.Logger
	frameRateHz  int
	defaultSpeed float64

	upgrader websocket.Upgrader
}

type Option func(*Server)

func WithFrameRate(hz int) Option {
	return func(s *Server) {
		if hz > 0 {
			s.frameRateHz = hz
		}
	}
}

func WithDefaultSpeed(speed float64) Option {
	return func(s *Server) {
		if speed > 0 {
			s.defaultSpeed = speed
		}
	}
}

func NewServer(source PlayerSource, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		source:       source,
		log:          logger,
		frameRateHz:  DefaultFrameRateHz,
		defaultSpeed: playback.DefaultSpeed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the run stream and, when metrics is non-nil, /metrics.
func (s *Server) Routes(metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/runs/{id}", s.WSHandler())
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}

// controlMsg is what a renderer sends.
type controlMsg struct {
	Type  string   `json:"type"`
	Step  *int     `json:"step,omitempty"`
	Speed *float64 `json:"speed,omitempty"`
}

type frameMsg struct {
	Type string `json:"type"`
	playback.State
	Frame           frames.Frame          `json:"frame"`
	GoalStack       []snowman.StackedBall `json:"goal_stack"`
	SnowmanComplete bool                  `json:"snowman_complete"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		runID := r.PathValue("id")
		run, player, err := s.source.Player(r.Context(), runID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ports.ErrNotFound) {
				status = http.StatusNotFound
			}
			http.Error(rw, http.StatusText(status), status)
			return
		}
		if err := player.SetSpeed(s.defaultSpeed); err != nil {
			s.log.Warn("default speed rejected", zap.Float64("speed", s.defaultSpeed), zap.Error(err))
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		log := s.log.With(zap.String("run_id", run.ID))
		log.Info("stream opened", zap.Int("frames", player.State().FrameCount))
		s.serve(conn, player, log)
		log.Info("stream closed")
	}
}

// serve owns the player for the lifetime of conn. Only this goroutine writes.
func (s *Server) serve(conn *websocket.Conn, player *playback.Player, log *zap.Logger) {
	controls := make(chan controlMsg, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, b, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg controlMsg
			if err := json.Unmarshal(b, &msg); err != nil {
				msg = controlMsg{}
			}
			select {
			case controls <- msg:
			case <-time.After(time.Second):
				log.Warn("control dropped", zap.String("type", msg.Type))
			}
		}
	}()

	if err := writeJSON(conn, newFrameMsg(player)); err != nil {
		return
	}

	ticker := time.NewTicker(time.Second / time.Duration(s.frameRateHz))
	defer ticker.Stop()

	for {
		var out any
		select {
		case <-done:
			return
		case msg := <-controls:
			out = apply(player, msg)
		case <-ticker.C:
			if !player.Playing() {
				continue
			}
			changed := player.Tick()
			if !changed && player.Playing() {
				continue
			}
			out = newFrameMsg(player)
		}
		if err := writeJSON(conn, out); err != nil {
			log.Debug("stream write failed", zap.Error(err))
			return
		}
	}
}

func apply(player *playback.Player, msg controlMsg) any {
	switch msg.Type {
	case "play":
		player.Play()
	case "pause":
		player.Pause()
	case "next":
		player.NextStep()
	case "prev":
		player.PrevStep()
	case "seek":
		if msg.Step == nil {
			return errorMsg{Type: "error", Code: "bad_request", Message: "seek requires step"}
		}
		if err := player.Seek(*msg.Step); err != nil {
			return errorMsg{Type: "error", Code: "bad_request", Message: err.Error()}
		}
	case "speed":
		if msg.Speed == nil {
			return errorMsg{Type: "error", Code: "bad_request", Message: "speed requires speed"}
		}
		if err := player.SetSpeed(*msg.Speed); err != nil {
			return errorMsg{Type: "error", Code: "bad_request", Message: err.Error()}
		}
	default:
		return errorMsg{Type: "error", Code: "unknown_control", Message: "unknown control " + msg.Type}
	}
	return newFrameMsg(player)
}

func newFrameMsg(player *playback.Player) frameMsg {
	f := player.Current()
	return frameMsg{
		Type:            "frame",
		State:           player.State(),
		Frame:           f,
		GoalStack:       f.State.GoalStack(),
		SnowmanComplete: f.State.SnowmanComplete(),
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
