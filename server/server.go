// server/server.go
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/slotserver/coordinator"
	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/network"
	"github.com/wfunc/slotserver/session"
	"github.com/wfunc/slotserver/timer"
)

type GameServer struct {
	addr         string
	upgrader     websocket.Upgrader
	coordinator  *coordinator.Coordinator
	sessions     *session.Manager
	timers       *timer.Manager
	idleTimeout  time.Duration
	shutdownChan chan struct{}
}

func NewGameServer(addr string, coord *coordinator.Coordinator, sessions *session.Manager, idleTimeout time.Duration) *GameServer {
	s := &GameServer{
		addr:         addr,
		coordinator:  coord,
		sessions:     sessions,
		timers:       timer.NewManager(),
		idleTimeout:  idleTimeout,
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	if idleTimeout > 0 {
		s.timers.Schedule(idleTimeout, idleTimeout, s.sweepIdleSessions)
	}

	return s
}

func (s *GameServer) Start() error {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, r)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
}

// sweepIdleSessions closes connections with no inbound traffic past the
// idle timeout. The close then follows the normal leave sequence.
func (s *GameServer) sweepIdleSessions() {
	cutoff := time.Now().Add(-s.idleTimeout)
	for _, sess := range s.sessions.All() {
		if sess.LastActive().Before(cutoff) {
			logger.Log.Infof("Closing idle session %s", sess.ID)
			sess.Close()
		}
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.ID)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.ID)
		s.coordinator.Dispatch(coordinator.Event{Kind: coordinator.EventClose, Session: sess})
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			frame, err := wsConn.ReadFrame()
			if err != nil {
				if errors.Is(err, network.ErrMalformedFrame) {
					logger.Log.Warnf("Malformed frame from session %s: %v", sess.ID, err)
					continue
				}
				return
			}
			sess.Touch()
			s.handleFrame(sess, frame)
		}
	}
}

func (s *GameServer) handleFrame(sess *session.Session, frame *network.Frame) {
	switch frame.Type {
	case network.FrameJoin:
		payload, err := network.DecodeJoin(frame.Data)
		if err != nil {
			logger.Log.Warnf("Invalid join payload from session %s: %v", sess.ID, err)
			return
		}
		s.coordinator.Dispatch(coordinator.Event{
			Kind:       coordinator.EventJoin,
			Session:    sess,
			PlayerName: payload.PlayerName,
		})

	case network.FrameSpin:
		payload, err := network.DecodeSpin(frame.Data)
		if err != nil {
			// Same silent treatment as an out-of-range bet.
			logger.Log.Debugf("Invalid spin payload from session %s: %v", sess.ID, err)
			return
		}
		s.coordinator.Dispatch(coordinator.Event{
			Kind:      coordinator.EventSpin,
			Session:   sess,
			BetAmount: payload.BetAmount,
		})

	default:
		logger.Log.Debugf("Ignoring frame type %q from session %s", frame.Type, sess.ID)
	}
}
