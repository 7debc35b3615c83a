// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/slotserver/history"
	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/models"
	"github.com/wfunc/slotserver/registry"
)

// Server manages the RPC listener for the admin read surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes read-only game state over net/rpc. Methods follow
// the net/rpc signature: exported args, pointer reply, error return.
type AdminService struct {
	registry *registry.Registry
	history  *history.History
}

func NewAdminService(reg *registry.Registry, hist *history.History) *AdminService {
	return &AdminService{registry: reg, history: hist}
}

type LeaderboardArgs struct {
	Limit int
}

type LeaderboardReply struct {
	Entries []models.LeaderboardEntry
}

func (a *AdminService) GetLeaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	reply.Entries = history.Leaderboard(a.registry.Snapshot(), args.Limit)
	return nil
}

type PlayerArgs struct {
	PlayerID string
}

type PlayerReply struct {
	Player models.Player
	Found  bool
}

func (a *AdminService) GetPlayer(args *PlayerArgs, reply *PlayerReply) error {
	reply.Player, reply.Found = a.registry.Get(args.PlayerID)
	return nil
}

type RecentSpinsArgs struct {
	Limit int
}

type RecentSpinsReply struct {
	Events []models.SpinEvent
}

func (a *AdminService) GetRecentSpins(args *RecentSpinsArgs, reply *RecentSpinsReply) error {
	reply.Events = a.history.Recent(args.Limit)
	return nil
}
