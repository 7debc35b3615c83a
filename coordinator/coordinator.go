// coordinator/coordinator.go
package coordinator

import (
	"context"
	"time"

	"github.com/wfunc/slotserver/game"
	"github.com/wfunc/slotserver/history"
	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/models"
	"github.com/wfunc/slotserver/monitor"
	"github.com/wfunc/slotserver/network"
	"github.com/wfunc/slotserver/registry"
	"github.com/wfunc/slotserver/services"
	"github.com/wfunc/slotserver/session"
)

type EventKind int

const (
	EventJoin EventKind = iota
	EventSpin
	EventClose
)

// Event is one inbound occurrence on a connection: a join request, a
// spin request, or the connection going away.
type Event struct {
	Kind       EventKind
	Session    *session.Session
	PlayerName string // join only
	BetAmount  int    // spin only
}

// Coordinator 游戏状态的唯一所有者。所有对注册表、历史和会话集合的
// 修改都在 Run 的单个 goroutine 中串行执行，重现事件循环的原子性。
// Readers elsewhere (RPC, flush job) only ever see settled snapshots.
type Coordinator struct {
	registry *registry.Registry
	history  *history.History
	sessions *session.Manager
	players  *services.PlayerService
	monitor  *monitor.Monitor

	events chan Event

	leaderboardSize int
	joinSnapshot    int
}

func New(reg *registry.Registry, hist *history.History, sessions *session.Manager,
	players *services.PlayerService, mon *monitor.Monitor,
	leaderboardSize, joinSnapshot int) *Coordinator {
	return &Coordinator{
		registry:        reg,
		history:         hist,
		sessions:        sessions,
		players:         players,
		monitor:         mon,
		events:          make(chan Event, 256),
		leaderboardSize: leaderboardSize,
		joinSnapshot:    joinSnapshot,
	}
}

// Dispatch queues an event for the owner goroutine. Blocks only when the
// queue is full, which backpressures the submitting read loop.
func (c *Coordinator) Dispatch(event Event) {
	c.events <- event
}

// Run processes events to completion, one at a time, until the context
// is cancelled.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-c.events:
			c.process(event)
		}
	}
}

func (c *Coordinator) process(event Event) {
	switch event.Kind {
	case EventJoin:
		c.handleJoin(event.Session, event.PlayerName)
	case EventSpin:
		c.handleSpin(event.Session, event.BetAmount)
	case EventClose:
		c.handleClose(event.Session)
	}
}

func (c *Coordinator) leaderboard() []models.LeaderboardEntry {
	return history.Leaderboard(c.registry.Snapshot(), c.leaderboardSize)
}

func (c *Coordinator) broadcast(frameType string, payload interface{}, exclude string) {
	dropped := c.sessions.Broadcast(frameType, payload, exclude)
	if dropped > 0 && c.monitor != nil {
		for i := 0; i < dropped; i++ {
			c.monitor.IncDroppedFrames()
		}
	}
}

func (c *Coordinator) handleJoin(sess *session.Session, name string) {
	if sess.PlayerID() != "" {
		logger.Log.Warnf("Session %s sent join but is already bound", sess.ID)
		return
	}

	player := c.registry.Create(name)

	// With a durable store configured, a returning name gets its
	// persisted balance back; otherwise the defaults stand.
	if c.players != nil {
		loaded, err := c.players.LoadOrInit(player)
		if err != nil {
			logger.Log.Errorf("Load player %q: %v", name, err)
		} else if loaded != player {
			player = loaded
			c.registry.Update(player)
		}
	}

	sess.Bind(player.ID)
	c.sessions.Add(sess)

	if err := sess.Send(network.FrameGameState, network.GameStatePayload{
		Player:      player,
		Leaderboard: c.leaderboard(),
		RecentSpins: c.history.Recent(c.joinSnapshot),
		PlayerCount: c.sessions.Count(),
	}); err != nil {
		logger.Log.Debugf("Dropped game_state frame for session %s: %v", sess.ID, err)
	}

	c.broadcast(network.FramePlayerCount,
		network.PlayerCountPayload{Count: c.sessions.Count()}, sess.ID)

	if c.monitor != nil {
		c.monitor.IncOnlinePlayers()
	}
	logger.Log.Infof("Player %s (%s) joined, %d online", player.Name, player.ID, c.sessions.Count())
}

func (c *Coordinator) handleSpin(sess *session.Session, betAmount int) {
	playerID := sess.PlayerID()
	if playerID == "" {
		// Spin before join, ignored.
		return
	}

	player, exists := c.registry.Get(playerID)
	if !exists {
		// Connection closed underneath an in-flight spin.
		return
	}

	// Out-of-range bets are dropped without a reply frame.
	if betAmount < 1 || betAmount > player.Balance {
		logger.Log.Debugf("Dropping invalid bet %d from player %s (balance %d)",
			betAmount, player.ID, player.Balance)
		return
	}

	start := time.Now()

	reels := game.DrawReels()
	winAmount := game.Settle(reels, betAmount)

	// Debit and credit apply as one transition; nobody observes the
	// intermediate state because this goroutine is the only writer.
	player.Balance += winAmount - betAmount
	if winAmount > 0 {
		player.TotalWinnings += winAmount
	}
	c.registry.Update(player)

	event := models.SpinEvent{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Reels:      reels,
		BetAmount:  betAmount,
		WinAmount:  winAmount,
		Timestamp:  time.Now().UnixMilli(),
	}
	c.history.Record(event)

	if c.players != nil {
		if err := c.players.PersistSettlement(player, event); err != nil {
			logger.Log.Errorf("Persist settlement for %s: %v", player.Name, err)
		}
	}

	// Fan-out order matters: the initiator sees its own settlement
	// before any public artifact of it.
	if err := sess.Send(network.FrameSpinResult, network.SpinResultPayload{
		Reels:     reels,
		WinAmount: winAmount,
		Player:    player,
		BetAmount: betAmount,
	}); err != nil {
		logger.Log.Debugf("Dropped spin_result frame for session %s: %v", sess.ID, err)
	}

	c.broadcast(network.FramePlayerSpin, event, sess.ID)
	c.broadcast(network.FrameUpdateLeaderboard, c.leaderboard(), "")

	if c.monitor != nil {
		c.monitor.ObserveSpin(betAmount, winAmount, time.Since(start))
	}
}

func (c *Coordinator) handleClose(sess *session.Session) {
	playerID := sess.PlayerID()
	if playerID == "" {
		return
	}

	if c.players != nil {
		if player, ok := c.registry.Get(playerID); ok {
			if err := c.players.PersistAll([]models.Player{player}); err != nil {
				logger.Log.Errorf("Persist on leave for %s: %v", player.Name, err)
			}
		}
	}

	c.registry.Remove(playerID)
	c.sessions.Remove(sess.ID)

	c.broadcast(network.FramePlayerCount,
		network.PlayerCountPayload{Count: c.sessions.Count()}, "")
	c.broadcast(network.FrameUpdateLeaderboard, c.leaderboard(), "")

	if c.monitor != nil {
		c.monitor.DecOnlinePlayers()
	}
	logger.Log.Infof("Player %s left, %d online", playerID, c.sessions.Count())
}
