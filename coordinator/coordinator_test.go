package coordinator

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/slotserver/game"
	"github.com/wfunc/slotserver/history"
	"github.com/wfunc/slotserver/logger"
	"github.com/wfunc/slotserver/network"
	"github.com/wfunc/slotserver/persistence"
	"github.com/wfunc/slotserver/registry"
	"github.com/wfunc/slotserver/services"
	"github.com/wfunc/slotserver/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

// frame is one captured outbound frame.
type frame struct {
	Type    string
	Payload interface{}
}

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	mu     sync.Mutex
	frames []frame
}

func (m *MockConnection) Send(frameType string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame{Type: frameType, Payload: payload})
	return nil
}

func (m *MockConnection) ReadFrame() (*network.Frame, error) { return nil, nil }
func (m *MockConnection) Close() error                       { return nil }
func (m *MockConnection) RemoteAddr() net.Addr               { return &net.TCPAddr{} }

func (m *MockConnection) Frames() []frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]frame, len(m.frames))
	copy(out, m.frames)
	return out
}

func (m *MockConnection) Types() []string {
	types := []string{}
	for _, f := range m.Frames() {
		types = append(types, f.Type)
	}
	return types
}

func newTestCoordinator() *Coordinator {
	return New(
		registry.New(1000),
		history.New(100),
		session.NewManager(),
		nil, // no durable store
		nil, // no metrics
		10, 20,
	)
}

func join(c *Coordinator, id, name string) (*session.Session, *MockConnection) {
	conn := &MockConnection{}
	sess := session.NewSession(id, conn)
	c.process(Event{Kind: EventJoin, Session: sess, PlayerName: name})
	return sess, conn
}

func TestJoin_SendsPrivateSnapshot(t *testing.T) {
	c := newTestCoordinator()
	_, conn := join(c, "s1", "alice")

	frames := conn.Frames()
	if len(frames) != 1 || frames[0].Type != network.FrameGameState {
		t.Fatalf("Expected exactly one game_state frame, got %v", conn.Types())
	}

	state := frames[0].Payload.(network.GameStatePayload)
	if state.Player.Name != "alice" || state.Player.Balance != 1000 {
		t.Errorf("Wrong player in snapshot: %+v", state.Player)
	}
	if state.PlayerCount != 1 {
		t.Errorf("Expected player count 1, got %d", state.PlayerCount)
	}
	if len(state.Leaderboard) != 1 {
		t.Errorf("Expected the joining player on the leaderboard, got %d entries", len(state.Leaderboard))
	}
	if len(state.RecentSpins) != 0 {
		t.Errorf("Expected empty spin feed, got %d", len(state.RecentSpins))
	}
}

func TestJoin_BroadcastsCountToOthersOnly(t *testing.T) {
	c := newTestCoordinator()
	_, conn1 := join(c, "s1", "alice")
	_, conn2 := join(c, "s2", "bob")

	types1 := conn1.Types()
	if len(types1) != 2 || types1[1] != network.FramePlayerCount {
		t.Fatalf("First session should see a player_count after the second join, got %v", types1)
	}

	count := conn1.Frames()[1].Payload.(network.PlayerCountPayload)
	if count.Count != 2 {
		t.Errorf("Expected count 2, got %d", count.Count)
	}

	// The joiner itself gets the count inside game_state, not a
	// separate player_count frame.
	for _, ft := range conn2.Types() {
		if ft == network.FramePlayerCount {
			t.Error("Joiner should not receive its own player_count broadcast")
		}
	}
}

func TestJoin_SecondJoinIgnored(t *testing.T) {
	c := newTestCoordinator()
	sess, conn := join(c, "s1", "alice")

	c.process(Event{Kind: EventJoin, Session: sess, PlayerName: "alice-again"})

	if c.registry.Count() != 1 {
		t.Errorf("Second join must not create a player, registry has %d", c.registry.Count())
	}
	if len(conn.Frames()) != 1 {
		t.Errorf("Second join must not emit frames, got %v", conn.Types())
	}
}

func TestSpin_BalanceEquationAndOrdering(t *testing.T) {
	c := newTestCoordinator()
	sess, conn := join(c, "s1", "alice")
	_, other := join(c, "s2", "bob")

	c.process(Event{Kind: EventSpin, Session: sess, BetAmount: 10})

	frames := conn.Frames()
	// game_state, player_count (bob joined), then the spin frames.
	if len(frames) != 4 {
		t.Fatalf("Expected 4 frames on initiator, got %v", conn.Types())
	}
	if frames[2].Type != network.FrameSpinResult || frames[3].Type != network.FrameUpdateLeaderboard {
		t.Fatalf("Initiator must see spin_result before update_leaderboard, got %v", conn.Types())
	}

	result := frames[2].Payload.(network.SpinResultPayload)
	if result.BetAmount != 10 {
		t.Errorf("Expected bet 10 in result, got %d", result.BetAmount)
	}
	if want := game.Settle(result.Reels, 10); result.WinAmount != want {
		t.Errorf("Win %d does not match paytable %d for reels %v", result.WinAmount, want, result.Reels)
	}
	if want := 1000 - 10 + result.WinAmount; result.Player.Balance != want {
		t.Errorf("Balance %d, want %d", result.Player.Balance, want)
	}

	otherTypes := other.Types()
	// game_state, then player_spin, then update_leaderboard.
	if len(otherTypes) != 3 || otherTypes[1] != network.FramePlayerSpin || otherTypes[2] != network.FrameUpdateLeaderboard {
		t.Fatalf("Observer should see player_spin then update_leaderboard, got %v", otherTypes)
	}

	if c.history.Len() != 1 {
		t.Errorf("Expected 1 history event, got %d", c.history.Len())
	}
}

func TestSpin_InvalidBetsSilentlyDropped(t *testing.T) {
	c := newTestCoordinator()
	sess, conn := join(c, "s1", "alice")
	_, other := join(c, "s2", "bob")

	before := len(conn.Frames())
	otherBefore := len(other.Frames())

	for _, bet := range []int{0, -5, 1001, 999999} {
		c.process(Event{Kind: EventSpin, Session: sess, BetAmount: bet})
	}

	if len(conn.Frames()) != before || len(other.Frames()) != otherBefore {
		t.Error("Invalid spins must not produce any outbound frame")
	}
	if c.history.Len() != 0 {
		t.Error("Invalid spins must not be recorded")
	}

	player, _ := c.registry.Get(sess.PlayerID())
	if player.Balance != 1000 || player.TotalWinnings != 0 {
		t.Errorf("Invalid spins must not change state: %+v", player)
	}
}

func TestSpin_BeforeJoinIgnored(t *testing.T) {
	c := newTestCoordinator()
	conn := &MockConnection{}
	sess := session.NewSession("s1", conn)

	c.process(Event{Kind: EventSpin, Session: sess, BetAmount: 10})

	if len(conn.Frames()) != 0 {
		t.Errorf("Spin before join must be ignored, got %v", conn.Types())
	}
	if c.history.Len() != 0 {
		t.Error("Spin before join must not be recorded")
	}
}

func TestSpin_WinningsMonotonic(t *testing.T) {
	c := newTestCoordinator()
	sess, conn := join(c, "s1", "alice")

	last := 0
	for i := 0; i < 50; i++ {
		c.process(Event{Kind: EventSpin, Session: sess, BetAmount: 1})
	}

	for _, f := range conn.Frames() {
		if f.Type != network.FrameSpinResult {
			continue
		}
		result := f.Payload.(network.SpinResultPayload)
		if result.Player.TotalWinnings < last {
			t.Fatalf("Total winnings decreased: %d -> %d", last, result.Player.TotalWinnings)
		}
		last = result.Player.TotalWinnings
	}
}

func TestClose_RemovesPlayerAndNotifiesSurvivors(t *testing.T) {
	c := newTestCoordinator()
	sess1, _ := join(c, "s1", "alice")
	_, conn2 := join(c, "s2", "bob")

	before := len(conn2.Frames())
	c.process(Event{Kind: EventClose, Session: sess1})

	if c.registry.Count() != 1 {
		t.Errorf("Expected 1 live player after close, got %d", c.registry.Count())
	}
	if c.sessions.Count() != 1 {
		t.Errorf("Expected 1 attached session after close, got %d", c.sessions.Count())
	}

	frames := conn2.Frames()[before:]
	if len(frames) != 2 || frames[0].Type != network.FramePlayerCount || frames[1].Type != network.FrameUpdateLeaderboard {
		t.Fatalf("Survivor should see player_count then update_leaderboard, got %v", frames)
	}
	if frames[0].Payload.(network.PlayerCountPayload).Count != 1 {
		t.Error("Survivor should see the decremented count")
	}
}

func TestClose_BeforeJoinIsNoop(t *testing.T) {
	c := newTestCoordinator()
	conn := &MockConnection{}
	sess := session.NewSession("s1", conn)

	c.process(Event{Kind: EventClose, Session: sess})

	if c.registry.Count() != 0 || c.sessions.Count() != 0 {
		t.Error("Close before join must not touch shared state")
	}
}

func TestDurableStore_BalanceSurvivesRejoin(t *testing.T) {
	players := services.NewPlayerService(persistence.NewMemory())
	c := New(registry.New(1000), history.New(100), session.NewManager(), players, nil, 10, 20)

	sess, conn := join(c, "s1", "alice")
	c.process(Event{Kind: EventSpin, Session: sess, BetAmount: 100})

	var lastBalance int
	for _, f := range conn.Frames() {
		if f.Type == network.FrameSpinResult {
			lastBalance = f.Payload.(network.SpinResultPayload).Player.Balance
		}
	}

	c.process(Event{Kind: EventClose, Session: sess})

	_, conn2 := join(c, "s2", "alice")
	state := conn2.Frames()[0].Payload.(network.GameStatePayload)
	if state.Player.Balance != lastBalance {
		t.Errorf("Rejoin balance %d, want persisted %d", state.Player.Balance, lastBalance)
	}
}

func TestConcurrentSpins_AllRecorded(t *testing.T) {
	c := newTestCoordinator()

	const n = 20
	sessions := make([]*session.Session, n)
	for i := 0; i < n; i++ {
		sessions[i], _ = join(c, fmt.Sprintf("s%d", i), fmt.Sprintf("p%d", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(sess *session.Session) {
			defer wg.Done()
			c.Dispatch(Event{Kind: EventSpin, Session: sess, BetAmount: 5})
		}(sessions[i])
	}
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for c.history.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d history events, got %d", n, c.history.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if c.history.Len() != n {
		t.Fatalf("Expected exactly %d history events, got %d", n, c.history.Len())
	}

	// Every player settled exactly one spin against its own balance.
	for _, sess := range sessions {
		player, ok := c.registry.Get(sess.PlayerID())
		if !ok {
			t.Fatal("Player missing after concurrent spins")
		}
		if player.Balance < 995 && player.TotalWinnings == 0 {
			t.Errorf("Inconsistent settlement: %+v", player)
		}
	}
}
