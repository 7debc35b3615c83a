// registry/registry.go
package registry

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/wfunc/slotserver/models"
)

// Avatar palette, purely cosmetic.
var avatarColors = []string{
	"bg-red-500", "bg-blue-500", "bg-green-500",
	"bg-yellow-500", "bg-purple-500", "bg-pink-500",
}

// Registry 在线玩家注册表，游戏内金额变动的唯一权威来源。
// The coordinator is the only writer during settlement; the RPC surface
// and the flush job read snapshots.
type Registry struct {
	players         map[string]models.Player
	order           map[string]int // creation sequence, for stable leaderboard ties
	seq             int
	startingBalance int
	mutex           sync.RWMutex
}

func New(startingBalance int) *Registry {
	return &Registry{
		players:         make(map[string]models.Player),
		order:           make(map[string]int),
		startingBalance: startingBalance,
	}
}

// Create allocates a fresh player with the starting balance.
func (r *Registry) Create(name string) models.Player {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player := models.Player{
		ID:            uuid.New().String(),
		Name:          name,
		Balance:       r.startingBalance,
		TotalWinnings: 0,
		Avatar:        avatarColors[rand.Intn(len(avatarColors))],
	}
	r.players[player.ID] = player
	r.order[player.ID] = r.seq
	r.seq++
	return player
}

func (r *Registry) Get(id string) (models.Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	player, exists := r.players[id]
	return player, exists
}

// Update replaces the stored record, last writer wins. Callers must have
// serialized their read-modify-write; unknown ids are ignored.
func (r *Registry) Update(player models.Player) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.players[player.ID]; !exists {
		return
	}
	r.players[player.ID] = player
}

func (r *Registry) Remove(id string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.players, id)
	delete(r.order, id)
}

func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.players)
}

// Snapshot returns a copy of all live players in creation order.
func (r *Registry) Snapshot() []models.Player {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	players := make([]models.Player, 0, len(r.players))
	for _, player := range r.players {
		players = append(players, player)
	}

	// Creation order keeps leaderboard tie-breaks stable.
	sort.Slice(players, func(i, j int) bool {
		return r.order[players[i].ID] < r.order[players[j].ID]
	})
	return players
}
