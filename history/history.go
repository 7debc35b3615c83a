// history/history.go
package history

import (
	"sort"
	"sync"

	"github.com/wfunc/slotserver/models"
)

// History 最近旋转事件的有界队列，最新在前。
type History struct {
	events   []models.SpinEvent
	capacity int
	mutex    sync.RWMutex
}

func New(capacity int) *History {
	return &History{
		events:   make([]models.SpinEvent, 0, capacity),
		capacity: capacity,
	}
}

// Record prepends an event and evicts the oldest past capacity.
func (h *History) Record(event models.SpinEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.events = append([]models.SpinEvent{event}, h.events...)
	if len(h.events) > h.capacity {
		h.events = h.events[:h.capacity]
	}
}

// Recent returns up to n most recent events, most-recent-first.
func (h *History) Recent(n int) []models.SpinEvent {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if n > len(h.events) {
		n = len(h.events)
	}
	out := make([]models.SpinEvent, n)
	copy(out, h.events[:n])
	return out
}

func (h *History) Len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.events)
}

// Leaderboard derives the ranking from a registry snapshot, descending by
// cumulative winnings. The sort is stable, so a creation-ordered snapshot
// keeps ties in creation order. At most top entries are materialized; the
// ranking itself always considers the whole snapshot.
func Leaderboard(players []models.Player, top int) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(players))
	for _, player := range players {
		entries = append(entries, models.LeaderboardEntry{
			PlayerID:      player.ID,
			PlayerName:    player.Name,
			TotalWinnings: player.TotalWinnings,
			Avatar:        player.Avatar,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalWinnings > entries[j].TotalWinnings
	})

	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	return entries
}
