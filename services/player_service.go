// services/player_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/wfunc/slotserver/models"
	"github.com/wfunc/slotserver/persistence"
)

// PlayerService bridges the live registry and the durable store. Live
// balances stay authoritative in the registry; this service only loads
// persisted state on join and writes settlements back out.
type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// LoadOrInit restores a returning player's balance and winnings by
// display name, or persists the fresh defaults for a new one.
func (s *PlayerService) LoadOrInit(player models.Player) (models.Player, error) {
	record, err := s.db.LoadPlayer(player.Name)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		if err := s.db.SavePlayer(recordFromPlayer(player)); err != nil {
			return player, fmt.Errorf("init player %q: %w", player.Name, err)
		}
		return player, nil
	}
	if err != nil {
		return player, fmt.Errorf("load player %q: %w", player.Name, err)
	}

	player.Balance = record.Balance
	player.TotalWinnings = record.TotalWinnings
	if record.Avatar != "" {
		player.Avatar = record.Avatar
	}
	return player, nil
}

// PersistSettlement writes one settled spin: the player's new balance
// plus the spin record for offline analysis.
func (s *PlayerService) PersistSettlement(player models.Player, event models.SpinEvent) error {
	if err := s.db.SavePlayer(recordFromPlayer(player)); err != nil {
		return fmt.Errorf("persist player %q: %w", player.Name, err)
	}

	record := models.SpinRecord{
		PlayerID:   event.PlayerID,
		PlayerName: event.PlayerName,
		Reels:      persistence.ReelsString(event.Reels),
		BetAmount:  event.BetAmount,
		WinAmount:  event.WinAmount,
	}
	if err := s.db.SaveSpinRecord(record); err != nil {
		return fmt.Errorf("persist spin for %q: %w", player.Name, err)
	}
	return nil
}

// PersistAll flushes a registry snapshot, keeping going past individual
// failures and reporting the first one.
func (s *PlayerService) PersistAll(players []models.Player) error {
	var firstErr error
	for _, player := range players {
		if err := s.db.SavePlayer(recordFromPlayer(player)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func recordFromPlayer(player models.Player) models.PlayerRecord {
	return models.PlayerRecord{
		Name:          player.Name,
		Balance:       player.Balance,
		TotalWinnings: player.TotalWinnings,
		Avatar:        player.Avatar,
	}
}
