// persistence/memory.go
package persistence

import (
	"sync"
	"time"

	"github.com/wfunc/slotserver/models"
)

// Memory keeps records in process memory. Used when no database is
// configured: balances then live exactly as long as the process.
type Memory struct {
	players map[string]models.PlayerRecord
	spins   []models.SpinRecord
	nextID  uint
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		players: make(map[string]models.PlayerRecord),
		nextID:  1,
	}
}

func (m *Memory) LoadPlayer(name string) (models.PlayerRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	record, exists := m.players[name]
	if !exists {
		return models.PlayerRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (m *Memory) SavePlayer(record models.PlayerRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, exists := m.players[record.Name]; exists {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = m.nextID
		m.nextID++
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = time.Now()
	m.players[record.Name] = record
	return nil
}

func (m *Memory) SaveSpinRecord(record models.SpinRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	record.ID = m.nextID
	m.nextID++
	record.CreatedAt = time.Now()
	m.spins = append(m.spins, record)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
