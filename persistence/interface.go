// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/slotserver/models"
)

// Database 持久化接口。余额按玩家名字保存；实现必须把 SavePlayer 当作 upsert。
type Database interface {
	LoadPlayer(name string) (models.PlayerRecord, error)
	SavePlayer(record models.PlayerRecord) error
	SaveSpinRecord(record models.SpinRecord) error
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
