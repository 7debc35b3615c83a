// models/records.go
package models

import (
	"time"
)

// PlayerRecord 持久化玩家余额（按名字保存，断线重连后恢复）
type PlayerRecord struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"uniqueIndex;size:64;not null"`
	Balance       int    `gorm:"not null;default:1000"`
	TotalWinnings int    `gorm:"not null;default:0"`
	Avatar        string `gorm:"size:32"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定表名
func (PlayerRecord) TableName() string {
	return "players"
}

// SpinRecord 持久化旋转记录（离线分析用）
type SpinRecord struct {
	ID         uint   `gorm:"primaryKey"`
	PlayerID   string `gorm:"index;size:64;not null"`
	PlayerName string `gorm:"size:64;not null"`
	Reels      string `gorm:"size:64;not null"` // e.g. "cherry,bar,seven"
	BetAmount  int    `gorm:"not null"`
	WinAmount  int    `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName 指定表名
func (SpinRecord) TableName() string {
	return "spin_records"
}
