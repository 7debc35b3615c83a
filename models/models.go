// models/models.go
package models

// Symbol is one slot reel face.
type Symbol string

const (
	SymbolCherry  Symbol = "cherry"
	SymbolBar     Symbol = "bar"
	SymbolBell    Symbol = "bell"
	SymbolDiamond Symbol = "diamond"
	SymbolSeven   Symbol = "seven"
)

// Player 在线玩家数据模型
type Player struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Balance       int    `json:"balance"`
	TotalWinnings int    `json:"totalWinnings"`
	Avatar        string `json:"avatar"`
}

// SpinEvent is the immutable record of one settled spin.
type SpinEvent struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Reels      [3]Symbol `json:"reels"`
	BetAmount  int       `json:"betAmount"`
	WinAmount  int       `json:"winAmount"`
	Timestamp  int64     `json:"timestamp"` // unix millis
}

// LeaderboardEntry 排行榜条目（由注册表派生，不单独存储）
type LeaderboardEntry struct {
	PlayerID      string `json:"playerId"`
	PlayerName    string `json:"playerName"`
	TotalWinnings int    `json:"totalWinnings"`
	Avatar        string `json:"avatar"`
}
