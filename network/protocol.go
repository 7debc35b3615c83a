// network/protocol.go
package network

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/wfunc/slotserver/models"
)

// Frame types. Inbound: join, spin. Everything else is outbound.
const (
	FrameJoin              = "join"
	FrameSpin              = "spin"
	FrameGameState         = "game_state"
	FrameSpinResult        = "spin_result"
	FramePlayerSpin        = "player_spin"
	FrameUpdateLeaderboard = "update_leaderboard"
	FramePlayerCount       = "player_count"
)

// Frame 统一帧格式 { type, data }
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var validate = validator.New()

// JoinData is the join payload.
type JoinData struct {
	PlayerName string `json:"playerName" validate:"required,max=32"`
}

// SpinData is the spin payload. The balance ceiling is checked by the
// coordinator; the floor is enforced here at the boundary.
type SpinData struct {
	BetAmount int `json:"betAmount" validate:"required,min=1"`
}

// GameStatePayload is sent privately to a connection on join.
type GameStatePayload struct {
	Player      models.Player             `json:"player"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	RecentSpins []models.SpinEvent        `json:"recentSpins"`
	PlayerCount int                       `json:"playerCount"`
}

// SpinResultPayload is sent privately to the spinning connection.
type SpinResultPayload struct {
	Reels     [3]models.Symbol `json:"reels"`
	WinAmount int              `json:"winAmount"`
	Player    models.Player    `json:"player"`
	BetAmount int              `json:"betAmount"`
}

// PlayerCountPayload carries the live participant count. The key is
// "count" here; only the game_state snapshot uses "playerCount".
type PlayerCountPayload struct {
	Count int `json:"count"`
}

// EncodeFrame marshals a typed payload into a wire frame.
func EncodeFrame(frameType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: frameType, Data: data})
}

// DecodeFrame parses one inbound wire frame.
func DecodeFrame(raw []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

// DecodeJoin validates and decodes a join payload.
func DecodeJoin(data json.RawMessage) (*JoinData, error) {
	var payload JoinData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DecodeSpin validates and decodes a spin payload.
func DecodeSpin(data json.RawMessage) (*SpinData, error) {
	var payload SpinData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if err := validate.Struct(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
