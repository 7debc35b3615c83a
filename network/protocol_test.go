package network

import (
	"encoding/json"
	"testing"

	"github.com/wfunc/slotserver/models"
)

func TestEncodeDecodeFrame(t *testing.T) {
	buf, err := EncodeFrame(FramePlayerCount, PlayerCountPayload{Count: 3})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	frame, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("DecodeFrame failed: %v", err)
	}
	if frame.Type != FramePlayerCount {
		t.Errorf("Expected type %s, got %s", FramePlayerCount, frame.Type)
	}

	var payload PlayerCountPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		t.Fatalf("Payload unmarshal failed: %v", err)
	}
	if payload.Count != 3 {
		t.Errorf("Expected count 3, got %d", payload.Count)
	}
}

func TestPlayerCountWireShape(t *testing.T) {
	buf, err := EncodeFrame(FramePlayerCount, PlayerCountPayload{Count: 3})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		t.Fatalf("Frame unmarshal failed: %v", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw["data"], &data); err != nil {
		t.Fatalf("Data unmarshal failed: %v", err)
	}

	if _, ok := data["count"]; !ok {
		t.Error("player_count payload must use key \"count\"")
	}
	if _, ok := data["playerCount"]; ok {
		t.Error("\"playerCount\" belongs to the game_state snapshot, not player_count")
	}
}

func TestGameStateWireShape(t *testing.T) {
	buf, err := EncodeFrame(FrameGameState, GameStatePayload{PlayerCount: 2})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		t.Fatalf("Frame unmarshal failed: %v", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw["data"], &data); err != nil {
		t.Fatalf("Data unmarshal failed: %v", err)
	}

	for _, key := range []string{"player", "leaderboard", "recentSpins", "playerCount"} {
		if _, ok := data[key]; !ok {
			t.Errorf("game_state payload missing key %q", key)
		}
	}
}

func TestDecodeFrame_Malformed(t *testing.T) {
	if _, err := DecodeFrame([]byte("not json")); err == nil {
		t.Error("DecodeFrame should reject non-JSON input")
	}
}

func TestDecodeJoin(t *testing.T) {
	payload, err := DecodeJoin(json.RawMessage(`{"playerName":"alice"}`))
	if err != nil {
		t.Fatalf("DecodeJoin failed: %v", err)
	}
	if payload.PlayerName != "alice" {
		t.Errorf("Expected alice, got %s", payload.PlayerName)
	}
}

func TestDecodeJoin_Invalid(t *testing.T) {
	cases := []string{
		`{}`,
		`{"playerName":""}`,
		`{"playerName":"this-name-is-way-too-long-to-be-accepted-here"}`,
		`"just a string"`,
	}
	for _, raw := range cases {
		if _, err := DecodeJoin(json.RawMessage(raw)); err == nil {
			t.Errorf("DecodeJoin(%s) should fail", raw)
		}
	}
}

func TestDecodeSpin(t *testing.T) {
	payload, err := DecodeSpin(json.RawMessage(`{"betAmount":25}`))
	if err != nil {
		t.Fatalf("DecodeSpin failed: %v", err)
	}
	if payload.BetAmount != 25 {
		t.Errorf("Expected bet 25, got %d", payload.BetAmount)
	}
}

func TestDecodeSpin_RejectsNonPositiveBets(t *testing.T) {
	cases := []string{
		`{"betAmount":0}`,
		`{"betAmount":-5}`,
		`{}`,
	}
	for _, raw := range cases {
		if _, err := DecodeSpin(json.RawMessage(raw)); err == nil {
			t.Errorf("DecodeSpin(%s) should fail", raw)
		}
	}
}

func TestSpinEventWireShape(t *testing.T) {
	event := models.SpinEvent{
		PlayerID:   "id-1",
		PlayerName: "alice",
		Reels:      [3]models.Symbol{models.SymbolSeven, models.SymbolSeven, models.SymbolSeven},
		BetAmount:  10,
		WinAmount:  1000,
		Timestamp:  1700000000000,
	}

	buf, err := EncodeFrame(FramePlayerSpin, event)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		t.Fatalf("Frame unmarshal failed: %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw["data"], &data); err != nil {
		t.Fatalf("Data unmarshal failed: %v", err)
	}

	for _, key := range []string{"playerId", "playerName", "reels", "betAmount", "winAmount", "timestamp"} {
		if _, ok := data[key]; !ok {
			t.Errorf("SpinEvent wire payload missing key %q", key)
		}
	}
}
