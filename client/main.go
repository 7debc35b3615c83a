package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"

	"github.com/wfunc/slotserver/models"
	"github.com/wfunc/slotserver/network"
)

// send encodes and writes one frame to the server.
func send(c *websocket.Conn, frameType string, payload interface{}) error {
	buf, err := network.EncodeFrame(frameType, payload)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, buf)
}

func printFrame(frame *network.Frame) {
	switch frame.Type {
	case network.FrameGameState:
		var state network.GameStatePayload
		if err := json.Unmarshal(frame.Data, &state); err != nil {
			pterm.Warning.Printfln("Bad game_state payload: %v", err)
			return
		}
		pterm.Success.Printfln("Joined as %s, balance %d", state.Player.Name, state.Player.Balance)
		pterm.Info.Printfln("%d players online, %d recent spins", state.PlayerCount, len(state.RecentSpins))

	case network.FrameSpinResult:
		var result network.SpinResultPayload
		if err := json.Unmarshal(frame.Data, &result); err != nil {
			pterm.Warning.Printfln("Bad spin_result payload: %v", err)
			return
		}
		line := pterm.Sprintf("[ %s | %s | %s ]", result.Reels[0], result.Reels[1], result.Reels[2])
		if result.WinAmount > 0 {
			pterm.Success.Printfln("%s  won %d, balance %d", line, result.WinAmount, result.Player.Balance)
		} else {
			pterm.Info.Printfln("%s  no win, balance %d", line, result.Player.Balance)
		}

	case network.FramePlayerSpin:
		var spin models.SpinEvent
		if err := json.Unmarshal(frame.Data, &spin); err != nil {
			return
		}
		pterm.Info.Printfln("%s bet %d and won %d", spin.PlayerName, spin.BetAmount, spin.WinAmount)

	case network.FrameUpdateLeaderboard:
		var entries []models.LeaderboardEntry
		if err := json.Unmarshal(frame.Data, &entries); err != nil {
			return
		}
		rows := pterm.TableData{{"#", "Player", "Winnings"}}
		for i, e := range entries {
			rows = append(rows, []string{strconv.Itoa(i + 1), e.PlayerName, strconv.Itoa(e.TotalWinnings)})
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	case network.FramePlayerCount:
		var count network.PlayerCountPayload
		if err := json.Unmarshal(frame.Data, &count); err != nil {
			return
		}
		pterm.Info.Printfln("%d players online", count.Count)

	default:
		pterm.Debug.Printfln("Unhandled frame type %q", frame.Type)
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "", "player name (prompted when empty)")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	pterm.Info.Printfln("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		pterm.Fatal.Printfln("Dial failed: %v", err)
	}
	defer c.Close()

	playerName := *name
	if playerName == "" {
		playerName, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your player name").Show()
		playerName = strings.TrimSpace(playerName)
	}

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				pterm.Warning.Printfln("Read error: %v", err)
				return
			}
			frame, err := network.DecodeFrame(message)
			if err != nil {
				pterm.Warning.Printfln("Received invalid frame: %v", err)
				continue
			}
			printFrame(frame)
		}
	}()

	if err := send(c, network.FrameJoin, network.JoinData{PlayerName: playerName}); err != nil {
		pterm.Fatal.Printfln("Join failed: %v", err)
	}

	pterm.Info.Println("Type 'spin <amount>' to play, 'quit' to leave.")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			pterm.Info.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				pterm.Warning.Printfln("Write close error: %v", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "spin":
				bet := 10
				if len(fields) > 1 {
					if n, err := strconv.Atoi(fields[1]); err == nil {
						bet = n
					}
				}
				if err := send(c, network.FrameSpin, network.SpinData{BetAmount: bet}); err != nil {
					pterm.Warning.Printfln("Write error: %v", err)
					return
				}
			case "quit":
				return
			default:
				pterm.Warning.Printfln("Unknown command %q", fields[0])
			}
		}
	}
}
