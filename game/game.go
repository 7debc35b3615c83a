// game/game.go
package game

import (
	"math/rand"

	"github.com/wfunc/slotserver/models"
)

// Draw weights, higher = more common. Order matters for the roll walk.
var symbolWeights = []struct {
	Symbol models.Symbol
	Weight int
}{
	{models.SymbolCherry, 40},
	{models.SymbolBar, 30},
	{models.SymbolBell, 15},
	{models.SymbolDiamond, 10},
	{models.SymbolSeven, 5},
}

// Multiplier tables. Pair payouts apply to positions 1 and 2 only.
var triplePayouts = map[models.Symbol]int{
	models.SymbolSeven:   100,
	models.SymbolDiamond: 50,
	models.SymbolBell:    25,
	models.SymbolBar:     10,
	models.SymbolCherry:  5,
}

var pairPayouts = map[models.Symbol]int{
	models.SymbolSeven:   10,
	models.SymbolDiamond: 5,
	models.SymbolBell:    3,
	models.SymbolBar:     2,
	models.SymbolCherry:  2,
}

func totalWeight() int {
	total := 0
	for _, sw := range symbolWeights {
		total += sw.Weight
	}
	return total
}

// pickSymbol maps a roll in [0, totalWeight) onto the weight table.
func pickSymbol(roll int) models.Symbol {
	for _, sw := range symbolWeights {
		roll -= sw.Weight
		if roll < 0 {
			return sw.Symbol
		}
	}
	return models.SymbolCherry
}

// DrawReels draws three independent symbols from the weighted
// distribution. Draws are memoryless, there is no shared reel state.
func DrawReels() [3]models.Symbol {
	total := totalWeight()
	return [3]models.Symbol{
		pickSymbol(rand.Intn(total)),
		pickSymbol(rand.Intn(total)),
		pickSymbol(rand.Intn(total)),
	}
}

// Settle computes the win amount for a drawn combination and bet. Pure
// and deterministic; bet limits are the coordinator's concern, not ours.
//
// Note the pair rule checks positions 1 and 2 only. A pair on any other
// positions pays nothing, which is the intended paytable.
func Settle(reels [3]models.Symbol, betAmount int) int {
	r1, r2, r3 := reels[0], reels[1], reels[2]

	if r1 == r2 && r2 == r3 {
		return triplePayouts[r1] * betAmount
	}

	if r1 == r2 {
		return pairPayouts[r1] * betAmount
	}

	if r1 == models.SymbolCherry {
		return betAmount
	}

	return 0
}
