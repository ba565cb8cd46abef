// Package baucua runs bầu cua tôm cá rounds: players stake on six animals, three
// animal dice are rolled and every stake pays once per matching die plus the stake.
package baucua

import (
	"strings"

	"elaina/game"
)

// Animal is one face of the bầu cua dice
type Animal string

const (
	Deer    Animal = "nai"
	Gourd   Animal = "bau"
	Chicken Animal = "ga"
	Fish    Animal = "ca"
	Crab    Animal = "cua"
	Shrimp  Animal = "tom"
)

// Animals lists every face in board order
var Animals = []Animal{Deer, Gourd, Chicken, Fish, Crab, Shrimp}

var animalNames = map[Animal]string{
	Deer:    "Nai",
	Gourd:   "Bầu",
	Chicken: "Gà",
	Fish:    "Cá",
	Crab:    "Cua",
	Shrimp:  "Tôm",
}

var animalEmoji = map[Animal]string{
	Deer:    "🦌",
	Gourd:   "🍐",
	Chicken: "🐓",
	Fish:    "🐟",
	Crab:    "🦀",
	Shrimp:  "🦐",
}

// Name is the Vietnamese display name
func (a Animal) Name() string {
	if name, ok := animalNames[a]; ok {
		return name
	}
	return string(a)
}

// Emoji is the face shown on buttons and dice
func (a Animal) Emoji() string {
	return animalEmoji[a]
}

// ParseAnimal accepts the id or the display name, with or without diacritics
func ParseAnimal(s string) (Animal, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range Animals {
		if s == string(a) || s == strings.ToLower(a.Name()) {
			return a, true
		}
	}
	return "", false
}

// Dice is the result of one roll
type Dice [3]Animal

// Roll throws the three dice
func Roll(r game.Rand) Dice {
	if r == nil {
		r = game.DefaultRand
	}
	var d Dice
	for n := range d {
		d[n] = Animals[r.IntN(len(Animals))]
	}
	return d
}

// Count returns how many dice show a
func (d Dice) Count(a Animal) int {
	n := 0
	for _, face := range d {
		if face == a {
			n++
		}
	}
	return n
}

// Win is the return on one winning stake
type Win struct {
	Animal Animal
	Stake  int64
	Payout int64
}

// Payout settles one player's stakes against the dice. A stake on an animal that
// shows k times returns (k+1) times the stake; stakes on missing animals are lost.
func Payout(stakes map[Animal]int64, dice Dice) (int64, []Win) {
	var total int64
	var wins []Win
	for _, a := range Animals {
		stake := stakes[a]
		if stake <= 0 {
			continue
		}
		k := dice.Count(a)
		if k == 0 {
			continue
		}
		payout := int64(k+1) * stake
		total += payout
		wins = append(wins, Win{Animal: a, Stake: stake, Payout: payout})
	}
	return total, wins
}
