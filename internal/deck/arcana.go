package deck

import (
	"fmt"
	"strings"
)

var (
	suits = []string{"wands", "cups", "swords", "pentacles"}
	ranks = []string{
		"ace", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
		"page", "knight", "queen", "king",
	}
)

// MajorArcana returns the 22 trump cards keyed major_arcana.00 to major_arcana.21
func MajorArcana() []CardDef {
	cards := make([]CardDef, 0, 22)
	for i := 0; i <= 21; i++ {
		number := fmt.Sprintf("%02d", i)
		cards = append(cards, CardDef{
			Key:   "major_arcana." + number,
			Title: getDefaultMajorArcanaName(number),
		})
	}
	return cards
}

// MinorArcana returns the 56 suit cards keyed minor_arcana.<suit>.<rank>
func MinorArcana() []CardDef {
	cards := make([]CardDef, 0, len(suits)*len(ranks))
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, CardDef{
				Key:   fmt.Sprintf("minor_arcana.%s.%s", suit, rank),
				Title: getDefaultMinorArcanaName(rank, suit),
			})
		}
	}
	return cards
}

// getDefaultMajorArcanaName returns the default name for a major arcana card
func getDefaultMajorArcanaName(number string) string {
	names := map[string]string{
		"00": "The Fool",
		"01": "The Magician",
		"02": "The High Priestess",
		"03": "The Empress",
		"04": "The Emperor",
		"05": "The Hierophant",
		"06": "The Lovers",
		"07": "The Chariot",
		"08": "Strength",
		"09": "The Hermit",
		"10": "Wheel of Fortune",
		"11": "Justice",
		"12": "The Hanged Man",
		"13": "Death",
		"14": "Temperance",
		"15": "The Devil",
		"16": "The Tower",
		"17": "The Star",
		"18": "The Moon",
		"19": "The Sun",
		"20": "Judgement",
		"21": "The World",
	}

	if name, ok := names[number]; ok {
		return name
	}

	return fmt.Sprintf("Major Arcana %s", number)
}

// getDefaultMinorArcanaName returns the default name for a minor arcana card
func getDefaultMinorArcanaName(rank, suit string) string {
	return fmt.Sprintf("%s of %s", capitalize(rank), capitalize(suit))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
