package model

import "strings"

type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists every tier from lowest to highest.
func Rarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// ParseRarity matches a tier name case-insensitively.
func ParseRarity(value string) (Rarity, bool) {
	for _, r := range Rarities() {
		if strings.EqualFold(string(r), strings.TrimSpace(value)) {
			return r, true
		}
	}
	return "", false
}

func (r Rarity) Lower() string {
	return strings.ToLower(string(r))
}
