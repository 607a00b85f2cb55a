package model

import "time"

type OwnedHero struct {
	HeroId     string    `json:"heroId"`
	VariantId  string    `json:"variantId"`
	Name       string    `json:"name"`
	Discipline string    `json:"discipline"`
	Rarity     Rarity    `json:"rarity"`
	Strength   int       `json:"strength"`
	Intellect  int       `json:"intellect"`
	Vitality   int       `json:"vitality"`
	Agility    int       `json:"agility"`
	CardImage  string    `json:"cardImage"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// Power is the sum of the hero's four stats.
func (h OwnedHero) Power() int {
	return h.Strength + h.Intellect + h.Vitality + h.Agility
}
