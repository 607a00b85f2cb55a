package model

import "strings"

// AuctionFinished is emitted by the auction lifecycle once a winner (if any) is known.
type AuctionFinished struct {
	AuctionId string `json:"auctionId"`
	// ItemSold is optional; producers that leave it out are read by whether a winner is named.
	ItemSold *bool  `json:"itemSold,omitempty"`
	Winner   string `json:"winner"`
	Seller   string `json:"seller"`
	Amount   *int64 `json:"amount,omitempty"`
}

// SettledWinner is the user whose hold is forfeited, or "" when the item went unsold.
func (e AuctionFinished) SettledWinner() string {
	return SettledWinner(e.ItemSold, e.Winner)
}

// SettledWinner resolves the winner of an auction. An explicit itemSold=false always
// refunds everyone; without the flag a non-blank winner means the item sold.
func SettledWinner(itemSold *bool, winner string) string {
	winner = strings.TrimSpace(winner)
	if itemSold != nil && !*itemSold {
		return ""
	}
	return winner
}
