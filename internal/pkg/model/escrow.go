package model

import "sort"

// Escrow is the FLOG a user has reserved against open bids, keyed by auction id.
// A key present in the map is the single hold for that auction.
type Escrow map[string]int64

func (e Escrow) Amount(auctionID string) (int64, bool) {
	amount, ok := e[auctionID]
	return amount, ok
}

// Put adds or replaces the hold for an auction and returns the amount it replaced.
func (e *Escrow) Put(auctionID string, amount int64) int64 {
	if *e == nil {
		*e = Escrow{}
	}
	prior := (*e)[auctionID]
	(*e)[auctionID] = amount
	return prior
}

// Remove drops the hold for an auction and returns what was held.
func (e Escrow) Remove(auctionID string) (int64, bool) {
	amount, ok := e[auctionID]
	if ok {
		delete(e, auctionID)
	}
	return amount, ok
}

func (e Escrow) Total() int64 {
	var total int64
	for _, amount := range e {
		total += amount
	}
	return total
}

func (e Escrow) AuctionIDs() []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e Escrow) Clone() Escrow {
	clone := make(Escrow, len(e))
	for id, amount := range e {
		clone[id] = amount
	}
	return clone
}
