package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bid is one immutable, amount-stamped claim by a collector on an auction.
// Bids are never edited or withdrawn, the table is the audit ledger.
type Bid struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBid creates a new Bid instance
func NewBid(id, auctionID, userID uuid.UUID, amount int64, createdAt time.Time) *Bid {
	return &Bid{
		ID:        id,
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: createdAt,
	}
}
