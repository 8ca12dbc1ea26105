package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuctionFilter narrows List results. Zero values mean no filter.
type AuctionFilter struct {
	DesignerID *uuid.UUID
	Status     AuctionStatus
}

// AuctionRepository owns auction rows and their status transitions.
//
// Status, current_price and unique_bidder_count have exactly two mutation
// paths: SaveBidState (bidding protocol, inside the bid transaction) and
// the conditional MarkSold/MarkVoid pair (sweep). Nothing else writes them.
type AuctionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	// GetByIDForUpdate locks the auction row for the lifetime of tx so the
	// read-validate-write of a bid is linearized per auction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Auction, error)
	Create(ctx context.Context, auction *Auction) error
	List(ctx context.Context, filter AuctionFilter) ([]*Auction, error)
	// SaveBidState persists the fields ApplyBid touched, inside the bid tx.
	SaveBidState(ctx context.Context, tx pgx.Tx, auction *Auction) error
	// FindExpired returns auctions in the given status whose end_time passed.
	FindExpired(ctx context.Context, status AuctionStatus, now time.Time) ([]*Auction, error)
	// MarkSold flips UNLOCKED→SOLD only if the row still says UNLOCKED,
	// reporting whether this call's update took effect.
	MarkSold(ctx context.Context, id, winnerID uuid.UUID) (bool, error)
	// MarkVoid flips LOCKED→VOID under the same conditional-write guard.
	MarkVoid(ctx context.Context, id uuid.UUID) (bool, error)
	// Delete removes a listing, returning the number of rows removed so the
	// caller can tell a guard violation from success.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// SaveReactivated persists a Reactivate() reset.
	SaveReactivated(ctx context.Context, auction *Auction) error
}

// BidRepository owns the bid ledger. Inserts happen only inside the bid
// transaction; rows are never updated or deleted.
type BidRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, bid *Bid) error
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	// CountDistinctBidders runs inside the bid tx so the recomputed count
	// includes the row just inserted.
	CountDistinctBidders(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int, error)
	// HighestBid returns the max-amount bid, or nil when the auction has none.
	HighestBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)
}
