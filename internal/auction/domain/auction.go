package domain

import (
	"time"

	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AuctionStatus represents the protocol state of a listed piece
type AuctionStatus string

const (
	StatusLocked   AuctionStatus = "LOCKED"
	StatusUnlocked AuctionStatus = "UNLOCKED"
	StatusSold     AuctionStatus = "SOLD"
	StatusVoid     AuctionStatus = "VOID"
)

// Fulfillment states written after a sale, checkout itself lives outside this service
const (
	FulfillmentPendingPayment = "pending_payment"
)

// DefaultRequiredBidders is the unlock threshold applied to new listings.
const DefaultRequiredBidders = 3

// MaxAuctionDuration bounds how far out end_time may be pushed on
// creation and reactivation.
const MaxAuctionDuration = 3 * 24 * time.Hour

// Auction is one listed piece accepting bids under the unlock protocol.
// Concurrent mutation is linearized by the storage layer (row lock held
// across the read-validate-write of a bid), so the entity itself carries
// no locking.
type Auction struct {
	ID                uuid.UUID
	DesignerID        uuid.UUID
	Title             string
	Description       string
	StartPrice        int64
	CurrentPrice      int64
	Status            AuctionStatus
	RequiredBidders   int
	UniqueBidderCount int
	EndTime           time.Time
	WinnerID          *uuid.UUID
	FulfillmentStatus *string
	TrackingNumber    *string
	ShippedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewAuction creates a fresh listing: LOCKED, current price at start price,
// no bidders yet.
func NewAuction(id, designerID uuid.UUID, title, description string, startPrice int64, endTime time.Time) *Auction {
	return &Auction{
		ID:                id,
		DesignerID:        designerID,
		Title:             title,
		Description:       description,
		StartPrice:        startPrice,
		CurrentPrice:      startPrice,
		Status:            StatusLocked,
		RequiredBidders:   DefaultRequiredBidders,
		UniqueBidderCount: 0,
		EndTime:           endTime,
	}
}

// Ended reports whether the auction reached a terminal state.
func (a *Auction) Ended() bool {
	return a.Status == StatusSold || a.Status == StatusVoid
}

// ValidateBid applies the bidding protocol checks in order: terminal state,
// self-bid, amount strictly above current price, deadline. The deadline is
// checked even when status still says LOCKED/UNLOCKED because the sweep
// runs on a delay, not on every request.
func (a *Auction) ValidateBid(bidderID uuid.UUID, amount int64, now time.Time) error {
	if a.Ended() {
		log.Warn("Bid rejected: auction in terminal state",
			zap.String("auctionID", a.ID.String()),
			zap.String("status", string(a.Status)),
			zap.String("bidderID", bidderID.String()),
		)
		return ErrAuctionEnded
	}

	if a.DesignerID == bidderID {
		log.Warn("Bid rejected: designer bidding on own auction",
			zap.String("auctionID", a.ID.String()),
			zap.String("bidderID", bidderID.String()),
		)
		return ErrSelfBid
	}

	if amount <= a.CurrentPrice {
		log.Warn("Bid rejected: amount too low",
			zap.String("auctionID", a.ID.String()),
			zap.Int64("bidAmount", amount),
			zap.Int64("currentPrice", a.CurrentPrice),
			zap.String("bidderID", bidderID.String()),
		)
		return &BidTooLowError{CurrentPrice: a.CurrentPrice}
	}

	if now.After(a.EndTime) {
		log.Warn("Bid rejected: auction past its deadline",
			zap.String("auctionID", a.ID.String()),
			zap.Time("endTime", a.EndTime),
			zap.String("bidderID", bidderID.String()),
		)
		return ErrAuctionEnded
	}

	return nil
}

// ApplyBid records an accepted bid on the aggregate: current price follows
// the bid, the distinct bidder count is refreshed, and the LOCKED→UNLOCKED
// flip fires the moment the threshold is first reached. Returns true when
// this bid caused the unlock.
func (a *Auction) ApplyBid(amount int64, distinctBidders int) bool {
	a.CurrentPrice = amount
	a.UniqueBidderCount = distinctBidders

	if a.Status == StatusLocked && a.UniqueBidderCount >= a.RequiredBidders {
		a.Status = StatusUnlocked
		log.Info("Auction unlocked",
			zap.String("auctionID", a.ID.String()),
			zap.Int("uniqueBidders", a.UniqueBidderCount),
			zap.Int("requiredBidders", a.RequiredBidders),
		)
		return true
	}
	return false
}

// Deletable reports whether the designer may still remove the listing.
// Once any interest has been expressed the ledger must stay intact.
func (a *Auction) Deletable(actorID uuid.UUID) error {
	if a.DesignerID != actorID {
		return ErrNotDesigner
	}
	if a.Status != StatusLocked || a.UniqueBidderCount > 0 {
		return ErrNotDeletable
	}
	return nil
}

// Reactivate resets a SOLD listing back to the floor: LOCKED, price back to
// start, bidder count zeroed, winner and fulfillment cleared. The new
// deadline defaults to, and is capped at, MaxAuctionDuration from now.
func (a *Auction) Reactivate(actorID uuid.UUID, endTime time.Time, now time.Time) error {
	if a.DesignerID != actorID {
		return ErrNotDesigner
	}
	if a.Status != StatusSold {
		return ErrNotReactivatable
	}

	if endTime.IsZero() {
		endTime = now.Add(MaxAuctionDuration)
	}
	if !endTime.After(now) {
		return ErrEndTimeInPast
	}
	if endTime.After(now.Add(MaxAuctionDuration)) {
		return ErrEndTimeTooFar
	}

	a.Status = StatusLocked
	a.EndTime = endTime
	a.CurrentPrice = a.StartPrice
	a.UniqueBidderCount = 0
	a.WinnerID = nil
	a.FulfillmentStatus = nil
	a.TrackingNumber = nil
	a.ShippedAt = nil

	log.Info("Auction reactivated",
		zap.String("auctionID", a.ID.String()),
		zap.Time("newEndTime", endTime),
	)
	return nil
}
