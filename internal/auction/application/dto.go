package application

import (
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionDTO is the wire shape of an auction, shared by the REST responses
// and the change-feed broadcasts.
type AuctionDTO struct {
	ID                uuid.UUID  `json:"id"`
	DesignerID        uuid.UUID  `json:"designer_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	StartPrice        int64      `json:"start_price"`
	CurrentPrice      int64      `json:"current_price"`
	Status            string     `json:"status"`
	RequiredBidders   int        `json:"required_bidders"`
	UniqueBidderCount int        `json:"unique_bidder_count"`
	EndTime           time.Time  `json:"end_time"`
	WinnerID          *uuid.UUID `json:"winner_id,omitempty"`
	FulfillmentStatus *string    `json:"fulfillment_status,omitempty"`
}

// AuctionDetailDTO is an auction with its full bid history.
type AuctionDetailDTO struct {
	AuctionDTO
	Bids []*domain.Bid `json:"bids"`
}

func toAuctionDTO(a *domain.Auction) AuctionDTO {
	return AuctionDTO{
		ID:                a.ID,
		DesignerID:        a.DesignerID,
		Title:             a.Title,
		Description:       a.Description,
		StartPrice:        a.StartPrice,
		CurrentPrice:      a.CurrentPrice,
		Status:            string(a.Status),
		RequiredBidders:   a.RequiredBidders,
		UniqueBidderCount: a.UniqueBidderCount,
		EndTime:           a.EndTime,
		WinnerID:          a.WinnerID,
		FulfillmentStatus: a.FulfillmentStatus,
	}
}
