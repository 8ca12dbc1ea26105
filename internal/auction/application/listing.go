package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAuctionDTO carries a designer's new listing.
type CreateAuctionDTO struct {
	DesignerID  uuid.UUID
	Title       string
	Description string
	StartPrice  int64
	EndTime     time.Time
}

// ListingUseCase covers the listing lifecycle around the protocol: create,
// guarded delete, and the read surface.
type ListingUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	now         nowFunc
}

// NewListingUseCase creates a new instance of ListingUseCase.
func NewListingUseCase(auctionRepo domain.AuctionRepository, bidRepo domain.BidRepository) *ListingUseCase {
	return &ListingUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		now:         time.Now,
	}
}

// Create validates and inserts a fresh LOCKED listing at start price.
func (uc *ListingUseCase) Create(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	if strings.TrimSpace(cmd.Title) == "" {
		return nil, domain.ErrTitleRequired
	}
	if cmd.StartPrice <= 0 {
		return nil, domain.ErrInvalidStartPrice
	}

	now := uc.now()
	endTime := cmd.EndTime
	if endTime.IsZero() {
		endTime = now.Add(domain.MaxAuctionDuration)
	}
	if !endTime.After(now) {
		return nil, domain.ErrEndTimeInPast
	}
	if endTime.After(now.Add(domain.MaxAuctionDuration)) {
		return nil, domain.ErrEndTimeTooFar
	}

	auction := domain.NewAuction(uuid.New(), cmd.DesignerID, cmd.Title, cmd.Description, cmd.StartPrice, endTime)
	if err := uc.auctionRepo.Create(ctx, auction); err != nil {
		return nil, fmt.Errorf("listing: failed to create auction: %w", err)
	}

	log.Info("Auction created",
		zap.String("auctionID", auction.ID.String()),
		zap.String("designerID", cmd.DesignerID.String()),
		zap.Int64("startPrice", cmd.StartPrice),
		zap.Time("endTime", endTime),
	)
	return auction, nil
}

// Delete removes a listing, allowed only to its designer while the auction
// is still LOCKED and bidder-free.
func (uc *ListingUseCase) Delete(ctx context.Context, auctionID, actorID uuid.UUID) error {
	auction, err := uc.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if err := auction.Deletable(actorID); err != nil {
		log.Warn("Auction delete refused",
			zap.String("auctionID", auctionID.String()),
			zap.String("actorID", actorID.String()),
			zap.Error(err),
		)
		return err
	}

	rows, err := uc.auctionRepo.Delete(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("listing: failed to delete auction %s: %w", auctionID, err)
	}
	if rows == 0 {
		// vanished between the read and the delete
		return domain.ErrAuctionNotFound
	}

	log.Info("Auction deleted",
		zap.String("auctionID", auctionID.String()),
		zap.String("designerID", actorID.String()),
	)
	return nil
}

// Get returns one auction together with its bid history.
func (uc *ListingUseCase) Get(ctx context.Context, id uuid.UUID) (*AuctionDetailDTO, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bids, err := uc.bidRepo.ListByAuction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing: failed to load bids for auction %s: %w", id, err)
	}
	return &AuctionDetailDTO{
		AuctionDTO: toAuctionDTO(auction),
		Bids:       bids,
	}, nil
}

// List returns auctions matching the filter.
func (uc *ListingUseCase) List(ctx context.Context, filter domain.AuctionFilter) ([]AuctionDTO, error) {
	auctions, err := uc.auctionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing: failed to list auctions: %w", err)
	}
	dtos := make([]AuctionDTO, 0, len(auctions))
	for _, a := range auctions {
		dtos = append(dtos, toAuctionDTO(a))
	}
	return dtos, nil
}
