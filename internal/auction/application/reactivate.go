package application

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReactivateDTO carries a designer's request to put a SOLD piece back on
// the floor. A zero EndTime means the default duration.
type ReactivateDTO struct {
	AuctionID uuid.UUID
	ActorID   uuid.UUID
	EndTime   time.Time
}

// ReactivateUseCase resets a SOLD auction back to LOCKED with a fresh
// deadline. Bid rows from the previous run stay in the ledger untouched;
// the auction's derived fields restart from scratch.
type ReactivateUseCase struct {
	auctionRepo domain.AuctionRepository
	feed        Feed
	now         nowFunc
}

// NewReactivateUseCase creates a new instance of ReactivateUseCase.
func NewReactivateUseCase(auctionRepo domain.AuctionRepository, feed Feed) *ReactivateUseCase {
	return &ReactivateUseCase{
		auctionRepo: auctionRepo,
		feed:        feed,
		now:         time.Now,
	}
}

func (uc *ReactivateUseCase) Execute(ctx context.Context, cmd ReactivateDTO) (*domain.Auction, error) {
	auction, err := uc.auctionRepo.GetByID(ctx, cmd.AuctionID)
	if err != nil {
		return nil, err
	}

	if err := auction.Reactivate(cmd.ActorID, cmd.EndTime, uc.now()); err != nil {
		log.Warn("Auction reactivation refused",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.String("actorID", cmd.ActorID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.auctionRepo.SaveReactivated(ctx, auction); err != nil {
		return nil, fmt.Errorf("reactivate: failed to save auction %s: %w", cmd.AuctionID, err)
	}

	publishState(uc.feed, auction)
	return auction, nil
}
