package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/atelier-works/atelier-engine/internal/notification"
	"github.com/atelier-works/atelier-engine/internal/shared/db"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceBidDTO carries the data needed to place one bid.
type PlaceBidDTO struct {
	AuctionID   uuid.UUID
	BidderID    uuid.UUID
	BidderEmail string
	Amount      int64
}

// PlaceBidUseCase validates and applies a bid: state, ownership, timing and
// amount checks, then the ledger insert and the auction recompute, all
// inside one transaction holding the auction's row lock. Two concurrent
// bids on the same auction serialize on that lock, so at most one bid is
// accepted per read of current_price.
type PlaceBidUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	pool        db.TxBeginner
	notifier    Notifier
	feed        Feed
	now         nowFunc
}

// NewPlaceBidUseCase creates a new instance of PlaceBidUseCase, dependencies
// arrive through injection.
func NewPlaceBidUseCase(auctionRepo domain.AuctionRepository, bidRepo domain.BidRepository,
	pool db.TxBeginner, notifier Notifier, feed Feed) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		pool:        pool,
		notifier:    notifier,
		feed:        feed,
		now:         time.Now,
	}
}

// Execute runs the bidding protocol for one request. Validation failures are
// terminal and mutate nothing; side effects after the commit are best-effort
// and never roll back the bid.
func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	log.Info("Executing PlaceBidUseCase",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.Int64("amount", cmd.Amount),
	)

	if cmd.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	bid, auction, err := uc.placeBidTx(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// Post-commit side effects. A mailer or feed problem must never turn a
	// placed bid into an error response.
	if cmd.BidderEmail != "" {
		uc.notifier.Notify(cmd.BidderEmail, notification.TemplateBidConfirmation, notification.Data{
			"Amount":       bid.Amount,
			"AuctionTitle": auction.Title,
			"AuctionID":    auction.ID.String(),
		})
	}
	// Outbid notification for the previous highest bidder needs their email
	// plumbed through the ledger; not wired until that exists.
	publishState(uc.feed, auction)

	return bid, nil
}

// placeBidTx is the transactional core: lock the auction row, validate,
// append the bid, recompute the auction, commit.
func (uc *PlaceBidUseCase) placeBidTx(ctx context.Context, cmd PlaceBidDTO) (bid *domain.Bid, auction *domain.Auction, err error) {
	tx, err := uc.pool.Begin(ctx)
	if err != nil {
		log.Error("PlaceBidUseCase: failed to begin transaction",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error("PlaceBidUseCase: failed to commit transaction",
				zap.String("auctionID", cmd.AuctionID.String()),
				zap.Error(commitErr),
			)
			err = fmt.Errorf("place bid: failed to commit transaction: %w", commitErr)
			bid, auction = nil, nil
		}
	}()

	auction, err = uc.auctionRepo.GetByIDForUpdate(ctx, tx, cmd.AuctionID)
	if err != nil {
		if !errors.Is(err, domain.ErrAuctionNotFound) {
			log.Error("PlaceBidUseCase: failed to get auction",
				zap.String("auctionID", cmd.AuctionID.String()),
				zap.Error(err),
			)
			err = fmt.Errorf("place bid: failed to get auction %s: %w", cmd.AuctionID, err)
		}
		return nil, nil, err
	}

	if err = auction.ValidateBid(cmd.BidderID, cmd.Amount, uc.now()); err != nil {
		return nil, nil, err
	}

	bid = domain.NewBid(uuid.New(), auction.ID, cmd.BidderID, cmd.Amount, uc.now().UTC())
	if err = uc.bidRepo.Insert(ctx, tx, bid); err != nil {
		log.Error("PlaceBidUseCase: failed to insert bid",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.String("bidID", bid.ID.String()),
			zap.Error(err),
		)
		err = fmt.Errorf("place bid: failed to insert bid for auction %s: %w", cmd.AuctionID, err)
		return nil, nil, err
	}

	distinct, err := uc.bidRepo.CountDistinctBidders(ctx, tx, auction.ID)
	if err != nil {
		err = fmt.Errorf("place bid: failed to count bidders for auction %s: %w", cmd.AuctionID, err)
		return nil, nil, err
	}

	auction.ApplyBid(cmd.Amount, distinct)

	if err = uc.auctionRepo.SaveBidState(ctx, tx, auction); err != nil {
		log.Error("PlaceBidUseCase: failed to save auction state",
			zap.String("auctionID", cmd.AuctionID.String()),
			zap.Error(err),
		)
		err = fmt.Errorf("place bid: failed to save auction %s: %w", cmd.AuctionID, err)
		return nil, nil, err
	}

	log.Info("Bid placed successfully",
		zap.String("auctionID", auction.ID.String()),
		zap.String("bidID", bid.ID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.Int64("amount", cmd.Amount),
		zap.Int64("newCurrentPrice", auction.CurrentPrice),
		zap.Int("uniqueBidders", auction.UniqueBidderCount),
		zap.String("status", string(auction.Status)),
	)

	return bid, auction, nil
}
