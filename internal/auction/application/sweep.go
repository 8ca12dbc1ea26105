package application

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/atelier-works/atelier-engine/internal/notification"
	userdomain "github.com/atelier-works/atelier-engine/internal/user/domain"
	"go.uber.org/zap"
)

// SweepResult reports how many auctions one run actually resolved.
type SweepResult struct {
	Sold int `json:"sold"`
	Void int `json:"void"`
}

// SweepUseCase resolves expired auctions: UNLOCKED ones sell to the highest
// bidder, LOCKED ones void. It is stateless, idempotent and fired by an
// external scheduler; overlapping runs are safe because every status flip is
// a conditional write on the expected pre-state.
type SweepUseCase struct {
	auctionRepo domain.AuctionRepository
	bidRepo     domain.BidRepository
	profileRepo userdomain.ProfileRepository
	notifier    Notifier
	feed        Feed
	now         nowFunc
}

// NewSweepUseCase creates a new instance of SweepUseCase.
func NewSweepUseCase(auctionRepo domain.AuctionRepository, bidRepo domain.BidRepository,
	profileRepo userdomain.ProfileRepository, notifier Notifier, feed Feed) *SweepUseCase {
	return &SweepUseCase{
		auctionRepo: auctionRepo,
		bidRepo:     bidRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		feed:        feed,
		now:         time.Now,
	}
}

// Execute runs one sweep. A failure on one auction is logged and skipped so
// the rest of the batch still resolves; the returned counts cover only what
// this run actually flipped.
func (uc *SweepUseCase) Execute(ctx context.Context) (SweepResult, error) {
	now := uc.now()
	result := SweepResult{}

	expired, err := uc.auctionRepo.FindExpired(ctx, domain.StatusUnlocked, now)
	if err != nil {
		return result, fmt.Errorf("sweep: failed to fetch expired unlocked auctions: %w", err)
	}
	for _, auction := range expired {
		if uc.resolveSold(ctx, auction) {
			result.Sold++
		}
	}

	neverUnlocked, err := uc.auctionRepo.FindExpired(ctx, domain.StatusLocked, now)
	if err != nil {
		// the sold half already ran; report what it did resolve
		return result, fmt.Errorf("sweep: failed to fetch expired locked auctions: %w", err)
	}
	for _, auction := range neverUnlocked {
		if uc.resolveVoid(ctx, auction) {
			result.Void++
		}
	}

	log.Info("Sweep completed",
		zap.Int("sold", result.Sold),
		zap.Int("void", result.Void),
	)
	return result, nil
}

func (uc *SweepUseCase) resolveSold(ctx context.Context, auction *domain.Auction) bool {
	winning, err := uc.bidRepo.HighestBid(ctx, auction.ID)
	if err != nil {
		log.Error("Sweep: failed to fetch winning bid, skipping auction",
			zap.String("auctionID", auction.ID.String()),
			zap.Error(err),
		)
		return false
	}
	if winning == nil {
		// unlocked auction with no bids should not exist, but never invent
		// a winner for it
		log.Warn("Sweep: unlocked auction has no bids, skipping",
			zap.String("auctionID", auction.ID.String()))
		return false
	}

	applied, err := uc.auctionRepo.MarkSold(ctx, auction.ID, winning.UserID)
	if err != nil {
		log.Error("Sweep: failed to mark auction sold, skipping",
			zap.String("auctionID", auction.ID.String()),
			zap.Error(err),
		)
		return false
	}
	if !applied {
		// another sweep run got here first
		return false
	}

	log.Info("Auction sold",
		zap.String("auctionID", auction.ID.String()),
		zap.String("winnerID", winning.UserID.String()),
		zap.Int64("winningAmount", winning.Amount),
	)

	auction.Status = domain.StatusSold
	auction.WinnerID = &winning.UserID
	fulfillment := domain.FulfillmentPendingPayment
	auction.FulfillmentStatus = &fulfillment

	uc.notifyResolved(ctx, auction, winning)
	publishState(uc.feed, auction)
	return true
}

// notifyResolved sends the win notice and the designer's informational note.
// Both are best-effort; a missing profile just costs the email.
func (uc *SweepUseCase) notifyResolved(ctx context.Context, auction *domain.Auction, winning *domain.Bid) {
	if winner, err := uc.profileRepo.GetByID(ctx, winning.UserID); err != nil {
		log.Warn("Sweep: could not load winner profile for notification",
			zap.String("auctionID", auction.ID.String()),
			zap.String("winnerID", winning.UserID.String()),
			zap.Error(err),
		)
	} else {
		uc.notifier.Notify(winner.Email, notification.TemplateAuctionWon, notification.Data{
			"AuctionTitle": auction.Title,
			"Amount":       winning.Amount,
			"AuctionID":    auction.ID.String(),
		})
	}

	if designer, err := uc.profileRepo.GetByID(ctx, auction.DesignerID); err != nil {
		log.Warn("Sweep: could not load designer profile for notification",
			zap.String("auctionID", auction.ID.String()),
			zap.String("designerID", auction.DesignerID.String()),
			zap.Error(err),
		)
	} else {
		uc.notifier.Notify(designer.Email, notification.TemplateAuctionEnded, notification.Data{
			"AuctionTitle": auction.Title,
			"Status":       string(domain.StatusSold),
		})
	}
}

func (uc *SweepUseCase) resolveVoid(ctx context.Context, auction *domain.Auction) bool {
	applied, err := uc.auctionRepo.MarkVoid(ctx, auction.ID)
	if err != nil {
		log.Error("Sweep: failed to void auction, skipping",
			zap.String("auctionID", auction.ID.String()),
			zap.Error(err),
		)
		return false
	}
	if !applied {
		return false
	}

	log.Info("Auction voided",
		zap.String("auctionID", auction.ID.String()),
		zap.Int("uniqueBidders", auction.UniqueBidderCount),
		zap.Int("requiredBidders", auction.RequiredBidders),
	)

	// No designer notification on void; emails go out only when an auction
	// resolves to a sale.
	auction.Status = domain.StatusVoid
	publishState(uc.feed, auction)
	return true
}
