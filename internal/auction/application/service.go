package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/atelier-works/atelier-engine/internal/notification"
	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Notifier dispatches a fire-and-forget notification. Satisfied by
// notification.Dispatcher.
type Notifier interface {
	Notify(to, templateName string, data notification.Data)
}

// Feed pushes an auction state change to subscribed clients. Satisfied by
// the shared websocket hub.
type Feed interface {
	Publish(auctionID string, data []byte)
}

// AuctionService is the application surface the transport layer talks to,
// one method per use case.
type AuctionService interface {
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error)
	Sweep(ctx context.Context) (SweepResult, error)
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error)
	DeleteAuction(ctx context.Context, auctionID, actorID uuid.UUID) error
	ReactivateAuction(ctx context.Context, cmd ReactivateDTO) (*domain.Auction, error)
	GetAuction(ctx context.Context, id uuid.UUID) (*AuctionDetailDTO, error)
	ListAuctions(ctx context.Context, filter domain.AuctionFilter) ([]AuctionDTO, error)
}

type auctionService struct {
	placeBidUC   *PlaceBidUseCase
	sweepUC      *SweepUseCase
	listingUC    *ListingUseCase
	reactivateUC *ReactivateUseCase
}

// NewAuctionService bundles the use cases behind the AuctionService interface.
func NewAuctionService(placeBidUC *PlaceBidUseCase, sweepUC *SweepUseCase,
	listingUC *ListingUseCase, reactivateUC *ReactivateUseCase) AuctionService {
	return &auctionService{
		placeBidUC:   placeBidUC,
		sweepUC:      sweepUC,
		listingUC:    listingUC,
		reactivateUC: reactivateUC,
	}
}

func (s *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*domain.Bid, error) {
	return s.placeBidUC.Execute(ctx, cmd)
}

func (s *auctionService) Sweep(ctx context.Context) (SweepResult, error) {
	return s.sweepUC.Execute(ctx)
}

func (s *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*domain.Auction, error) {
	return s.listingUC.Create(ctx, cmd)
}

func (s *auctionService) DeleteAuction(ctx context.Context, auctionID, actorID uuid.UUID) error {
	return s.listingUC.Delete(ctx, auctionID, actorID)
}

func (s *auctionService) ReactivateAuction(ctx context.Context, cmd ReactivateDTO) (*domain.Auction, error) {
	return s.reactivateUC.Execute(ctx, cmd)
}

func (s *auctionService) GetAuction(ctx context.Context, id uuid.UUID) (*AuctionDetailDTO, error) {
	return s.listingUC.Get(ctx, id)
}

func (s *auctionService) ListAuctions(ctx context.Context, filter domain.AuctionFilter) ([]AuctionDTO, error) {
	return s.listingUC.List(ctx, filter)
}

// publishState pushes the auction's new state onto the change feed. Best
// effort, a marshalling problem is logged and forgotten.
func publishState(feed Feed, a *domain.Auction) {
	if feed == nil {
		return
	}
	payload, err := json.Marshal(toAuctionDTO(a))
	if err != nil {
		log.Error("Failed to marshal auction state for feed",
			zap.String("auctionID", a.ID.String()),
			zap.Error(err),
		)
		return
	}
	feed.Publish(a.ID.String(), payload)
}

// nowFunc is the injectable clock the use cases share, tests replace it.
type nowFunc func() time.Time
