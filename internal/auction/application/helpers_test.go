package application

import (
	"context"
	"sync"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/atelier-works/atelier-engine/internal/notification"
	userdomain "github.com/atelier-works/atelier-engine/internal/user/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeAuctionRepo is an in-memory stand-in for the Postgres repository. It
// mimics the row/entity boundary: reads hand out copies, only the explicit
// save methods write back.
type fakeAuctionRepo struct {
	auctions map[uuid.UUID]*domain.Auction

	getErr      error
	saveErr     error
	markSoldErr map[uuid.UUID]error
	markVoidErr map[uuid.UUID]error
	// raceLost simulates another sweep run winning the conditional write
	// between this run's fetch and its update.
	raceLost map[uuid.UUID]bool
}

func newFakeAuctionRepo(auctions ...*domain.Auction) *fakeAuctionRepo {
	r := &fakeAuctionRepo{
		auctions:    make(map[uuid.UUID]*domain.Auction),
		markSoldErr: make(map[uuid.UUID]error),
		markVoidErr: make(map[uuid.UUID]error),
		raceLost:    make(map[uuid.UUID]bool),
	}
	for _, a := range auctions {
		clone := *a
		r.auctions[a.ID] = &clone
	}
	return r
}

func (r *fakeAuctionRepo) clone(id uuid.UUID) (*domain.Auction, error) {
	a, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *fakeAuctionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.clone(id)
}

func (r *fakeAuctionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Auction, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAuctionRepo) Create(ctx context.Context, auction *domain.Auction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *auction
	r.auctions[auction.ID] = &clone
	return nil
}

func (r *fakeAuctionRepo) List(ctx context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	var out []*domain.Auction
	for _, a := range r.auctions {
		if filter.DesignerID != nil && a.DesignerID != *filter.DesignerID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeAuctionRepo) SaveBidState(ctx context.Context, tx pgx.Tx, auction *domain.Auction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.auctions[auction.ID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	stored.CurrentPrice = auction.CurrentPrice
	stored.UniqueBidderCount = auction.UniqueBidderCount
	stored.Status = auction.Status
	return nil
}

func (r *fakeAuctionRepo) FindExpired(ctx context.Context, status domain.AuctionStatus, now time.Time) ([]*domain.Auction, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	var out []*domain.Auction
	for _, a := range r.auctions {
		if a.Status == status && a.EndTime.Before(now) {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeAuctionRepo) MarkSold(ctx context.Context, id, winnerID uuid.UUID) (bool, error) {
	if err := r.markSoldErr[id]; err != nil {
		return false, err
	}
	if r.raceLost[id] {
		return false, nil
	}
	a, ok := r.auctions[id]
	if !ok || a.Status != domain.StatusUnlocked {
		return false, nil
	}
	a.Status = domain.StatusSold
	a.WinnerID = &winnerID
	fulfillment := domain.FulfillmentPendingPayment
	a.FulfillmentStatus = &fulfillment
	return true, nil
}

func (r *fakeAuctionRepo) MarkVoid(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.markVoidErr[id]; err != nil {
		return false, err
	}
	a, ok := r.auctions[id]
	if !ok || a.Status != domain.StatusLocked {
		return false, nil
	}
	a.Status = domain.StatusVoid
	return true, nil
}

func (r *fakeAuctionRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.auctions[id]; !ok {
		return 0, nil
	}
	delete(r.auctions, id)
	return 1, nil
}

func (r *fakeAuctionRepo) SaveReactivated(ctx context.Context, auction *domain.Auction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	clone := *auction
	r.auctions[auction.ID] = &clone
	return nil
}

// fakeBidRepo keeps the ledger in a slice.
type fakeBidRepo struct {
	bids      []*domain.Bid
	insertErr error
}

func (r *fakeBidRepo) Insert(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	clone := *bid
	r.bids = append(r.bids, &clone)
	return nil
}

func (r *fakeBidRepo) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	var out []*domain.Bid
	for _, b := range r.bids {
		if b.AuctionID == auctionID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) CountDistinctBidders(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int, error) {
	seen := make(map[uuid.UUID]bool)
	for _, b := range r.bids {
		if b.AuctionID == auctionID {
			seen[b.UserID] = true
		}
	}
	return len(seen), nil
}

func (r *fakeBidRepo) HighestBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	var best *domain.Bid
	for _, b := range r.bids {
		if b.AuctionID != auctionID {
			continue
		}
		if best == nil || b.Amount > best.Amount {
			best = b
		}
	}
	if best == nil {
		return nil, nil
	}
	clone := *best
	return &clone, nil
}

// fakeProfileRepo resolves profiles from a map.
type fakeProfileRepo struct {
	profiles map[uuid.UUID]*userdomain.Profile
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*userdomain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, userdomain.ErrProfileNotFound
	}
	return p, nil
}

type sentNotification struct {
	To       string
	Template string
	Data     notification.Data
}

// fakeNotifier records dispatches; the mutex matters because the real
// dispatcher is called from request goroutines.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *fakeNotifier) Notify(to, templateName string, data notification.Data) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{To: to, Template: templateName, Data: data})
}

// fakeFeed records published auction IDs.
type fakeFeed struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeFeed) Publish(auctionID string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, auctionID)
}
