package postgres

import (
	"context"
	"errors"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BidRepository implements domain.BidRepository for PostgreSQL. The ledger
// is append-only: there is no update or delete here on purpose.
type BidRepository struct {
	db querier
}

// NewBidRepository creates new instance of BidRepository.
func NewBidRepository(db querier) *BidRepository {
	return &BidRepository{db: db}
}

// Insert appends one bid inside the bid transaction. The auction recompute
// that follows runs on the same tx, so both commit or neither does.
func (r *BidRepository) Insert(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_id, user_id, amount, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.AuctionID,
		bid.UserID,
		bid.Amount,
		bid.CreatedAt,
	)
	return err
}

// ListByAuction returns the full bid history for an auction, newest first.
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, user_id, amount, created_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid := &domain.Bid{}
		err := rows.Scan(
			&bid.ID,
			&bid.AuctionID,
			&bid.UserID,
			&bid.Amount,
			&bid.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

// CountDistinctBidders counts unique bidder identities for an auction within
// the bid transaction, so the bid just inserted is visible to the count.
func (r *BidRepository) CountDistinctBidders(ctx context.Context, tx pgx.Tx, auctionID uuid.UUID) (int, error) {
	query := `SELECT COUNT(DISTINCT user_id) FROM bids WHERE auction_id = $1`

	var count int
	if err := tx.QueryRow(ctx, query, auctionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// HighestBid returns the max-amount bid for an auction, or nil when there are
// no bids. Amounts are unique per auction (strict-increase rule), so no
// tie-break is needed.
func (r *BidRepository) HighestBid(ctx context.Context, auctionID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT id, auction_id, user_id, amount, created_at
        FROM bids
        WHERE auction_id = $1
        ORDER BY amount DESC
        LIMIT 1
    `
	bid := &domain.Bid{}
	err := r.db.QueryRow(ctx, query, auctionID).Scan(
		&bid.ID,
		&bid.AuctionID,
		&bid.UserID,
		&bid.Amount,
		&bid.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bid, nil
}
