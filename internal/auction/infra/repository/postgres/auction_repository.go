package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const auctionColumns = `id, designer_id, title, description, start_price, current_price, status,
        required_bidders, unique_bidder_count, end_time, winner_id, fulfillment_status,
        tracking_number, shipped_at, created_at, updated_at`

// querier is the subset of pgxpool.Pool these repositories use outside a
// transaction, so pgxmock's pool can stand in during tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuctionRepository implements domain.AuctionRepository for PostgreSQL.
type AuctionRepository struct {
	db querier
}

// NewAuctionRepository creates a new instance of AuctionRepository.
func NewAuctionRepository(db querier) *AuctionRepository {
	return &AuctionRepository{db: db}
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	err := row.Scan(
		&a.ID,
		&a.DesignerID,
		&a.Title,
		&a.Description,
		&a.StartPrice,
		&a.CurrentPrice,
		&a.Status,
		&a.RequiredBidders,
		&a.UniqueBidderCount,
		&a.EndTime,
		&a.WinnerID,
		&a.FulfillmentStatus,
		&a.TrackingNumber,
		&a.ShippedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID fetches one auction by id.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`

	a, err := scanAuction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetByIDForUpdate fetches one auction inside tx holding a row lock until the
// transaction ends. Concurrent bids on the same auction queue up here, which
// is what linearizes the read-validate-write sequence.
func (r *AuctionRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`

	a, err := scanAuction(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a fresh listing.
func (r *AuctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, designer_id, title, description, start_price, current_price,
            status, required_bidders, unique_bidder_count, end_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.db.Exec(ctx, query,
		auction.ID,
		auction.DesignerID,
		auction.Title,
		auction.Description,
		auction.StartPrice,
		auction.CurrentPrice,
		auction.Status,
		auction.RequiredBidders,
		auction.UniqueBidderCount,
		auction.EndTime,
	)
	return err
}

// List returns auctions, optionally narrowed by designer and/or status,
// newest deadline first.
func (r *AuctionRepository) List(ctx context.Context, filter domain.AuctionFilter) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions`
	args := []any{}
	where := ""

	if filter.DesignerID != nil {
		args = append(args, *filter.DesignerID)
		where = ` WHERE designer_id = $1`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		if where == "" {
			where = ` WHERE status = $1`
		} else {
			where += ` AND status = $2`
		}
	}
	query += where + ` ORDER BY end_time DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return auctions, nil
}

// SaveBidState persists the fields an accepted bid recomputes, inside the
// same transaction that inserted the bid row.
func (r *AuctionRepository) SaveBidState(ctx context.Context, tx pgx.Tx, auction *domain.Auction) error {
	query := `
        UPDATE auctions
        SET current_price = $2, unique_bidder_count = $3, status = $4, updated_at = NOW()
        WHERE id = $1
    `
	_, err := tx.Exec(ctx, query,
		auction.ID,
		auction.CurrentPrice,
		auction.UniqueBidderCount,
		auction.Status,
	)
	return err
}

// FindExpired returns auctions in the given status whose deadline passed.
func (r *AuctionRepository) FindExpired(ctx context.Context, status domain.AuctionStatus, now time.Time) ([]*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE status = $1 AND end_time < $2`

	rows, err := r.db.Query(ctx, query, status, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return auctions, nil
}

// MarkSold flips an auction to SOLD and records the winner, but only when the
// row still says UNLOCKED. Two sweep runs racing on the same auction cannot
// both win: the second sees zero rows affected.
func (r *AuctionRepository) MarkSold(ctx context.Context, id, winnerID uuid.UUID) (bool, error) {
	query := `
        UPDATE auctions
        SET status = $3, winner_id = $2, fulfillment_status = $4, updated_at = NOW()
        WHERE id = $1 AND status = $5
    `
	tag, err := r.db.Exec(ctx, query, id, winnerID, domain.StatusSold, domain.FulfillmentPendingPayment, domain.StatusUnlocked)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkVoid flips a never-unlocked auction to VOID under the same
// status-conditioned guard.
func (r *AuctionRepository) MarkVoid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
        UPDATE auctions
        SET status = $2, updated_at = NOW()
        WHERE id = $1 AND status = $3
    `
	tag, err := r.db.Exec(ctx, query, id, domain.StatusVoid, domain.StatusLocked)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a listing and reports how many rows went away. The
// application layer decides what zero rows means (gone vs guarded).
func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `DELETE FROM auctions WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SaveReactivated persists a SOLD→LOCKED reset, clearing winner and
// fulfillment fields along with the recomputed pricing state.
func (r *AuctionRepository) SaveReactivated(ctx context.Context, auction *domain.Auction) error {
	query := `
        UPDATE auctions
        SET status = $2, end_time = $3, current_price = $4, unique_bidder_count = $5,
            winner_id = NULL, fulfillment_status = NULL, tracking_number = NULL,
            shipped_at = NULL, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query,
		auction.ID,
		auction.Status,
		auction.EndTime,
		auction.CurrentPrice,
		auction.UniqueBidderCount,
	)
	return err
}
