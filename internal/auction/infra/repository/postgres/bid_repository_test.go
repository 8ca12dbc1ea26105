package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/atelier-works/atelier-engine/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var bidCols = []string{"id", "auction_id", "user_id", "amount", "created_at"}

func TestBidRepository_Insert(t *testing.T) {
	mock := newMock(t)
	r := NewBidRepository(mock)

	bid := domain.NewBid(uuid.New(), uuid.New(), uuid.New(), 1200, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO bids`).
		WithArgs(bid.ID, bid.AuctionID, bid.UserID, bid.Amount, bid.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, r.Insert(context.Background(), tx, bid))
	require.NoError(t, tx.Commit(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_ListByAuction(t *testing.T) {
	mock := newMock(t)
	r := NewBidRepository(mock)

	auctionID := uuid.New()
	t0 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bids\s+WHERE auction_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs(auctionID).
		WillReturnRows(pgxmock.NewRows(bidCols).
			AddRow(uuid.New(), auctionID, uuid.New(), int64(1200), t0.Add(time.Minute)).
			AddRow(uuid.New(), auctionID, uuid.New(), int64(1100), t0))

	bids, err := r.ListByAuction(context.Background(), auctionID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, int64(1200), bids[0].Amount)
	require.Equal(t, int64(1100), bids[1].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_CountDistinctBidders(t *testing.T) {
	mock := newMock(t)
	r := NewBidRepository(mock)

	auctionID := uuid.New()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT user_id\) FROM bids WHERE auction_id = \$1`).
		WithArgs(auctionID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := r.CountDistinctBidders(context.Background(), tx, auctionID)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_HighestBid(t *testing.T) {
	mock := newMock(t)
	r := NewBidRepository(mock)

	auctionID := uuid.New()
	winnerID := uuid.New()
	t0 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY amount DESC\s+LIMIT 1`).
		WithArgs(auctionID).
		WillReturnRows(pgxmock.NewRows(bidCols).
			AddRow(uuid.New(), auctionID, winnerID, int64(1400), t0))

	bid, err := r.HighestBid(context.Background(), auctionID)
	require.NoError(t, err)
	require.Equal(t, winnerID, bid.UserID)
	require.Equal(t, int64(1400), bid.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepository_HighestBid_NoBids(t *testing.T) {
	mock := newMock(t)
	r := NewBidRepository(mock)

	auctionID := uuid.New()
	mock.ExpectQuery(`ORDER BY amount DESC\s+LIMIT 1`).
		WithArgs(auctionID).
		WillReturnError(pgx.ErrNoRows)

	bid, err := r.HighestBid(context.Background(), auctionID)
	require.NoError(t, err)
	require.Nil(t, bid)
}
