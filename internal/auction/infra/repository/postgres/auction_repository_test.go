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

var auctionCols = []string{
	"id", "designer_id", "title", "description", "start_price", "current_price", "status",
	"required_bidders", "unique_bidder_count", "end_time", "winner_id", "fulfillment_status",
	"tracking_number", "shipped_at", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func auctionRow(id, designerID uuid.UUID, status domain.AuctionStatus, endTime time.Time) []any {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []any{
		id, designerID, "Deconstructed Blazer", "one of one", int64(1000), int64(1000), status,
		3, 0, endTime, nil, nil,
		nil, nil, now, now,
	}
}

func TestAuctionRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	id := uuid.New()
	designerID := uuid.New()
	endTime := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM auctions WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(auctionCols).AddRow(auctionRow(id, designerID, domain.StatusLocked, endTime)...))

	a, err := r.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, id, a.ID)
	require.Equal(t, designerID, a.DesignerID)
	require.Equal(t, domain.StatusLocked, a.Status)
	require.Equal(t, int64(1000), a.CurrentPrice)
	require.Nil(t, a.WinnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	id := uuid.New()
	mock.ExpectQuery(`FROM auctions WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.GetByID(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}

func TestAuctionRepository_GetByIDForUpdate_LocksRow(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	id := uuid.New()
	designerID := uuid.New()
	endTime := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectQuery(`FROM auctions WHERE id = \$1 FOR UPDATE`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(auctionCols).AddRow(auctionRow(id, designerID, domain.StatusLocked, endTime)...))

	a, err := r.GetByIDForUpdate(context.Background(), tx, id)
	require.NoError(t, err)
	require.Equal(t, id, a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionRepository_SaveBidState(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	a := domain.NewAuction(uuid.New(), uuid.New(), "Coat", "", 1000, time.Now().Add(time.Hour))
	a.ApplyBid(1100, 1)

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE auctions`).
		WithArgs(a.ID, int64(1100), 1, domain.StatusLocked).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, r.SaveBidState(context.Background(), tx, a))
	require.NoError(t, tx.Commit(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionRepository_MarkSold_Conditional(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	id := uuid.New()
	winnerID := uuid.New()

	// still UNLOCKED: this run's update takes effect
	mock.ExpectExec(`UPDATE auctions`).
		WithArgs(id, winnerID, domain.StatusSold, domain.FulfillmentPendingPayment, domain.StatusUnlocked).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	applied, err := r.MarkSold(context.Background(), id, winnerID)
	require.NoError(t, err)
	require.True(t, applied)

	// already flipped by a concurrent run: zero rows, no effect
	mock.ExpectExec(`UPDATE auctions`).
		WithArgs(id, winnerID, domain.StatusSold, domain.FulfillmentPendingPayment, domain.StatusUnlocked).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	applied, err = r.MarkSold(context.Background(), id, winnerID)
	require.NoError(t, err)
	require.False(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionRepository_MarkVoid_Conditional(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	id := uuid.New()
	mock.ExpectExec(`UPDATE auctions`).
		WithArgs(id, domain.StatusVoid, domain.StatusLocked).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	applied, err := r.MarkVoid(context.Background(), id)
	require.NoError(t, err)
	require.False(t, applied)
}

func TestAuctionRepository_FindExpired(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	designerID := uuid.New()

	mock.ExpectQuery(`FROM auctions WHERE status = \$1 AND end_time < \$2`).
		WithArgs(domain.StatusUnlocked, now).
		WillReturnRows(pgxmock.NewRows(auctionCols).
			AddRow(auctionRow(id, designerID, domain.StatusUnlocked, now.Add(-time.Hour))...))

	auctions, err := r.FindExpired(context.Background(), domain.StatusUnlocked, now)
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	require.Equal(t, id, auctions[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionRepository_Delete(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM auctions WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	rows, err := r.Delete(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)
}

func TestAuctionRepository_List_Filters(t *testing.T) {
	mock := newMock(t)
	r := NewAuctionRepository(mock)

	designerID := uuid.New()
	id := uuid.New()
	endTime := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM auctions WHERE designer_id = \$1 AND status = \$2 ORDER BY end_time DESC`).
		WithArgs(designerID, domain.StatusLocked).
		WillReturnRows(pgxmock.NewRows(auctionCols).
			AddRow(auctionRow(id, designerID, domain.StatusLocked, endTime)...))

	auctions, err := r.List(context.Background(), domain.AuctionFilter{
		DesignerID: &designerID,
		Status:     domain.StatusLocked,
	})
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
