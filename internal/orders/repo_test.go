package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  establishment_id TEXT NOT NULL,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  priority INTEGER NOT NULL DEFAULT 0,
  slot_start DATETIME,
  slot_end DATETIME,
  kitchen_launch_at DATETIME,
  destination TEXT,
  travel_minutes INTEGER,
  round_id TEXT,
  created_at DATETIME,
  completed_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, establishmentID uuid.UUID, orderType enums.OrderType, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		EstablishmentID: establishmentID,
		Type:            orderType,
		Status:          status,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryFindCompletedSince(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	establishmentID := uuid.New()
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	recent := seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusCompleted, now.Add(-50*time.Minute))
	recentDone := now.Add(-38 * time.Minute)
	require.NoError(t, db.Model(recent).Update("completed_at", recentDone).Error)

	stale := seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusCompleted, now.Add(-3*time.Hour))
	staleDone := now.Add(-2 * time.Hour)
	require.NoError(t, db.Model(stale).Update("completed_at", staleDone).Error)

	// Completed order for another establishment never leaks in.
	other := seedOrder(t, db, uuid.New(), enums.OrderTypePickup, enums.OrderStatusCompleted, now.Add(-30*time.Minute))
	otherDone := now.Add(-20 * time.Minute)
	require.NoError(t, db.Model(other).Update("completed_at", otherDone).Error)

	found, err := repo.FindCompletedSince(ctx, establishmentID, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, recent.ID, found[0].ID)
}

func TestRepositoryCountByStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	establishmentID := uuid.New()
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusPending, now)
	seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusPreparing, now)
	seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusConfirmed, now)
	seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusCompleted, now)

	count, err := repo.CountByStatus(ctx, establishmentID, []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPreparing})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	widened, err := repo.CountByStatus(ctx, establishmentID, []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusPreparing, enums.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(3), widened)
}

func TestRepositoryFindLaunchCandidates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	establishmentID := uuid.New()
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	slotted := seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusPending, now)
	slotStart := now.Add(45 * time.Minute)
	require.NoError(t, db.Model(slotted).Update("slot_start", slotStart).Error)

	// No slot booked yet, nothing to launch.
	seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusPending, now)

	// Already in the kitchen, scheduler must not touch it.
	preparing := seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusPreparing, now)
	require.NoError(t, db.Model(preparing).Update("slot_start", slotStart).Error)

	candidates, err := repo.FindLaunchCandidates(ctx, establishmentID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, slotted.ID, candidates[0].ID)
}

func TestRepositoryFindUnroundedDeliveries(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	establishmentID := uuid.New()
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	from := now
	to := now.Add(2 * time.Hour)

	delivery := seedOrder(t, db, establishmentID, enums.OrderTypeDelivery, enums.OrderStatusConfirmed, now)
	require.NoError(t, db.Model(delivery).Update("slot_start", now.Add(30*time.Minute)).Error)

	pickup := seedOrder(t, db, establishmentID, enums.OrderTypePickup, enums.OrderStatusConfirmed, now)
	require.NoError(t, db.Model(pickup).Update("slot_start", now.Add(30*time.Minute)).Error)

	rounded := seedOrder(t, db, establishmentID, enums.OrderTypeDelivery, enums.OrderStatusConfirmed, now)
	require.NoError(t, db.Model(rounded).Updates(map[string]any{
		"slot_start": now.Add(30 * time.Minute),
		"round_id":   uuid.New(),
	}).Error)

	late := seedOrder(t, db, establishmentID, enums.OrderTypeDelivery, enums.OrderStatusConfirmed, now)
	require.NoError(t, db.Model(late).Update("slot_start", now.Add(3*time.Hour)).Error)

	found, err := repo.FindUnroundedDeliveries(ctx, establishmentID, from, to)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, delivery.ID, found[0].ID)
}

func TestRepositoryAssignAndClearRound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	establishmentID := uuid.New()
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	a := seedOrder(t, db, establishmentID, enums.OrderTypeDelivery, enums.OrderStatusConfirmed, now)
	b := seedOrder(t, db, establishmentID, enums.OrderTypeDelivery, enums.OrderStatusConfirmed, now)

	roundID := uuid.New()
	require.NoError(t, repo.AssignRound(ctx, []uuid.UUID{a.ID, b.ID}, roundID))

	var assigned int64
	require.NoError(t, db.Model(&models.Order{}).Where("round_id = ?", roundID).Count(&assigned).Error)
	assert.Equal(t, int64(2), assigned)

	require.NoError(t, repo.ClearRound(ctx, roundID))
	require.NoError(t, db.Model(&models.Order{}).Where("round_id = ?", roundID).Count(&assigned).Error)
	assert.Equal(t, int64(0), assigned)
}

func TestRepositoryUpdateScheduling(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), enums.OrderTypePickup, enums.OrderStatusPending, time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC))

	launchAt := time.Date(2026, 3, 14, 13, 43, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateScheduling(ctx, order.ID, map[string]any{
		"kitchen_launch_at": launchAt,
		"status":            enums.OrderStatusConfirmed,
		"priority":          1000,
	}))

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.KitchenLaunchAt)
	assert.True(t, reloaded.KitchenLaunchAt.Equal(launchAt))
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
	assert.Equal(t, 1000, reloaded.Priority)
}
