package rounds

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jinxed112/fritos-dispatch/internal/clustering"
	"github.com/jinxed112/fritos-dispatch/internal/orders"
	"github.com/jinxed112/fritos-dispatch/internal/schedule"
	"github.com/jinxed112/fritos-dispatch/pkg/config"
	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
	pkgerrors "github.com/jinxed112/fritos-dispatch/pkg/errors"
	"github.com/jinxed112/fritos-dispatch/pkg/maps"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

type stubPrep struct{}

func (stubPrep) CurrentPrepMinutes(context.Context, uuid.UUID, bool) (int, error) {
	return 12, nil
}

type stubSchedule struct{}

func (stubSchedule) Settings(_ context.Context, establishmentID uuid.UUID) (models.EstablishmentSchedule, error) {
	return schedule.Defaults(establishmentID), nil
}

var (
	nearA = types.GeographyPoint{Lat: 45.7640, Lng: 4.8357}
	nearB = types.GeographyPoint{Lat: 45.7685, Lng: 4.8357}
)

func setupRoundsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS orders (
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
);`,
		`CREATE TABLE IF NOT EXISTS delivery_rounds (
  id TEXT PRIMARY KEY,
  establishment_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'planned',
  departure_at DATETIME NOT NULL,
  kitchen_launch_at DATETIME NOT NULL,
  total_travel_minutes REAL NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS round_stops (
  id TEXT PRIMARY KEY,
  round_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  destination TEXT NOT NULL,
  travel_minutes_from_prev REAL NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newRoundsService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Orders:   orders.NewRepository(db),
		Tx:       gormTxRunner{db: db},
		Prep:     stubPrep{},
		Schedule: stubSchedule{},
		Clustering: config.ClusteringConfig{
			MaxDistanceKM:   1.5,
			MaxHopMinutes:   3,
			AssumedSpeedKMH: 30,
			PerStopMinutes:  2,
		},
	})
	require.NoError(t, err)
	return svc
}

func seedRoundOrder(t *testing.T, db *gorm.DB, establishmentID uuid.UUID, dest types.GeographyPoint, slotStart time.Time) *models.Order {
	t.Helper()

	slotEnd := slotStart.Add(30 * time.Minute)
	travel := 10
	order := &models.Order{
		ID:              uuid.New(),
		EstablishmentID: establishmentID,
		Type:            enums.OrderTypeDelivery,
		Status:          enums.OrderStatusConfirmed,
		SlotStart:       &slotStart,
		SlotEnd:         &slotEnd,
		Destination:     &dest,
		TravelMinutes:   &travel,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCommitPersistsRoundStopsAndAssignments(t *testing.T) {
	db := setupRoundsTestDB(t)
	svc := newRoundsService(t, db)
	ctx := context.Background()

	establishmentID := uuid.New()
	slotStart := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	a := seedRoundOrder(t, db, establishmentID, nearA, slotStart)
	b := seedRoundOrder(t, db, establishmentID, nearB, slotStart)

	round, err := svc.Commit(ctx, CommitInput{
		EstablishmentID: establishmentID,
		OrderIDs:        []uuid.UUID{a.ID, b.ID},
	})
	require.NoError(t, err)
	require.Len(t, round.Stops, 2)
	assert.Equal(t, enums.RoundStatusPlanned, round.Status)
	assert.Equal(t, 1, round.Stops[0].Position)
	assert.Equal(t, 2, round.Stops[1].Position)
	assert.Zero(t, round.Stops[0].TravelMinutesFromPrev)
	assert.Greater(t, round.Stops[1].TravelMinutesFromPrev, 0.0)

	// 13:00 window minus 10 travel, minus prep 12 + buffer 5.
	assert.True(t, round.DepartureAt.Equal(slotStart.Add(-10*time.Minute)))
	assert.True(t, round.KitchenLaunchAt.Equal(slotStart.Add(-27*time.Minute)))

	ordersRepo := orders.NewRepository(db)
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		reloaded, err := ordersRepo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, reloaded.RoundID)
		assert.Equal(t, round.ID, *reloaded.RoundID)
		require.NotNil(t, reloaded.KitchenLaunchAt)
		assert.True(t, reloaded.KitchenLaunchAt.Equal(round.KitchenLaunchAt))
	}
}

func TestCommitRejectsIncompatibleOrders(t *testing.T) {
	db := setupRoundsTestDB(t)
	svc := newRoundsService(t, db)
	ctx := context.Background()

	establishmentID := uuid.New()
	slotStart := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	a := seedRoundOrder(t, db, establishmentID, nearA, slotStart)
	// Disjoint window: cannot share a round with a.
	late := seedRoundOrder(t, db, establishmentID, nearA, slotStart.Add(2*time.Hour))

	_, err := svc.Commit(ctx, CommitInput{
		EstablishmentID: establishmentID,
		OrderIDs:        []uuid.UUID{a.ID, late.ID},
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCommitRejectsAlreadyRoundedOrder(t *testing.T) {
	db := setupRoundsTestDB(t)
	svc := newRoundsService(t, db)
	ctx := context.Background()

	establishmentID := uuid.New()
	slotStart := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	a := seedRoundOrder(t, db, establishmentID, nearA, slotStart)

	_, err := svc.Commit(ctx, CommitInput{EstablishmentID: establishmentID, OrderIDs: []uuid.UUID{a.ID}})
	require.NoError(t, err)

	_, err = svc.Commit(ctx, CommitInput{EstablishmentID: establishmentID, OrderIDs: []uuid.UUID{a.ID}})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestCancelReleasesOrders(t *testing.T) {
	db := setupRoundsTestDB(t)
	svc := newRoundsService(t, db)
	ctx := context.Background()

	establishmentID := uuid.New()
	slotStart := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	a := seedRoundOrder(t, db, establishmentID, nearA, slotStart)

	round, err := svc.Commit(ctx, CommitInput{EstablishmentID: establishmentID, OrderIDs: []uuid.UUID{a.ID}})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, round.ID))

	reloaded, err := orders.NewRepository(db).FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.RoundID)

	stored, err := NewRepository(db).FindByID(ctx, round.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RoundStatusCanceled, stored.Status)

	err = svc.Cancel(ctx, round.ID)
	require.Error(t, err)
}

type stubTravel struct {
	minutes float64
	err     error
}

func (s stubTravel) TravelTime(context.Context, types.GeographyPoint, types.GeographyPoint) (maps.TravelEstimate, error) {
	if s.err != nil {
		return maps.TravelEstimate{}, s.err
	}
	return maps.TravelEstimate{Minutes: s.minutes}, nil
}

func TestCommitUsesRoutingClientForStopHops(t *testing.T) {
	db := setupRoundsTestDB(t)
	ctx := context.Background()

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Orders:   orders.NewRepository(db),
		Tx:       gormTxRunner{db: db},
		Prep:     stubPrep{},
		Schedule: stubSchedule{},
		Travel:   stubTravel{minutes: 4.5},
		Clustering: config.ClusteringConfig{
			MaxDistanceKM:   1.5,
			MaxHopMinutes:   3,
			AssumedSpeedKMH: 30,
			PerStopMinutes:  2,
		},
	})
	require.NoError(t, err)

	establishmentID := uuid.New()
	slotStart := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	a := seedRoundOrder(t, db, establishmentID, nearA, slotStart)
	b := seedRoundOrder(t, db, establishmentID, nearB, slotStart)

	round, err := svc.Commit(ctx, CommitInput{EstablishmentID: establishmentID, OrderIDs: []uuid.UUID{a.ID, b.ID}})
	require.NoError(t, err)
	require.Len(t, round.Stops, 2)
	assert.Zero(t, round.Stops[0].TravelMinutesFromPrev)
	assert.InDelta(t, 4.5, round.Stops[1].TravelMinutesFromPrev, 0.001)
}

func TestCommitFallsBackToHaversineWhenRoutingFails(t *testing.T) {
	db := setupRoundsTestDB(t)
	ctx := context.Background()

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Orders:   orders.NewRepository(db),
		Tx:       gormTxRunner{db: db},
		Prep:     stubPrep{},
		Schedule: stubSchedule{},
		Travel:   stubTravel{err: pkgerrors.New(pkgerrors.CodeDependency, "routes unavailable")},
		Clustering: config.ClusteringConfig{
			MaxDistanceKM:   1.5,
			MaxHopMinutes:   3,
			AssumedSpeedKMH: 30,
			PerStopMinutes:  2,
		},
	})
	require.NoError(t, err)

	establishmentID := uuid.New()
	slotStart := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	a := seedRoundOrder(t, db, establishmentID, nearA, slotStart)
	b := seedRoundOrder(t, db, establishmentID, nearB, slotStart)

	round, err := svc.Commit(ctx, CommitInput{EstablishmentID: establishmentID, OrderIDs: []uuid.UUID{a.ID, b.ID}})
	require.NoError(t, err)
	require.Len(t, round.Stops, 2)
	expected := clustering.HopMinutes(nearA, nearB, 30)
	assert.InDelta(t, expected, round.Stops[1].TravelMinutesFromPrev, 0.001)
}
