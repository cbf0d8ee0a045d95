package preptime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/enums"
)

func sampleOf(base time.Time, minutes int) Sample {
	return Sample{CreatedAt: base, CompletedAt: base.Add(time.Duration(minutes) * time.Minute)}
}

func TestEstimateMeanOfTrailingSamples(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		sampleOf(base, 8),
		sampleOf(base, 10),
		sampleOf(base, 12),
		sampleOf(base, 10),
	}

	if got := Estimate(samples, 7); got != 10 {
		t.Fatalf("expected mean 10, got %d", got)
	}
}

func TestEstimateRoundsMean(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	samples := []Sample{
		sampleOf(base, 10),
		sampleOf(base, 11),
		sampleOf(base, 12),
	}

	if got := Estimate(samples, 0); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}

func TestEstimateQueueFallback(t *testing.T) {
	cases := []struct {
		name  string
		queue int
		want  int
	}{
		{name: "empty kitchen floors at ten", queue: 0, want: 10},
		{name: "short queue still floors", queue: 1, want: 10},
		{name: "three queued orders", queue: 3, want: 15},
		{name: "deep backlog scales linearly", queue: 8, want: 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Estimate(nil, tc.queue); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestEstimateTooFewSamplesUsesFallback(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	samples := []Sample{sampleOf(base, 45), sampleOf(base, 50)}

	if got := Estimate(samples, 2); got != 10 {
		t.Fatalf("expected fallback 10 with only two samples, got %d", got)
	}
}

type stubOrdersReader struct {
	completed []models.Order
	queued    int64

	gotSince    time.Time
	gotStatuses []enums.OrderStatus
}

func (s *stubOrdersReader) FindCompletedSince(_ context.Context, _ uuid.UUID, since time.Time) ([]models.Order, error) {
	s.gotSince = since
	return s.completed, nil
}

func (s *stubOrdersReader) CountByStatus(_ context.Context, _ uuid.UUID, statuses []enums.OrderStatus) (int64, error) {
	s.gotStatuses = statuses
	return s.queued, nil
}

func TestCurrentPrepMinutesUsesTrailingHour(t *testing.T) {
	now := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	created := now.Add(-30 * time.Minute)
	completed := created.Add(12 * time.Minute)

	reader := &stubOrdersReader{
		completed: []models.Order{
			{CreatedAt: created, CompletedAt: &completed},
			{CreatedAt: created, CompletedAt: &completed},
			{CreatedAt: created, CompletedAt: &completed},
		},
	}

	svc, err := NewService(ServiceParams{Orders: reader, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.CurrentPrepMinutes(context.Background(), uuid.New(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("expected 12 minutes, got %d", got)
	}
	if want := now.Add(-time.Hour); !reader.gotSince.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, reader.gotSince)
	}
}

func TestCurrentPrepMinutesIncludeConfirmedWidensQueue(t *testing.T) {
	reader := &stubOrdersReader{queued: 4}

	svc, err := NewService(ServiceParams{Orders: reader})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.CurrentPrepMinutes(context.Background(), uuid.New(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 20 {
		t.Fatalf("expected 20 minutes for queue of four, got %d", got)
	}

	found := false
	for _, status := range reader.gotStatuses {
		if status == enums.OrderStatusConfirmed {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected confirmed status in queue count, got %v", reader.gotStatuses)
	}
}
