package clustering

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

func testOptions() Options {
	return Options{
		MaxDistanceKM:   1.5,
		MaxHopMinutes:   3,
		AssumedSpeedKMH: 30,
		PerStopMinutes:  2,
		PrepMinutes:     12,
		BufferMinutes:   5,
	}
}

// Points around central Lyon; roughly 0.5 km apart at this latitude.
var (
	placeA = types.GeographyPoint{Lat: 45.7640, Lng: 4.8357}
	placeB = types.GeographyPoint{Lat: 45.7685, Lng: 4.8357}
	farOff = types.GeographyPoint{Lat: 45.8200, Lng: 4.9500}
)

func member(dest types.GeographyPoint, start time.Time, windowMinutes, travel int) Member {
	return Member{
		OrderID:       uuid.New(),
		Destination:   dest,
		WindowStart:   start,
		WindowEnd:     start.Add(time.Duration(windowMinutes) * time.Minute),
		TravelMinutes: travel,
	}
}

func TestClusterOrdersGroupsOverlappingNeighbors(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a := member(placeA, start, 30, 10)
	b := member(placeB, start, 30, 11)

	clusters := ClusterOrders([]Member{a, b}, testOptions())
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 2)
}

func TestClusterOrdersNeverMixesDisjointWindows(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a := member(placeA, start, 30, 10)
	// Same spot, but the window opens after a's closes.
	b := member(placeA, start.Add(45*time.Minute), 30, 10)

	clusters := ClusterOrders([]Member{a, b}, testOptions())
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0].Members, 1)
	assert.Len(t, clusters[1].Members, 1)
}

func TestClusterOrdersDistanceCap(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a := member(placeA, start, 30, 10)
	b := member(farOff, start, 30, 10)

	clusters := ClusterOrders([]Member{a, b}, testOptions())
	assert.Len(t, clusters, 2)
}

func TestClusterOrdersWindowIntersection(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a := member(placeA, base, 30, 10)
	b := member(placeB, base.Add(10*time.Minute), 30, 11)

	clusters := ClusterOrders([]Member{a, b}, testOptions())
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	assert.True(t, cluster.WindowStart.Equal(base.Add(10*time.Minute)))
	assert.True(t, cluster.WindowEnd.Equal(base.Add(30*time.Minute)))
}

func TestClusterOrdersTimingAnnotations(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	solo := member(placeA, start, 30, 10)

	clusters := ClusterOrders([]Member{solo}, testOptions())
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	// Departure backs off the first stop's travel; launch backs off prep
	// plus buffer on top of that.
	assert.True(t, cluster.DepartureAt.Equal(start.Add(-10*time.Minute)))
	assert.True(t, cluster.KitchenLaunchAt.Equal(start.Add(-27*time.Minute)))
	// One stop: establishment-to-door travel plus the per-stop handoff.
	assert.InDelta(t, 12.0, cluster.TotalTravelMinutes, 0.001)
	assert.Equal(t, placeA.Lat, cluster.Centroid.Lat)
	assert.Equal(t, placeA.Lng, cluster.Centroid.Lng)
}

func TestClusterOrdersCentroidAndTravelAccumulation(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a := member(placeA, start, 30, 10)
	b := member(placeB, start, 30, 11)

	clusters := ClusterOrders([]Member{a, b}, testOptions())
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	assert.InDelta(t, (placeA.Lat+placeB.Lat)/2, cluster.Centroid.Lat, 1e-9)
	assert.InDelta(t, (placeA.Lng+placeB.Lng)/2, cluster.Centroid.Lng, 1e-9)

	hop := HopMinutes(placeA, placeB, 30)
	assert.InDelta(t, 10+hop+4, cluster.TotalTravelMinutes, 0.001)
}

func TestClusterOrdersDeterministicAcrossInputOrder(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	a := member(placeA, start, 30, 10)
	b := member(placeB, start.Add(5*time.Minute), 30, 11)
	c := member(farOff, start.Add(10*time.Minute), 30, 20)

	forward := ClusterOrders([]Member{a, b, c}, testOptions())
	backward := ClusterOrders([]Member{c, b, a}, testOptions())

	require.Equal(t, len(forward), len(backward))
	for i := range forward {
		require.Equal(t, len(forward[i].Members), len(backward[i].Members))
		for j := range forward[i].Members {
			assert.Equal(t, forward[i].Members[j].OrderID, backward[i].Members[j].OrderID)
		}
	}
}

func TestClusterOrdersRespectsRoundSizeCap(t *testing.T) {
	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	opts := testOptions()
	opts.MaxOrdersPerRound = 2

	members := []Member{
		member(placeA, start, 30, 10),
		member(placeA, start, 30, 10),
		member(placeA, start, 30, 10),
	}

	clusters := ClusterOrders(members, opts)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[0].Members, 2)
	assert.Len(t, clusters[1].Members, 1)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Paris to Lyon is about 392 km as the crow flies.
	paris := types.GeographyPoint{Lat: 48.8566, Lng: 2.3522}
	lyon := types.GeographyPoint{Lat: 45.7640, Lng: 4.8357}

	km := haversineKM(paris, lyon)
	assert.InDelta(t, 392, km, 5)
}
