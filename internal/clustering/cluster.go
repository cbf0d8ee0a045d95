package clustering

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/pkg/db/models"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

// Member is one delivery order as the clusterer sees it: a destination, a
// booking window and an establishment-to-door travel estimate.
type Member struct {
	OrderID       uuid.UUID            `json:"order_id"`
	Destination   types.GeographyPoint `json:"destination"`
	WindowStart   time.Time            `json:"window_start"`
	WindowEnd     time.Time            `json:"window_end"`
	TravelMinutes int                  `json:"travel_minutes"`
}

// Cluster is an ephemeral grouping of deliveries compatible with a single
// round. Clusters are recomputed from scratch on every call; committing one
// into a persisted round is a separate explicit operation.
type Cluster struct {
	Members            []Member             `json:"members"`
	Centroid           types.GeographyPoint `json:"centroid"`
	TotalTravelMinutes float64              `json:"total_travel_minutes"`
	WindowStart        time.Time            `json:"window_start"`
	WindowEnd          time.Time            `json:"window_end"`
	DepartureAt        time.Time            `json:"departure_at"`
	KitchenLaunchAt    time.Time            `json:"kitchen_launch_at"`
}

// Options tune the grouping heuristics and the timing derivation.
type Options struct {
	MaxDistanceKM     float64
	MaxHopMinutes     float64
	AssumedSpeedKMH   float64
	PerStopMinutes    int
	MaxOrdersPerRound int
	PrepMinutes       int
	BufferMinutes     int
}

// MembersFromOrders converts order rows into clusterer members, dropping any
// order that lacks a destination, travel estimate or booking window.
func MembersFromOrders(rows []models.Order) []Member {
	members := make([]Member, 0, len(rows))
	for _, order := range rows {
		if !order.HasDeliveryGeodata() {
			continue
		}
		members = append(members, Member{
			OrderID:       order.ID,
			Destination:   *order.Destination,
			WindowStart:   *order.SlotStart,
			WindowEnd:     *order.SlotEnd,
			TravelMinutes: *order.TravelMinutes,
		})
	}
	return members
}

// ClusterOrders groups compatible deliveries in a single greedy pass, pure
// over its input snapshot.
//
// Orders are visited by ascending window start so earlier-committed orders
// anchor clusters first; later orders only join when their window overlaps
// every member's, their destination stays within the pairwise distance cap,
// and the hop from the last-admitted stop is short enough. An order with no
// compatible neighbor forms a singleton cluster, which is an expected
// outcome, not an error.
func ClusterOrders(members []Member, opts Options) []Cluster {
	sorted := make([]Member, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].WindowStart.Equal(sorted[j].WindowStart) {
			return sorted[i].WindowStart.Before(sorted[j].WindowStart)
		}
		return sorted[i].OrderID.String() < sorted[j].OrderID.String()
	})

	assigned := make([]bool, len(sorted))
	clusters := []Cluster{}

	for i := range sorted {
		if assigned[i] {
			continue
		}
		group := []Member{sorted[i]}
		assigned[i] = true

		for j := i + 1; j < len(sorted); j++ {
			if assigned[j] {
				continue
			}
			if opts.MaxOrdersPerRound > 0 && len(group) >= opts.MaxOrdersPerRound {
				break
			}
			if admissible(group, sorted[j], opts) {
				group = append(group, sorted[j])
				assigned[j] = true
			}
		}

		clusters = append(clusters, finalize(group, opts))
	}
	return clusters
}

func admissible(group []Member, candidate Member, opts Options) bool {
	for _, member := range group {
		if !overlaps(member, candidate) {
			return false
		}
		if haversineKM(member.Destination, candidate.Destination) > opts.MaxDistanceKM {
			return false
		}
	}
	last := group[len(group)-1]
	return HopMinutes(last.Destination, candidate.Destination, opts.AssumedSpeedKMH) <= opts.MaxHopMinutes
}

func overlaps(a, b Member) bool {
	return b.WindowStart.Before(a.WindowEnd) && a.WindowStart.Before(b.WindowEnd)
}

func finalize(group []Member, opts Options) Cluster {
	cluster := Cluster{
		Members:     group,
		WindowStart: group[0].WindowStart,
		WindowEnd:   group[0].WindowEnd,
	}

	sumLat, sumLng := 0.0, 0.0
	for _, member := range group {
		sumLat += member.Destination.Lat
		sumLng += member.Destination.Lng
		if member.WindowStart.After(cluster.WindowStart) {
			cluster.WindowStart = member.WindowStart
		}
		if member.WindowEnd.Before(cluster.WindowEnd) {
			cluster.WindowEnd = member.WindowEnd
		}
	}
	cluster.Centroid = types.GeographyPoint{
		Lat: sumLat / float64(len(group)),
		Lng: sumLng / float64(len(group)),
	}

	travel := float64(group[0].TravelMinutes)
	for i := 1; i < len(group); i++ {
		travel += HopMinutes(group[i-1].Destination, group[i].Destination, opts.AssumedSpeedKMH)
	}
	travel += float64(opts.PerStopMinutes * len(group))
	cluster.TotalTravelMinutes = travel

	cluster.DepartureAt = cluster.WindowStart.Add(-time.Duration(group[0].TravelMinutes) * time.Minute)
	cluster.KitchenLaunchAt = cluster.DepartureAt.Add(-time.Duration(opts.PrepMinutes+opts.BufferMinutes) * time.Minute)
	return cluster
}
