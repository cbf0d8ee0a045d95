package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jinxed112/fritos-dispatch/internal/clustering"
	"github.com/jinxed112/fritos-dispatch/pkg/types"
)

type testClusterLister struct {
	listFn func(ctx context.Context, establishmentID uuid.UUID) ([]clustering.Cluster, error)
}

func (s *testClusterLister) ListClusters(ctx context.Context, establishmentID uuid.UUID) ([]clustering.Cluster, error) {
	if s.listFn != nil {
		return s.listFn(ctx, establishmentID)
	}
	return nil, nil
}

func TestClustersListSuccess(t *testing.T) {
	establishmentID := uuid.New()
	window := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	svc := &testClusterLister{
		listFn: func(ctx context.Context, eid uuid.UUID) ([]clustering.Cluster, error) {
			if eid != establishmentID {
				t.Fatalf("unexpected establishment %s", eid)
			}
			return []clustering.Cluster{{
				Members:     []clustering.Member{{OrderID: uuid.New(), Destination: types.GeographyPoint{Lat: 45.76, Lng: 4.84}}},
				WindowStart: window,
				WindowEnd:   window.Add(15 * time.Minute),
			}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/delivery-clusters", nil)
	req = withURLParams(req, map[string]string{"establishmentID": establishmentID.String()})

	resp := httptest.NewRecorder()
	ClustersList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data []clustering.Cluster `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data) != 1 || len(envelope.Data[0].Members) != 1 {
		t.Fatalf("unexpected payload %s", resp.Body.String())
	}
}

func TestClustersListEmpty(t *testing.T) {
	svc := &testClusterLister{
		listFn: func(ctx context.Context, eid uuid.UUID) ([]clustering.Cluster, error) {
			return []clustering.Cluster{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/delivery-clusters", nil)
	req = withURLParams(req, map[string]string{"establishmentID": uuid.NewString()})

	resp := httptest.NewRecorder()
	ClustersList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
