package kitchen

import (
	"context"
	"fmt"

	"github.com/jinxed112/fritos-dispatch/pkg/logger"
)

// LaunchJob drives the launch scheduler from the worker loop.
type LaunchJob struct {
	service *Service
	logg    *logger.Logger
}

// NewLaunchJob builds the periodic launch recalculation job.
func NewLaunchJob(service *Service, logg *logger.Logger) (*LaunchJob, error) {
	if service == nil {
		return nil, fmt.Errorf("kitchen service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LaunchJob{service: service, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *LaunchJob) Name() string { return "kitchen-launch" }

// Run executes one recalculation pass across all establishments.
func (j *LaunchJob) Run(ctx context.Context) error {
	result, err := j.service.RecalculateAll(ctx)
	if err != nil {
		return err
	}
	if result.Updated > 0 || result.Launched > 0 {
		ctx = j.logg.WithFields(ctx, map[string]any{
			"updated":  result.Updated,
			"launched": result.Launched,
		})
		j.logg.Info(ctx, "launch schedule advanced")
	}
	return nil
}
