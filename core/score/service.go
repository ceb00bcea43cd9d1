package score

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

type (
	// RecordQuerier is the read side of the consumption store.
	RecordQuerier interface {
		QueryRecords(ctx context.Context, filter consumption.QueryFilter) ([]consumption.Record, error)
	}

	Service struct {
		records RecordQuerier
		weights Weights
	}
)

func NewService(records RecordQuerier, weights Weights) *Service {
	return &Service{records: records, weights: weights}
}

func (svc *Service) Weights() Weights { return svc.weights }

// ComputeDashboard loads every record of userID and computes the dashboard.
func (svc *Service) ComputeDashboard(ctx context.Context, userID string) (Dashboard, error) {
	records, err := svc.records.QueryRecords(ctx, consumption.QueryFilter{UserID: userID})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying consumption records")
	}
	return Compute(svc.weights, records)
}
