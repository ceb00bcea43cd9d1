package challenge

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("challenge not found")
)

type (
	Repository interface {
		CreateChallenge(ctx context.Context, chal Challenge) (Challenge, error)
		GetChallenge(ctx context.Context, id string) (Challenge, error)
		QueryChallenges(ctx context.Context, filter QueryFilter) ([]Challenge, error)
		UpdateChallenge(ctx context.Context, chal Challenge) (Challenge, error)
		// DeleteChallenge also removes the challenge's enrollments.
		DeleteChallenge(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Create(ctx context.Context, nc NewChallenge) (Challenge, error) {
	now := svc.nowFunc().UTC()
	chal := Challenge{
		Title:       nc.Title,
		Description: nc.Description,
		Goal:        nc.Goal,
		Unit:        nc.Unit,
		Resource:    nc.resource(),
		StartDate:   nc.StartDate.UTC(),
		EndDate:     nc.EndDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	chal, err := svc.repo.CreateChallenge(ctx, chal)
	if err != nil {
		return Challenge{}, errors.Wrap(err, "creating challenge")
	}
	return chal, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Challenge, error) {
	return svc.repo.GetChallenge(ctx, id)
}

// Query lists challenges; only the currently active ones when activeOnly is set.
func (svc *Service) Query(ctx context.Context, activeOnly bool, ordering ...core.DBOrdering) ([]Challenge, error) {
	filter := QueryFilter{Ordering: ordering}
	if activeOnly {
		filter.ActiveAt = svc.nowFunc().UTC()
	}
	return svc.repo.QueryChallenges(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, nc NewChallenge) (Challenge, error) {
	chal, err := svc.repo.GetChallenge(ctx, id)
	if err != nil {
		return Challenge{}, err
	}
	chal.Title = nc.Title
	chal.Description = nc.Description
	chal.Goal = nc.Goal
	chal.Unit = nc.Unit
	chal.Resource = nc.resource()
	chal.StartDate = nc.StartDate.UTC()
	chal.EndDate = nc.EndDate.UTC()
	chal.UpdatedAt = svc.nowFunc().UTC()
	return svc.repo.UpdateChallenge(ctx, chal)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteChallenge(ctx, id)
}
