package consumption

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

var (
	// errors
	ErrNotFound        = core.NewNotFoundError("consumption record not found")
	ErrDuplicatePeriod = core.NewConflictError("a record already exists for this billing period")
	ErrInvalidResource = core.NewValidationError(errors.New("resource must be one of electricity, water or waste"))
	ErrNegative        = core.NewValidationError(errors.New("quantities cannot be negative"))
)

type (
	Repository interface {
		// CreateRecord fails with ErrDuplicatePeriod on a second electricity/water record for a period.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
		QueryRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
		DeleteRecord(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

// Create stores a validated reading of resource res for userID.
func (svc *Service) Create(ctx context.Context, userID string, res Resource, nr NewRecord) (Record, error) {
	if !res.Valid() {
		return Record{}, ErrInvalidResource
	}
	period, ok := ParsePeriod(nr.Period)
	if !ok {
		return Record{}, core.NewValidationError(
			errors.New(periodText), core.FieldError{Field: "period", Error: periodText},
		)
	}
	rec := Record{
		UserID:    userID,
		Resource:  res,
		Period:    NormalizePeriod(res, period),
		CreatedAt: svc.nowFunc().UTC(),
	}
	if res == Waste {
		rec.PlasticBags, rec.PaperBags, rec.FoodWasteBags = nr.PlasticBags, nr.PaperBags, nr.FoodWasteBags
	} else {
		rec.Units = nr.Units
	}
	if rec.HasNegativeQuantity() {
		return Record{}, ErrNegative
	}
	return svc.repo.CreateRecord(ctx, rec)
}

// Query returns the records of userID, oldest period first. All resources when res is empty.
func (svc *Service) Query(ctx context.Context, userID string, res Resource) ([]Record, error) {
	if res != "" && !res.Valid() {
		return nil, ErrInvalidResource
	}
	return svc.repo.QueryRecords(ctx, QueryFilter{UserID: userID, Resource: res})
}

// Total is the measured total of resource res for userID, as of now.
func (svc *Service) Total(ctx context.Context, userID string, res Resource) (float64, int, error) {
	records, err := svc.Query(ctx, userID, res)
	if err != nil {
		return 0, 0, errors.Wrap(err, "querying records")
	}
	return Total(res, records), len(records), nil
}

// Delete removes a record owned by userID. Records of other users are reported as not found.
func (svc *Service) Delete(ctx context.Context, userID string, res Resource, id string) error {
	rec, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != userID || rec.Resource != res {
		return ErrNotFound
	}
	return svc.repo.DeleteRecord(ctx, id)
}
