package challenge

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

// Ordering fields accepted by QueryFilter.
var OrderingFields = []string{"title", "start_date", "end_date", "created_at"}

type Challenge struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Goal        float64              `json:"goal"`
	Unit        string               `json:"unit"`
	Resource    consumption.Resource `json:"resource"`
	StartDate   time.Time            `json:"start_date"` // UTC
	EndDate     time.Time            `json:"end_date"`   // UTC
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// IsActive reports whether now is within [StartDate, EndDate].
func (c Challenge) IsActive(now time.Time) bool {
	return !now.Before(c.StartDate) && !now.After(c.EndDate)
}

func (c Challenge) HasEnded(now time.Time) bool {
	return now.After(c.EndDate)
}

var unitResources = map[string]consumption.Resource{
	"kwh":    consumption.Electricity,
	"m3":     consumption.Water,
	"m³":     consumption.Water,
	"l":      consumption.Water,
	"litre":  consumption.Water,
	"litres": consumption.Water,
	"liter":  consumption.Water,
	"liters": consumption.Water,
	"bag":    consumption.Waste,
	"bags":   consumption.Waste,
	"kg":     consumption.Waste,
}

// InferResource maps a free-text unit to the resource it measures. Returns "" when unknown.
func InferResource(unit string) consumption.Resource {
	return unitResources[strings.ToLower(strings.TrimSpace(unit))]
}

// NewChallenge contains information needed to create or replace a Challenge.
type NewChallenge struct {
	Title       string               `json:"title" validate:"required,notblank,max=200"`
	Description string               `json:"description"`
	Goal        float64              `json:"goal" validate:"gt=0"`
	Unit        string               `json:"unit" validate:"required,notblank,max=20"`
	Resource    consumption.Resource `json:"resource" validate:"omitempty,resource"`
	StartDate   time.Time            `json:"start_date" validate:"required"`
	EndDate     time.Time            `json:"end_date" validate:"required,gtfield=StartDate"`
}

func (nc *NewChallenge) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Unit = core.CleanString(nc.Unit)
	nc.Resource = consumption.Resource(core.CleanString(string(nc.Resource), true /* lower */))
	return validate.Struct(nc)
}

func (nc NewChallenge) resource() consumption.Resource {
	if nc.Resource != "" {
		return nc.Resource
	}
	return InferResource(nc.Unit)
}

type QueryFilter struct {
	ActiveAt time.Time // only challenges active at that time when set
	Ordering []core.DBOrdering
}
