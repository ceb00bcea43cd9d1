// Package profile stores the household sustainability profile of a user.
package profile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
)

var ErrNotFound = core.NewNotFoundError("sustainability profile not found")

type Profile struct {
	UserID           string    `json:"user_id"`
	WaterSource      string    `json:"water_source"`
	EnergySource     string    `json:"energy_source"`
	SeparatesPlastic bool      `json:"separates_plastic"`
	SeparatesPaper   bool      `json:"separates_paper"`
	SeparatesFood    bool      `json:"separates_food"`
	PlasticBagKg     float64   `json:"plastic_bag_kg"`
	PaperBagKg       float64   `json:"paper_bag_kg"`
	FoodBagKg        float64   `json:"food_bag_kg"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpdateProfile defines what information may be provided to save a Profile.
type UpdateProfile struct {
	WaterSource      string  `json:"water_source" validate:"max=50"`
	EnergySource     string  `json:"energy_source" validate:"max=50"`
	SeparatesPlastic bool    `json:"separates_plastic"`
	SeparatesPaper   bool    `json:"separates_paper"`
	SeparatesFood    bool    `json:"separates_food"`
	PlasticBagKg     float64 `json:"plastic_bag_kg" validate:"gte=0"`
	PaperBagKg       float64 `json:"paper_bag_kg" validate:"gte=0"`
	FoodBagKg        float64 `json:"food_bag_kg" validate:"gte=0"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.WaterSource = core.CleanString(up.WaterSource)
	up.EnergySource = core.CleanString(up.EnergySource)
	return validate.Struct(up)
}

type (
	Repository interface {
		GetProfile(ctx context.Context, userID string) (Profile, error)
		// SaveProfile inserts or replaces the profile of prof.UserID.
		SaveProfile(ctx context.Context, prof Profile) (Profile, error)
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

func (svc *Service) Get(ctx context.Context, userID string) (Profile, error) {
	return svc.repo.GetProfile(ctx, userID)
}

func (svc *Service) Save(ctx context.Context, userID string, up UpdateProfile) (Profile, error) {
	return svc.repo.SaveProfile(ctx, Profile{
		UserID:           userID,
		WaterSource:      up.WaterSource,
		EnergySource:     up.EnergySource,
		SeparatesPlastic: up.SeparatesPlastic,
		SeparatesPaper:   up.SeparatesPaper,
		SeparatesFood:    up.SeparatesFood,
		PlasticBagKg:     up.PlasticBagKg,
		PaperBagKg:       up.PaperBagKg,
		FoodBagKg:        up.FoodBagKg,
		UpdatedAt:        svc.nowFunc().UTC(),
	})
}
