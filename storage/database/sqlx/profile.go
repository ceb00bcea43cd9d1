package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/profile"
)

const profileColumns = `user_id, water_source, energy_source, separates_plastic, separates_paper, separates_food,
	plastic_bag_kg, paper_bag_kg, food_bag_kg, updated_at`

type profileRow struct {
	UserID           string    `db:"user_id"`
	WaterSource      string    `db:"water_source"`
	EnergySource     string    `db:"energy_source"`
	SeparatesPlastic bool      `db:"separates_plastic"`
	SeparatesPaper   bool      `db:"separates_paper"`
	SeparatesFood    bool      `db:"separates_food"`
	PlasticBagKg     float64   `db:"plastic_bag_kg"`
	PaperBagKg       float64   `db:"paper_bag_kg"`
	FoodBagKg        float64   `db:"food_bag_kg"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type profileRepository struct {
	exec core.DBExecutor
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(exec core.DBExecutor) *profileRepository {
	return &profileRepository{exec: exec}
}

func (repo profileRepository) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	if !isUUID(userID) {
		return profile.Profile{}, profile.ErrNotFound
	}
	var row profileRow
	q := repo.exec.Rebind(`SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, userID); err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound, "getting profile")
	}
	return profile.Profile{
		UserID:           row.UserID,
		WaterSource:      row.WaterSource,
		EnergySource:     row.EnergySource,
		SeparatesPlastic: row.SeparatesPlastic,
		SeparatesPaper:   row.SeparatesPaper,
		SeparatesFood:    row.SeparatesFood,
		PlasticBagKg:     row.PlasticBagKg,
		PaperBagKg:       row.PaperBagKg,
		FoodBagKg:        row.FoodBagKg,
		UpdatedAt:        row.UpdatedAt.UTC(),
	}, nil
}

func (repo profileRepository) SaveProfile(ctx context.Context, prof profile.Profile) (profile.Profile, error) {
	q := repo.exec.Rebind(`INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			water_source = excluded.water_source,
			energy_source = excluded.energy_source,
			separates_plastic = excluded.separates_plastic,
			separates_paper = excluded.separates_paper,
			separates_food = excluded.separates_food,
			plastic_bag_kg = excluded.plastic_bag_kg,
			paper_bag_kg = excluded.paper_bag_kg,
			food_bag_kg = excluded.food_bag_kg,
			updated_at = excluded.updated_at`)
	_, err := repo.exec.ExecContext(ctx, q,
		prof.UserID, prof.WaterSource, prof.EnergySource,
		prof.SeparatesPlastic, prof.SeparatesPaper, prof.SeparatesFood,
		prof.PlasticBagKg, prof.PaperBagKg, prof.FoodBagKg, prof.UpdatedAt.UTC(),
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "saving profile")
	}
	return repo.GetProfile(ctx, prof.UserID)
}
