package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

const consumptionColumns = "id, user_id, resource, period, units, plastic_bags, paper_bags, food_waste_bags, created_at"

type consumptionRow struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Resource      string    `db:"resource"`
	Period        time.Time `db:"period"`
	Units         float64   `db:"units"`
	PlasticBags   float64   `db:"plastic_bags"`
	PaperBags     float64   `db:"paper_bags"`
	FoodWasteBags float64   `db:"food_waste_bags"`
	CreatedAt     time.Time `db:"created_at"`
}

func (row consumptionRow) record() consumption.Record {
	return consumption.Record{
		ID:            row.ID,
		UserID:        row.UserID,
		Resource:      consumption.Resource(row.Resource),
		Period:        row.Period.UTC(),
		Units:         row.Units,
		PlasticBags:   row.PlasticBags,
		PaperBags:     row.PaperBags,
		FoodWasteBags: row.FoodWasteBags,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

type consumptionRepository struct {
	exec core.DBExecutor
}

var _ consumption.Repository = (*consumptionRepository)(nil) // interface compliance check

func NewConsumptionRepository(exec core.DBExecutor) *consumptionRepository {
	return &consumptionRepository{exec: exec}
}

func (repo consumptionRepository) CreateRecord(ctx context.Context, rec consumption.Record) (consumption.Record, error) {
	rec.ID = uuid.New().String()
	rec.Period = rec.Period.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()

	q := repo.exec.Rebind(`INSERT INTO consumption_records (` + consumptionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.exec.ExecContext(ctx, q,
		rec.ID, rec.UserID, string(rec.Resource), rec.Period,
		rec.Units, rec.PlasticBags, rec.PaperBags, rec.FoodWasteBags, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return consumption.Record{}, consumption.ErrDuplicatePeriod
		}
		return consumption.Record{}, errors.Wrap(err, "inserting consumption record")
	}
	return rec, nil
}

func (repo consumptionRepository) GetRecord(ctx context.Context, id string) (consumption.Record, error) {
	if !isUUID(id) {
		return consumption.Record{}, consumption.ErrNotFound
	}
	var row consumptionRow
	q := repo.exec.Rebind(`SELECT ` + consumptionColumns + ` FROM consumption_records WHERE id = ?`)
	if err := repo.exec.GetContext(ctx, &row, q, id); err != nil {
		return consumption.Record{}, trapNoRowsErr(err, consumption.ErrNotFound, "getting consumption record")
	}
	return row.record(), nil
}

func (repo consumptionRepository) QueryRecords(ctx context.Context, filter consumption.QueryFilter) ([]consumption.Record, error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = ?", filter.UserID)
	}
	if filter.Resource != "" {
		w.add("resource = ?", string(filter.Resource))
	}
	if !filter.From.IsZero() {
		w.add("period >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		w.add("period <= ?", filter.To.UTC())
	}

	var rows []consumptionRow
	q := repo.exec.Rebind(`SELECT ` + consumptionColumns + ` FROM consumption_records` + w.String() +
		` ORDER BY period, created_at, id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying consumption records")
	}
	records := make([]consumption.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (repo consumptionRepository) DeleteRecord(ctx context.Context, id string) error {
	if !isUUID(id) {
		return consumption.ErrNotFound
	}
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind(`DELETE FROM consumption_records WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting consumption record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return consumption.ErrNotFound
	}
	return nil
}
