package inmemdb

import (
	"context"
	"sort"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
)

type consumptionRepository struct {
	db *consumptionTable
}

var _ consumption.Repository = (*consumptionRepository)(nil) // interface compliance check

func NewConsumptionRepository(db *DB) *consumptionRepository {
	return &consumptionRepository{db: db.consumption}
}

func (repo *consumptionRepository) CreateRecord(_ context.Context, rec consumption.Record) (consumption.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if rec.Resource.Monthly() {
		for _, r := range repo.db.t {
			if r.UserID == rec.UserID && r.Resource == rec.Resource && r.Period.Equal(rec.Period) {
				return consumption.Record{}, consumption.ErrDuplicatePeriod
			}
		}
	}
	rec.ID = newID()
	repo.db.t[rec.ID] = &rec
	return rec, nil
}

func (repo *consumptionRepository) GetRecord(_ context.Context, id string) (consumption.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.t[id]; ok {
		return *rec, nil
	}
	return consumption.Record{}, consumption.ErrNotFound
}

func (repo *consumptionRepository) QueryRecords(_ context.Context, filter consumption.QueryFilter) ([]consumption.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]consumption.Record, 0)
	for _, rec := range repo.db.t {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.Resource != "" && rec.Resource != filter.Resource {
			continue
		}
		if !filter.From.IsZero() && rec.Period.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.Period.After(filter.To) {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Period.Equal(b.Period) {
			return a.Period.Before(b.Period)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return records, nil
}

func (repo *consumptionRepository) DeleteRecord(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return consumption.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}
