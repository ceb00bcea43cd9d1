package inmemdb

import (
	"context"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/profile"
)

type profileRepository struct {
	db *profileTable
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) GetProfile(_ context.Context, userID string) (profile.Profile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if prof, ok := repo.db.t[userID]; ok {
		return *prof, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) SaveProfile(_ context.Context, prof profile.Profile) (profile.Profile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.t[prof.UserID] = &prof
	return prof, nil
}
