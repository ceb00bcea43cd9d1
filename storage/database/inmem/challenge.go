package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
)

type challengeRepository struct {
	db          *challengeTable
	enrollments *enrollmentTable
}

var _ challenge.Repository = (*challengeRepository)(nil) // interface compliance check

func NewChallengeRepository(db *DB) *challengeRepository {
	return &challengeRepository{db: db.challenge, enrollments: db.enrollment}
}

func (repo *challengeRepository) CreateChallenge(_ context.Context, chal challenge.Challenge) (challenge.Challenge, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	chal.ID = newID()
	repo.db.t[chal.ID] = &chal
	return chal, nil
}

func (repo *challengeRepository) GetChallenge(_ context.Context, id string) (challenge.Challenge, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if chal, ok := repo.db.t[id]; ok {
		return *chal, nil
	}
	return challenge.Challenge{}, challenge.ErrNotFound
}

func (repo *challengeRepository) QueryChallenges(_ context.Context, filter challenge.QueryFilter) ([]challenge.Challenge, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	challenges := make([]challenge.Challenge, 0, len(repo.db.t))
	for _, chal := range repo.db.t {
		if !filter.ActiveAt.IsZero() && !chal.IsActive(filter.ActiveAt) {
			continue
		}
		challenges = append(challenges, *chal)
	}
	sort.Slice(challenges, func(i, j int) bool {
		a, b := challenges[i], challenges[j]
		for _, ord := range filter.Ordering {
			if c := compareChallenges(a, b, ord.Field); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		// newest start first
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.After(b.StartDate)
		}
		return a.ID < b.ID
	})
	return challenges, nil
}

func (repo *challengeRepository) UpdateChallenge(_ context.Context, chal challenge.Challenge) (challenge.Challenge, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.t[chal.ID]
	if !ok {
		return challenge.Challenge{}, challenge.ErrNotFound
	}
	chal.CreatedAt = orig.CreatedAt
	repo.db.t[chal.ID] = &chal
	return chal, nil
}

func (repo *challengeRepository) DeleteChallenge(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return challenge.ErrNotFound
	}
	delete(repo.db.t, id)

	repo.enrollments.mutex.Lock()
	defer repo.enrollments.mutex.Unlock()
	for key := range repo.enrollments.t {
		if key.challengeID == id {
			delete(repo.enrollments.t, key)
		}
	}
	return nil
}

// compareChallenges compares a and b on field; unknown fields compare equal.
func compareChallenges(a, b challenge.Challenge, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "start_date":
		return compareTimes(a.StartDate, b.StartDate)
	case "end_date":
		return compareTimes(a.EndDate, b.EndDate)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
