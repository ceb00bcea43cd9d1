package inmemdb

import (
	"context"
	"sort"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := enrollmentKey{userID: enr.UserID, challengeID: enr.ChallengeID}
	if _, ok := repo.db.t[key]; ok {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyJoined
	}
	enr.ID = newID()
	repo.db.t[key] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, challengeID, userID string) (enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.t[enrollmentKey{userID: userID, challengeID: challengeID}]; ok {
		return *enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrs := make([]enrollment.Enrollment, 0)
	for _, enr := range repo.db.t {
		if filter.UserID != "" && enr.UserID != filter.UserID {
			continue
		}
		if filter.ChallengeID != "" && enr.ChallengeID != filter.ChallengeID {
			continue
		}
		if filter.Status != "" && enr.Status != filter.Status {
			continue
		}
		enrs = append(enrs, *enr)
	}
	sort.Slice(enrs, func(i, j int) bool {
		if !enrs[i].JoinedDate.Equal(enrs[j].JoinedDate) {
			return enrs[i].JoinedDate.Before(enrs[j].JoinedDate)
		}
		return enrs[i].ID < enrs[j].ID
	})
	return enrs, nil
}

func (repo *enrollmentRepository) FinalizeEnrollment(_ context.Context, fin enrollment.Finalization) (enrollment.Enrollment, error) {
	if err := enrollment.Transition(fin.From, fin.To); err != nil {
		return enrollment.Enrollment{}, err
	}

	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr, ok := repo.db.t[enrollmentKey{userID: fin.UserID, challengeID: fin.ChallengeID}]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrEnrollmentNotFound
	}
	if enr.Status != fin.From {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyFinalized
	}

	updated := *enr
	updated.Status = fin.To
	if fin.EndValue != nil {
		updated.EndValue = *fin.EndValue
	}
	updated.PointsEarned += fin.AddPoints
	completed := fin.CompletionDate.UTC()
	updated.CompletionDate = &completed
	*enr = updated
	return updated, nil
}
