// Package leaderboard ranks users by the points earned across all their challenge enrollments.
package leaderboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

type Entry struct {
	Rank                int    `json:"rank"`
	UserID              string `json:"user_id"`
	Name                string `json:"name"`
	City                string `json:"city"`
	Photo               string `json:"photo"`
	TotalPoints         int    `json:"total_points"`
	ChallengesCompleted int    `json:"challenges_completed"`

	firstJoined time.Time
}

// Rank aggregates enrollments per user and orders them by total points, highest first.
// Ties go to the user who joined a challenge first, then to the lowest user ID.
// Users missing from users are still ranked, with empty display fields.
func Rank(enrollments []enrollment.Enrollment, users map[string]user.User) []Entry {
	byUser := make(map[string]*Entry)
	for _, enr := range enrollments {
		entry, ok := byUser[enr.UserID]
		if !ok {
			entry = &Entry{UserID: enr.UserID, firstJoined: enr.JoinedDate}
			if usr, found := users[enr.UserID]; found {
				entry.Name, entry.City, entry.Photo = usr.Name, usr.City, usr.Photo
			}
			byUser[enr.UserID] = entry
		}
		entry.TotalPoints += enr.PointsEarned
		if enr.Status == enrollment.StatusCompleted {
			entry.ChallengesCompleted++
		}
		if enr.JoinedDate.Before(entry.firstJoined) {
			entry.firstJoined = enr.JoinedDate
		}
	}

	entries := make([]Entry, 0, len(byUser))
	for _, entry := range byUser {
		entries = append(entries, *entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if !a.firstJoined.Equal(b.firstJoined) {
			return a.firstJoined.Before(b.firstJoined)
		}
		return a.UserID < b.UserID
	})
	for idx := range entries {
		entries[idx].Rank = idx + 1
	}
	return entries
}

type (
	EnrollmentQuerier interface {
		QueryAll(ctx context.Context) ([]enrollment.Enrollment, error)
	}

	UserQuerier interface {
		QueryByIDs(ctx context.Context, ids ...string) (map[string]user.User, error)
	}

	Service struct {
		enrollments EnrollmentQuerier
		users       UserQuerier
	}
)

func NewService(enrollments EnrollmentQuerier, users UserQuerier) *Service {
	return &Service{enrollments: enrollments, users: users}
}

// Get recomputes the leaderboard from the current enrollments.
func (svc *Service) Get(ctx context.Context) ([]Entry, error) {
	enrs, err := svc.enrollments.QueryAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	seen := make(map[string]struct{}, len(enrs))
	ids := make([]string, 0, len(enrs))
	for _, enr := range enrs {
		if _, ok := seen[enr.UserID]; !ok {
			seen[enr.UserID] = struct{}{}
			ids = append(ids, enr.UserID)
		}
	}
	users, err := svc.users.QueryByIDs(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return Rank(enrs, users), nil
}
