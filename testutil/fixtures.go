package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		City:      "Colombo",
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateChallenge creates a challenge running from start to end.
func CreateChallenge(
	t *testing.T,
	repo challenge.Repository,
	title string,
	goal float64,
	unit string,
	start, end time.Time,
) challenge.Challenge {
	t.Helper()

	now := time.Now().UTC()
	chal, err := repo.CreateChallenge(context.Background(), challenge.Challenge{
		Title:     title,
		Goal:      goal,
		Unit:      unit,
		Resource:  challenge.InferResource(unit),
		StartDate: start.UTC(),
		EndDate:   end.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createChallenge() failed: %v", err)
	}
	return chal
}

// CreateActiveChallenge creates a challenge that started a day ago and ends in a week.
func CreateActiveChallenge(t *testing.T, repo challenge.Repository, title string, goal float64, unit string) challenge.Challenge {
	now := time.Now().UTC()
	return CreateChallenge(t, repo, title, goal, unit, now.Add(-24*time.Hour), now.Add(7*24*time.Hour))
}

// CreateRecord logs a reading. Units for electricity and water, food waste bags for waste.
func CreateRecord(
	t *testing.T,
	repo consumption.Repository,
	userID string,
	res consumption.Resource,
	period time.Time,
	quantity float64,
) consumption.Record {
	t.Helper()

	rec := consumption.Record{
		UserID:    userID,
		Resource:  res,
		Period:    consumption.NormalizePeriod(res, period),
		CreatedAt: time.Now().UTC(),
	}
	if res == consumption.Waste {
		rec.FoodWasteBags = quantity
	} else {
		rec.Units = quantity
	}
	rec, err := repo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("createRecord() failed: %v", err)
	}
	return rec
}

// Month returns the first instant of the given month, UTC.
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
