// Package inmemdb holds mutex-guarded in-memory repositories.
// They enforce the same uniqueness and status rules as the SQL store.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/profile"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

type (
	DB struct {
		user        *userTable
		profile     *profileTable
		consumption *consumptionTable
		challenge   *challengeTable
		enrollment  *enrollmentTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	profileTable struct {
		t     map[string]*profile.Profile
		mutex sync.RWMutex
	}

	consumptionTable struct {
		t     map[string]*consumption.Record
		mutex sync.RWMutex
	}

	challengeTable struct {
		t     map[string]*challenge.Challenge
		mutex sync.RWMutex
	}

	enrollmentTable struct {
		t     map[enrollmentKey]*enrollment.Enrollment
		mutex sync.RWMutex
	}

	enrollmentKey struct {
		userID, challengeID string
	}
)

func Open() *DB {
	return &DB{
		user:        &userTable{t: make(map[string]*user.User)},
		profile:     &profileTable{t: make(map[string]*profile.Profile)},
		consumption: &consumptionTable{t: make(map[string]*consumption.Record)},
		challenge:   &challengeTable{t: make(map[string]*challenge.Challenge)},
		enrollment:  &enrollmentTable{t: make(map[enrollmentKey]*enrollment.Enrollment)},
	}
}

func newID() string { return uuid.New().String() }
