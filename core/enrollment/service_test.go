package enrollment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
	emailsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/email"
	inmemdb "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database/inmem"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/testutil"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixture struct {
	svc         *enrollment.Service
	mail        *emailsvc.ConsoleServiceMock
	users       user.Repository
	records     consumption.Repository
	challenges  challenge.Repository
	enrollments enrollment.Repository
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	f := fixture{
		mail:        emailsvc.NewConsoleServiceMock(core.NewTestConfig(), nopLogger{}),
		users:       inmemdb.NewUserRepository(db),
		records:     inmemdb.NewConsumptionRepository(db),
		challenges:  inmemdb.NewChallengeRepository(db),
		enrollments: inmemdb.NewEnrollmentRepository(db),
	}
	f.svc = enrollment.NewService(f.enrollments, f.challenges, f.records, f.users, f.mail, nopLogger{})
	return f
}

func (f fixture) user(t *testing.T, email string) user.User {
	return testutil.CreateUser(t, f.users, "Ama", email, "", user.UserRoles, true)
}

func TestService_Join(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	usr := f.user(t, "ama@ecoplus.lk")
	testutil.CreateRecord(t, f.records, usr.ID, consumption.Electricity, testutil.Month(2024, 1), 120)
	testutil.CreateRecord(t, f.records, usr.ID, consumption.Electricity, testutil.Month(2024, 2), 80)
	testutil.CreateRecord(t, f.records, usr.ID, consumption.Water, testutil.Month(2024, 2), 30)

	active := testutil.CreateActiveChallenge(t, f.challenges, "Cut 50 kWh", 50, "kWh")
	water := testutil.CreateActiveChallenge(t, f.challenges, "Save water", 10, "litres")
	waste := testutil.CreateActiveChallenge(t, f.challenges, "Fewer bags", 3, "bags")
	future := testutil.CreateChallenge(t, f.challenges, "Later", 1, "kWh", now.Add(24*time.Hour), now.Add(48*time.Hour))
	past := testutil.CreateChallenge(t, f.challenges, "Earlier", 1, "kWh", now.Add(-48*time.Hour), now.Add(-24*time.Hour))

	t.Run("start value is the current total", func(t *testing.T) {
		enr, err := f.svc.Join(ctx, usr.ID, active.ID)
		require.NoError(t, err)
		assert.Equal(t, enrollment.StatusJoined, enr.Status)
		assert.Equal(t, 200.0, enr.StartValue)
		assert.Zero(t, enr.PointsEarned)
		assert.Nil(t, enr.CompletionDate)
		assert.Zero(t, enr.EndValue, "end value defaults to 0 until awarded")

		enr, err = f.svc.Join(ctx, usr.ID, water.ID)
		require.NoError(t, err)
		assert.Equal(t, 30.0, enr.StartValue)
	})

	t.Run("already joined", func(t *testing.T) {
		_, err := f.svc.Join(ctx, usr.ID, active.ID)
		assert.ErrorIs(t, err, enrollment.ErrAlreadyJoined)
		_, ok := errors.Cause(err).(*core.ConflictError)
		assert.True(t, ok)

		enrs, err := f.svc.QueryByChallenge(ctx, active.ID)
		require.NoError(t, err)
		assert.Len(t, enrs, 1)
	})

	tests := []struct {
		name        string
		challengeID string
		wantErr     error
	}{
		{"not found", "missing", enrollment.ErrChallengeNotFound},
		{"not started", future.ID, enrollment.ErrChallengeNotStarted},
		{"expired", past.ID, enrollment.ErrChallengeExpired},
		{"no baseline", waste.ID, enrollment.ErrNoBaselineData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Join(ctx, usr.ID, tt.challengeID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("unknown unit has no baseline", func(t *testing.T) {
		odd := testutil.CreateActiveChallenge(t, f.challenges, "Walk more", 10, "km")
		_, err := f.svc.Join(ctx, usr.ID, odd.ID)
		assert.ErrorIs(t, err, enrollment.ErrNoBaselineData)
	})
}

func TestService_Join_window(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	usr := f.user(t, "ama@ecoplus.lk")
	testutil.CreateRecord(t, f.records, usr.ID, consumption.Electricity, testutil.Month(2024, 2), 10)
	chal := testutil.CreateChallenge(t, f.challenges, "March", 5, "kWh", start, end)

	// bounds are inclusive
	f.svc.SetNowFunc(func() time.Time { return start })
	_, err := f.svc.Join(ctx, usr.ID, chal.ID)
	require.NoError(t, err)

	other := f.user(t, "bimal@ecoplus.lk")
	testutil.CreateRecord(t, f.records, other.ID, consumption.Electricity, testutil.Month(2024, 2), 10)
	f.svc.SetNowFunc(func() time.Time { return end })
	_, err = f.svc.Join(ctx, other.ID, chal.ID)
	require.NoError(t, err)

	late := f.user(t, "chathu@ecoplus.lk")
	testutil.CreateRecord(t, f.records, late.ID, consumption.Electricity, testutil.Month(2024, 2), 10)
	f.svc.SetNowFunc(func() time.Time { return end.Add(time.Second) })
	_, err = f.svc.Join(ctx, late.ID, chal.ID)
	assert.ErrorIs(t, err, enrollment.ErrChallengeExpired)
}

func TestService_Award(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	usr := f.user(t, "ama@ecoplus.lk")
	testutil.CreateRecord(t, f.records, usr.ID, consumption.Electricity, testutil.Month(2024, 1), 200)
	chal := testutil.CreateActiveChallenge(t, f.challenges, "Cut 50 kWh", 50, "kWh")

	_, err := f.svc.Join(ctx, usr.ID, chal.ID)
	require.NoError(t, err)

	t.Run("invalid points", func(t *testing.T) {
		for _, points := range []int{0, -5} {
			_, err := f.svc.Award(ctx, chal.ID, usr.ID, points)
			assert.ErrorIs(t, err, enrollment.ErrInvalidPoints)
		}
	})

	t.Run("not enrolled", func(t *testing.T) {
		other := f.user(t, "bimal@ecoplus.lk")
		_, err := f.svc.Award(ctx, chal.ID, other.ID, 10)
		assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)
	})

	t.Run("completes the enrollment", func(t *testing.T) {
		testutil.CreateRecord(t, f.records, usr.ID, consumption.Electricity, testutil.Month(2024, 2), 40)

		enr, err := f.svc.Award(ctx, chal.ID, usr.ID, 40)
		require.NoError(t, err)
		assert.Equal(t, enrollment.StatusCompleted, enr.Status)
		assert.Equal(t, 40, enr.PointsEarned)
		assert.Equal(t, 200.0, enr.StartValue)
		assert.Equal(t, 240.0, enr.EndValue)
		require.NotNil(t, enr.CompletionDate)

		sent := f.mail.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "ama@ecoplus.lk", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Cut 50 kWh")
		assert.Contains(t, sent[0].TextContent, "earned 40 points")
	})

	t.Run("already finalized", func(t *testing.T) {
		_, err := f.svc.Award(ctx, chal.ID, usr.ID, 10)
		assert.ErrorIs(t, err, enrollment.ErrAlreadyFinalized)
		_, ok := errors.Cause(err).(*core.StateError)
		assert.True(t, ok)

		enrs, err := f.svc.QueryByUser(ctx, usr.ID)
		require.NoError(t, err)
		require.Len(t, enrs, 1)
		assert.Equal(t, 40, enrs[0].PointsEarned)
		assert.Len(t, f.mail.SentMessages(), 1)
	})

	t.Run("withdraw after award", func(t *testing.T) {
		_, err := f.svc.Withdraw(ctx, usr.ID, chal.ID)
		assert.ErrorIs(t, err, enrollment.ErrAlreadyFinalized)
	})
}

func TestService_Withdraw(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	usr := f.user(t, "ama@ecoplus.lk")
	testutil.CreateRecord(t, f.records, usr.ID, consumption.Water, testutil.Month(2024, 1), 15)
	chal := testutil.CreateActiveChallenge(t, f.challenges, "Save water", 5, "m³")

	_, err := f.svc.Withdraw(ctx, usr.ID, chal.ID)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)

	_, err = f.svc.Join(ctx, usr.ID, chal.ID)
	require.NoError(t, err)

	enr, err := f.svc.Withdraw(ctx, usr.ID, chal.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusWithdrawn, enr.Status)
	assert.Zero(t, enr.PointsEarned)
	assert.Zero(t, enr.EndValue, "end value untouched")
	assert.NotNil(t, enr.CompletionDate)

	_, err = f.svc.Award(ctx, chal.ID, usr.ID, 10)
	assert.ErrorIs(t, err, enrollment.ErrAlreadyFinalized)

	// cannot re-join
	_, err = f.svc.Join(ctx, usr.ID, chal.ID)
	assert.ErrorIs(t, err, enrollment.ErrAlreadyJoined)
}

func TestService_ExpireStale(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	chal := testutil.CreateChallenge(t, f.challenges, "March", 5, "kWh", start, end)
	ongoing := testutil.CreateChallenge(t, f.challenges, "Spring", 5, "kWh", start, end.AddDate(0, 2, 0))

	var users []user.User
	for _, email := range []string{"a@ecoplus.lk", "b@ecoplus.lk", "c@ecoplus.lk"} {
		usr := f.user(t, email)
		testutil.CreateRecord(t, f.records, usr.ID, consumption.Electricity, testutil.Month(2024, 2), 10)
		users = append(users, usr)
	}

	f.svc.SetNowFunc(func() time.Time { return start.Add(time.Hour) })
	for _, usr := range users {
		_, err := f.svc.Join(ctx, usr.ID, chal.ID)
		require.NoError(t, err)
	}
	_, err := f.svc.Join(ctx, users[0].ID, ongoing.ID)
	require.NoError(t, err)
	_, err = f.svc.Award(ctx, chal.ID, users[0].ID, 10)
	require.NoError(t, err)

	// nothing to expire while running
	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.svc.SetNowFunc(func() time.Time { return end.Add(24 * time.Hour) })
	n, err = f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	enrs, err := f.svc.QueryByChallenge(ctx, chal.ID)
	require.NoError(t, err)
	statuses := map[string]enrollment.Status{}
	for _, enr := range enrs {
		statuses[enr.UserID] = enr.Status
		if enr.Status == enrollment.StatusFailed {
			assert.Zero(t, enr.EndValue, "expiry leaves the end value alone")
		}
	}
	assert.Equal(t, enrollment.StatusCompleted, statuses[users[0].ID])
	assert.Equal(t, enrollment.StatusFailed, statuses[users[1].ID])
	assert.Equal(t, enrollment.StatusFailed, statuses[users[2].ID])

	enr, err := f.enrollments.GetEnrollment(ctx, ongoing.ID, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusJoined, enr.Status)

	// idempotent
	n, err = f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
