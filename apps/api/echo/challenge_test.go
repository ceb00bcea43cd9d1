package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/testutil"
)

func challengeIDs(t *testing.T, app testApp, token, path string) []string {
	req, rec := newAuthRequest(http.MethodGet, path, token)
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var challenges []challenge.Challenge
	unmarshal(t, rec, &challenges)
	ids := make([]string, 0, len(challenges))
	for _, chal := range challenges {
		ids = append(ids, chal.ID)
	}
	return ids
}

func Test_challengeApi_query(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	token := getToken(t, app.auth, usr)

	now := time.Now().UTC()
	day := 24 * time.Hour
	active := testutil.CreateChallenge(t, app.chalRepo, "Cut 50 kWh", 50, "kWh", now.Add(-day), now.Add(7*day))
	upcoming := testutil.CreateChallenge(t, app.chalRepo, "Save water", 10, "m3", now.Add(2*day), now.Add(9*day))
	ended := testutil.CreateChallenge(t, app.chalRepo, "Bag less", 3, "bags", now.Add(-10*day), now.Add(-2*day))

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/challenges")
		app.do(req, rec)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("all, newest start first", func(t *testing.T) {
		assert.Equal(t, []string{upcoming.ID, active.ID, ended.ID}, challengeIDs(t, app, token, "/v1/challenges"))
	})
	t.Run("active only", func(t *testing.T) {
		assert.Equal(t, []string{active.ID}, challengeIDs(t, app, token, "/v1/challenges?active=true"))
	})
	t.Run("ordering=title", func(t *testing.T) {
		assert.Equal(t, []string{ended.ID, active.ID, upcoming.ID}, challengeIDs(t, app, token, "/v1/challenges?ordering=title"))
	})
	t.Run("ordering=-end_date", func(t *testing.T) {
		assert.Equal(t, []string{upcoming.ID, active.ID, ended.ID}, challengeIDs(t, app, token, "/v1/challenges?ordering=-end_date"))
	})
}

func Test_challengeApi_crud(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@ecoplus.lk", pwd, user.AdminRoles, true)
	token := getToken(t, app.auth, usr)
	adminToken := getToken(t, app.auth, admin)

	start := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.November, 30, 0, 0, 0, 0, time.UTC)
	newChallenge := func(title string, goal float64, unit string, start, end time.Time) []byte {
		return marchallObj(t, challenge.NewChallenge{
			Title:       title,
			Description: "Switch off what you do not use.",
			Goal:        goal,
			Unit:        unit,
			StartDate:   start,
			EndDate:     end,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "admin required", method: http.MethodPost, path: "/v1/challenges", token: token,
			body:     newChallenge("Cut 50 kWh", 50, "kWh", start, end),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "title required", method: http.MethodPost, path: "/v1/challenges", token: adminToken,
			body:     newChallenge("  ", 50, "kWh", start, end),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"}),
		},
		{
			name: "ends before it starts", method: http.MethodPost, path: "/v1/challenges", token: adminToken,
			body: newChallenge("Cut 50 kWh", 50, "kWh", end, start), wantCode: http.StatusBadRequest,
		},
		{
			name: "non positive goal", method: http.MethodPost, path: "/v1/challenges", token: adminToken,
			body: newChallenge("Cut 50 kWh", 0, "kWh", start, end), wantCode: http.StatusBadRequest,
		},
	})

	// create
	req, rec := newAuthRequest(http.MethodPost, "/v1/challenges", adminToken, newChallenge(" Cut 50 kWh ", 50, "kWh", start, end))
	app.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var chal challenge.Challenge
	unmarshal(t, rec, &chal)
	assert.NotEmpty(t, chal.ID)
	assert.Equal(t, "Cut 50 kWh", chal.Title)
	assert.Equal(t, consumption.Electricity, chal.Resource, "resource inferred from the unit")
	assert.True(t, start.Equal(chal.StartDate))
	detail := "/v1/challenges/" + chal.ID

	// retrieve
	req, rec = newAuthRequest(http.MethodGet, detail, token)
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	var got challenge.Challenge
	unmarshal(t, rec, &got)
	assert.Equal(t, chal.ID, got.ID)

	// update
	runHTTPTests(t, app, []httpTest{
		{
			name: "update: admin required", method: http.MethodPut, path: detail, token: token,
			body: newChallenge("Cut 40 kWh", 40, "kWh", start, end), wantCode: http.StatusForbidden,
		},
		{
			name: "update: unknown", method: http.MethodPut, path: "/v1/challenges/lol", token: adminToken,
			body:     newChallenge("Cut 40 kWh", 40, "kWh", start, end),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: challenge.ErrNotFound.Error()}),
		},
	})
	req, rec = newAuthRequest(http.MethodPut, detail, adminToken, newChallenge("Save 2 m3", 2, "m3", start, end.Add(24*time.Hour)))
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &got)
	assert.Equal(t, chal.ID, got.ID)
	assert.Equal(t, "Save 2 m3", got.Title)
	assert.Equal(t, consumption.Water, got.Resource)
	assert.True(t, end.Add(24*time.Hour).Equal(got.EndDate))

	// delete
	runHTTPTests(t, app, []httpTest{
		{name: "delete: admin required", method: http.MethodDelete, path: detail, token: token, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: detail, token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "deleted", path: detail, token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: challenge.ErrNotFound.Error()}),
		},
	})
}

func Test_challengeApi_lifecycle(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	kasun := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	nimal := testutil.CreateUser(t, app.usrRepo, "Nimal Perera", "nimal@ecoplus.lk", pwd, user.UserRoles, true)
	newbie := testutil.CreateUser(t, app.usrRepo, "Dilani Fernando", "dilani@ecoplus.lk", pwd, user.UserRoles, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@ecoplus.lk", pwd, user.AdminRoles, true)
	kasunToken := getToken(t, app.auth, kasun)
	nimalToken := getToken(t, app.auth, nimal)
	adminToken := getToken(t, app.auth, admin)

	testutil.CreateRecord(t, app.recRepo, kasun.ID, consumption.Electricity, testutil.Month(2026, time.January), 120)
	testutil.CreateRecord(t, app.recRepo, kasun.ID, consumption.Electricity, testutil.Month(2026, time.February), 80)
	testutil.CreateRecord(t, app.recRepo, nimal.ID, consumption.Electricity, testutil.Month(2026, time.February), 60)

	now := time.Now().UTC()
	day := 24 * time.Hour
	chal := testutil.CreateActiveChallenge(t, app.chalRepo, "Cut 50 kWh", 50, "kWh")
	upcoming := testutil.CreateChallenge(t, app.chalRepo, "Later", 50, "kWh", now.Add(2*day), now.Add(9*day))
	ended := testutil.CreateChallenge(t, app.chalRepo, "Over", 50, "kWh", now.Add(-10*day), now.Add(-2*day))
	path := func(chalID, action string) string { return fmt.Sprintf("/v1/challenges/%s/%s", chalID, action) }

	// join
	req, rec := newAuthRequest(http.MethodPost, path(chal.ID, "join"), kasunToken)
	app.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var enr enrollment.Enrollment
	unmarshal(t, rec, &enr)
	assert.Equal(t, kasun.ID, enr.UserID)
	assert.Equal(t, chal.ID, enr.ChallengeID)
	assert.Equal(t, 200.0, enr.StartValue)
	assert.Equal(t, enrollment.StatusJoined, enr.Status)
	assert.Zero(t, enr.PointsEarned)
	assert.Nil(t, enr.CompletionDate)
	assert.Contains(t, rec.Body.String(), `"end_value":0`)

	runHTTPTests(t, app, []httpTest{
		{
			name: "join twice", method: http.MethodPost, path: path(chal.ID, "join"), token: kasunToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: enrollment.ErrAlreadyJoined.Error()}),
		},
		{
			name: "join without baseline", method: http.MethodPost, path: path(chal.ID, "join"), token: getToken(t, app.auth, newbie),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: enrollment.ErrNoBaselineData.Error()}),
		},
		{
			name: "join unknown", method: http.MethodPost, path: path("lol", "join"), token: kasunToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: challenge.ErrNotFound.Error()}),
		},
		{
			name: "join upcoming", method: http.MethodPost, path: path(upcoming.ID, "join"), token: kasunToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: enrollment.ErrChallengeNotStarted.Error()}),
		},
		{
			name: "join ended", method: http.MethodPost, path: path(ended.ID, "join"), token: kasunToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: enrollment.ErrChallengeExpired.Error()}),
		},
		{name: "nimal joins", method: http.MethodPost, path: path(chal.ID, "join"), token: nimalToken, wantCode: http.StatusCreated},
	})

	// award
	award := func(userID string, points int) []byte {
		return marchallObj(t, enrollment.AwardRequest{UserID: userID, Points: points})
	}
	runHTTPTests(t, app, []httpTest{
		{
			name: "award: admin required", method: http.MethodPost, path: path(chal.ID, "award"), token: kasunToken,
			body: award(kasun.ID, 40), wantCode: http.StatusForbidden,
		},
		{
			name: "award: non positive points", method: http.MethodPost, path: path(chal.ID, "award"), token: adminToken,
			body: award(kasun.ID, 0), wantCode: http.StatusBadRequest,
		},
		{
			name: "award: not enrolled", method: http.MethodPost, path: path(chal.ID, "award"), token: adminToken,
			body:     award(newbie.ID, 40),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: enrollment.ErrEnrollmentNotFound.Error()}),
		},
	})

	req, rec = newAuthRequest(http.MethodPost, path(chal.ID, "award"), adminToken, award(kasun.ID, 40))
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &enr)
	assert.Equal(t, enrollment.StatusCompleted, enr.Status)
	assert.Equal(t, 40, enr.PointsEarned)
	assert.Equal(t, 200.0, enr.EndValue)
	require.NotNil(t, enr.CompletionDate)

	sent := app.mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, kasun.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Cut 50 kWh")

	// withdraw
	req, rec = newAuthRequest(http.MethodPost, path(chal.ID, "withdraw"), nimalToken)
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	unmarshal(t, rec, &enr)
	assert.Equal(t, enrollment.StatusWithdrawn, enr.Status)
	assert.Zero(t, enr.PointsEarned)

	finalized := marchallObj(t, httpErr{Error: enrollment.ErrAlreadyFinalized.Error()})
	runHTTPTests(t, app, []httpTest{
		{
			name: "award twice", method: http.MethodPost, path: path(chal.ID, "award"), token: adminToken,
			body: award(kasun.ID, 10), wantCode: http.StatusConflict, wantData: finalized,
		},
		{
			name: "award withdrawn", method: http.MethodPost, path: path(chal.ID, "award"), token: adminToken,
			body: award(nimal.ID, 10), wantCode: http.StatusConflict, wantData: finalized,
		},
		{
			name: "withdraw completed", method: http.MethodPost, path: path(chal.ID, "withdraw"), token: kasunToken,
			wantCode: http.StatusConflict, wantData: finalized,
		},
		{
			name: "withdraw not enrolled", method: http.MethodPost, path: path(upcoming.ID, "withdraw"), token: kasunToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: enrollment.ErrEnrollmentNotFound.Error()}),
		},
	})

	// enrollments
	t.Run("challenge enrollments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(chal.ID, "enrollments"), kasunToken)
		app.do(req, rec)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, path("lol", "enrollments"), adminToken)
		app.do(req, rec)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, path(chal.ID, "enrollments"), adminToken)
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		var enrs []enrollment.Enrollment
		unmarshal(t, rec, &enrs)
		assert.Len(t, enrs, 2)
	})

	t.Run("own enrollments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/enrollments", getToken(t, app.auth, newbie))
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/enrollments", kasunToken)
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		var enrs []enrollment.Enrollment
		unmarshal(t, rec, &enrs)
		require.Len(t, enrs, 1)
		assert.Equal(t, enrollment.StatusCompleted, enrs[0].Status)
	})

	t.Run("deleting the challenge drops its enrollments", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/challenges/"+chal.ID, adminToken)
		app.do(req, rec)
		require.Equal(t, http.StatusNoContent, rec.Code)

		enrs, err := app.enrRepo.QueryEnrollments(ctx, enrollment.QueryFilter{ChallengeID: chal.ID})
		require.NoError(t, err)
		assert.Empty(t, enrs)
	})
}
