package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/apps/api/echo"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/testutil"
)

const pwd = "Gr33n!Leaf"

func TestHome(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.do(req, rec)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Eco Plus API!", rec.Body.String())
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	testutil.CreateUser(t, app.usrRepo, "Nimal Perera", "nimal@ecoplus.lk", pwd, user.UserRoles, false)

	body := func(email, password string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Email: email, Password: password})
	}

	tests := []httpTest{
		{
			name: "blank data", body: body("", ""), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown email", body: body("lol@ecoplus.lk", pwd), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: body(usr.Email, "Wr0ng!Pass"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", body: body("nimal@ecoplus.lk", pwd), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/login"
	}
	runHTTPTests(t, app, tests)

	t.Run("login", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body(" KASUN@ecoplus.lk ", pwd))
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)

		// the token authenticates its user
		req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.Token)
		app.do(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)
		var me user.User
		unmarshal(t, rec, &me)
		assert.Equal(t, usr.ID, me.ID)
		assert.False(t, me.LastLogin.IsZero(), "last login is set")
	})
}

func Test_userApi_me(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	ghost := user.User{ID: "4d6b7c32-58a3-4d34-9f5b-71e0a2b9c6d1", Email: "ghost@ecoplus.lk", IsActive: true}

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid token", path: "/v1/users/me", token: "lol", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "unknown user", path: "/v1/users/me", token: getToken(t, app.auth, ghost), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
	})

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, app.auth, usr))
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	var me user.User
	unmarshal(t, rec, &me)
	assert.Equal(t, usr.ID, me.ID)
	assert.Equal(t, usr.Email, me.Email)
	assert.Equal(t, "Colombo", me.City)
	assert.NotContains(t, rec.Body.String(), "password")
}

func Test_userApi_create(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	admin := testutil.CreateUser(t, app.usrRepo, "Admin", "admin@ecoplus.lk", pwd, user.AdminRoles, true)
	adminToken := getToken(t, app.auth, admin)

	newUser := func(name, email, password string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            name,
			Email:           email,
			City:            "Kandy",
			Password:        password,
			PasswordConfirm: password,
			Roles:           roles,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/users/register",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", method: http.MethodPost, path: "/v1/users/register",
			body: newUser("Dilani", "dilani@ecoplus.lk", pwd), token: getToken(t, app.auth, usr),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/v1/users/register",
			body: newUser("Dilani", "dilani@ecoplus.lk", pwd, "lol:"), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"roles": "invalid roles"}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/users/register",
			body: newUser("Dilani", "dilani@ecoplus.lk", "greenleaf1"), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "email taken", method: http.MethodPost, path: "/v1/users/register",
			body: newUser("Kasun", "KASUN@ecoplus.lk", pwd), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", adminToken, newUser(" Dilani ", "Dilani@EcoPlus.lk", pwd))
	app.do(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created user.User
	unmarshal(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Dilani", created.Name)
	assert.Equal(t, "dilani@ecoplus.lk", created.Email)
	assert.Equal(t, user.UserRoles, created.Roles)
	assert.True(t, created.IsActive)

	stored, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{Email: "dilani@ecoplus.lk"})
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword(pwd))
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Kasun Silva", "kasun@ecoplus.lk", pwd, user.UserRoles, true)
	naughty := testutil.CreateUser(t, app.usrRepo, "Nimal Perera", "nimal@ecoplus.lk", pwd, user.UserRoles, false)

	// issued long enough ago for the refresh to have expired
	staleClaims := app.auth.UserClaims(usr, time.Now().Add(-60*24*time.Hour).Unix())
	staleToken, err := app.auth.GenerateToken(staleClaims)
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/users/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/users/token-refresh", token: getToken(t, app.auth, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/users/token-refresh", token: staleToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, app.auth, usr))
	app.do(req, rec)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp echoapi.LoginResponse
	unmarshal(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
}
