package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	echoapi "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/apps/api/echo"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/challenge"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/consumption"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/leaderboard"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/profile"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/score"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
	emailsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/email"
	logsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/logger"
	metricsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/metrics"
	inmemdb "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server   *echoapi.Server
	auth     *echoapi.Authenticator
	mail     *emailsvc.ConsoleServiceMock
	logs     *observer.ObservedLogs
	usrRepo  user.Repository
	recRepo  consumption.Repository
	chalRepo challenge.Repository
	enrRepo  enrollment.Repository
}

func setup(t *testing.T) testApp {
	t.Helper()
	conf := core.NewTestConfig()

	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := logsvc.NewRollbarLogger(zap.New(obsCore), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	consumption.InitValidators(validate, translator)

	// set up DB & repos
	db := inmemdb.Open()
	app := testApp{
		logs:     logs,
		mail:     emailsvc.NewConsoleServiceMock(conf, logger),
		usrRepo:  inmemdb.NewUserRepository(db),
		recRepo:  inmemdb.NewConsumptionRepository(db),
		chalRepo: inmemdb.NewChallengeRepository(db),
		enrRepo:  inmemdb.NewEnrollmentRepository(db),
	}

	// set up services
	usrSvc := user.NewService(app.usrRepo)
	enrSvc := enrollment.NewService(app.enrRepo, app.chalRepo, app.recRepo, app.usrRepo, app.mail, logger)
	app.auth = echoapi.NewAuthenticator(conf, usrSvc)

	// set up server
	app.server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		Auth:           app.auth,
		Metrics:        metricsvc.Eco(),
		UserSvc:        usrSvc,
		ProfileSvc:     profile.NewService(inmemdb.NewProfileRepository(db)),
		ConsumptionSvc: consumption.NewService(app.recRepo),
		ScoreSvc:       score.NewService(app.recRepo, score.WeightsFromConfig(conf.Score)),
		ChallengeSvc:   challenge.NewService(app.chalRepo),
		EnrollmentSvc:  enrSvc,
		LeaderboardSvc: leaderboard.NewService(enrSvc, usrSvc),
	})
	return app
}

func (app testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.server.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, auth *echoapi.Authenticator, usr user.User) string {
	token, err := auth.GenerateToken(auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, app.do(req, rec))
		})
	}
}
