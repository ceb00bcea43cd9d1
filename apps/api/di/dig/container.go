package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

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
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database"
	sqlxrepos "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Auth       *echoapi.Authenticator
	Metrics    *metricsvc.EcoMetrics

	UserSvc        *user.Service
	ProfileSvc     *profile.Service
	ConsumptionSvc *consumption.Service
	ScoreSvc       *score.Service
	ChallengeSvc   *challenge.Service
	EnrollmentSvc  *enrollment.Service
	LeaderboardSvc *leaderboard.Service
}

func newZapLogger(conf *core.Config) *zap.Logger {
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	return zl
}

func newLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config, zl *zap.Logger) core.Logger {
	logger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DBExecutor) {
	setUp := func(ctx context.Context) (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(ctx, db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp(context.Background())
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newWeights(conf *core.Config) score.Weights {
	return score.WeightsFromConfig(conf.Score)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		Auth:           p.Auth,
		Metrics:        p.Metrics,
		UserSvc:        p.UserSvc,
		ProfileSvc:     p.ProfileSvc,
		ConsumptionSvc: p.ConsumptionSvc,
		ScoreSvc:       p.ScoreSvc,
		ChallengeSvc:   p.ChallengeSvc,
		EnrollmentSvc:  p.EnrollmentSvc,
		LeaderboardSvc: p.LeaderboardSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(metricsvc.Eco))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository), new(enrollment.UserGetter))))
	must(c.Provide(sqlxrepos.NewProfileRepository, dig.As(new(profile.Repository))))
	must(c.Provide(
		sqlxrepos.NewConsumptionRepository,
		dig.As(new(consumption.Repository), new(enrollment.RecordQuerier), new(score.RecordQuerier)),
	))
	must(c.Provide(sqlxrepos.NewChallengeRepository, dig.As(new(challenge.Repository), new(enrollment.ChallengeGetter))))
	must(c.Provide(sqlxrepos.NewEnrollmentRepository, dig.As(new(enrollment.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(profile.NewService))
	must(c.Provide(consumption.NewService))
	must(c.Provide(newWeights))
	must(c.Provide(score.NewService))
	must(c.Provide(challenge.NewService))
	must(c.Provide(enrollment.NewService))
	must(c.Provide(func(svc *enrollment.Service) leaderboard.EnrollmentQuerier { return svc }))
	must(c.Provide(func(svc *user.Service) leaderboard.UserQuerier { return svc }))
	must(c.Provide(leaderboard.NewService))

	must(c.Provide(echoapi.NewAuthenticator))
	must(c.Provide(newServer))

	if os.Getenv("DIG_VISUALIZE") != "" {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
