package main

import (
	"fmt"
	"log"
	"os"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/enrollment"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
	emailsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/email"
	logsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/logger"
	metricsvc "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/services/metrics"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database"
	sqlxrepos "github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Sync() }()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(logger, err)
	defer db.Close()
	errAndDie(logger, db.Ping())

	var mailSvc core.EmailService = emailsvc.NewSendgridService(conf, logger)
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	}
	errAndDie(logger, core.ParseEmailTemplates())

	usrRepo := sqlxrepos.NewUserRepository(db)
	chalRepo := sqlxrepos.NewChallengeRepository(db)

	// start CLI
	cli := commandLine{
		db:     db,
		out:    os.Stdout,
		usrSvc: user.NewService(usrRepo),
		enrSvc: enrollment.NewService(
			sqlxrepos.NewEnrollmentRepository(db),
			chalRepo,
			sqlxrepos.NewConsumptionRepository(db),
			usrRepo,
			mailSvc,
			logger,
		),
		metrics: metricsvc.Eco(),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		_ = logger.Sync()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
