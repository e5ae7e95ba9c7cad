package main

import (
	"log"
	"os"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	// start CLI
	cli := newCommandLine(conf, db, logger)
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp && err != errFailed {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func newCommandLine(conf *core.Config, db *database.DB, logger core.Logger) *commandLine {
	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	enrRepo := sqlxrepos.NewEnrollmentRepository(db)
	asgRepo := sqlxrepos.NewAssignmentRepository(db)

	return &commandLine{
		conf:        conf,
		db:          db,
		logger:      logger,
		out:         os.Stdout,
		usrRepo:     usrRepo,
		users:       user.NewService(db, usrRepo, logger, conf),
		courses:     course.NewService(db, crsRepo, usrRepo),
		directory:   enrollment.NewDirectory(db, enrRepo, usrRepo, crsRepo),
		assignments: assignment.NewService(db, asgRepo, crsRepo),
		reports:     report.NewService(sqlxrepos.NewReportRepository(db)),
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
