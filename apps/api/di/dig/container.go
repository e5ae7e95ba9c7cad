package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/grading"
	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type depsParam struct {
	dig.In
	Users       *user.Service
	Courses     *course.Service
	Directory   *enrollment.Directory
	Assignments *assignment.Service
	Grading     *grading.Service
	Reports     *report.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newDB opens and migrates the database; *database.DB also serves as core.DB.
func newDB(conf *core.Config, loggerParam DBLoggerParam) (*database.DB, core.DB, core.DBExecutor) {
	setUp := func() (*database.DB, error) {
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(context.Background(), db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newDeps(p depsParam) *echoapi.Deps {
	return &echoapi.Deps{
		Users:       p.Users,
		Courses:     p.Courses,
		Directory:   p.Directory,
		Assignments: p.Assignments,
		Grading:     p.Grading,
		Reports:     p.Reports,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(sqlxrepos.NewCourseRepository, dig.As(new(course.Repository))))
	must(c.Provide(sqlxrepos.NewEnrollmentRepository, dig.As(new(enrollment.Repository))))
	must(c.Provide(sqlxrepos.NewAssignmentRepository, dig.As(new(assignment.Repository))))
	must(c.Provide(sqlxrepos.NewSubmissionRepository, dig.As(new(grading.Repository))))
	must(c.Provide(sqlxrepos.NewReportRepository, dig.As(new(report.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(enrollment.NewDirectory))
	must(c.Provide(assignment.NewService))
	must(c.Provide(grading.NewService))
	must(c.Provide(report.NewService))

	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
