package testutil

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

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

// Password is the secret of every fixture user.
const Password = "pass123"

func init() {
	user.PasswordHashCost = bcrypt.MinCost
}

// NewConfig returns the default config pointing at a fresh SQLite file in t.TempDir().
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = true
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Path = filepath.Join(t.TempDir(), "academia_test.db")
	conf.Grading.AtRiskThreshold = 6.0
	conf.Import.DefaultPassword = "default123"
	conf.Import.MaxReportedErrors = 5
	return conf
}

// PrepareDB opens and migrates the database of conf; it is closed when the test ends.
func PrepareDB(t *testing.T, conf *core.Config) *database.DB {
	t.Helper()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// Env wires every repository and service on top of a fresh database.
type Env struct {
	Conf   *core.Config
	DB     *database.DB
	Logger core.Logger

	UserRepo       user.Repository
	CourseRepo     course.Repository
	EnrollmentRepo enrollment.Repository
	AssignmentRepo assignment.Repository
	SubmissionRepo grading.Repository
	ReportRepo     report.Repository

	Users       *user.Service
	Courses     *course.Service
	Directory   *enrollment.Directory
	Assignments *assignment.Service
	Grading     *grading.Service
	Reports     *report.Service
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	conf := NewConfig(t)
	db := PrepareDB(t, conf)

	env := &Env{
		Conf:           conf,
		DB:             db,
		Logger:         NewLogger(conf),
		UserRepo:       sqlxrepos.NewUserRepository(db),
		CourseRepo:     sqlxrepos.NewCourseRepository(db),
		EnrollmentRepo: sqlxrepos.NewEnrollmentRepository(db),
		AssignmentRepo: sqlxrepos.NewAssignmentRepository(db),
		SubmissionRepo: sqlxrepos.NewSubmissionRepository(db),
		ReportRepo:     sqlxrepos.NewReportRepository(db),
	}
	env.Users = user.NewService(db, env.UserRepo, env.Logger, conf)
	env.Courses = course.NewService(db, env.CourseRepo, env.UserRepo)
	env.Directory = enrollment.NewDirectory(db, env.EnrollmentRepo, env.UserRepo, env.CourseRepo)
	env.Assignments = assignment.NewService(db, env.AssignmentRepo, env.CourseRepo)
	env.Grading = grading.NewService(db, env.SubmissionRepo, env.AssignmentRepo, env.CourseRepo, env.EnrollmentRepo, conf)
	env.Reports = report.NewService(env.ReportRepo)
	return env
}

// CreateUser inserts a user with Password as secret, bypassing the service checks.
func CreateUser(t *testing.T, repo user.Repository, uname, firstName, lastName, email string, role user.Role) user.User {
	t.Helper()
	usr := user.User{
		Username:  uname,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if email != "" {
		usr.Email.SetValid(email)
	}
	if err := usr.SetPassword(Password); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo course.Repository, name string, teacherID int) course.Course {
	t.Helper()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Name:      name,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func Enroll(t *testing.T, repo enrollment.Repository, studentID, courseID int) {
	t.Helper()
	_, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
}

func CreateAssignment(t *testing.T, repo assignment.Repository, courseID int, title string, typ assignment.Type, maxPoints float64, due time.Time) assignment.Assignment {
	t.Helper()
	asg, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		CourseID:  courseID,
		Title:     title,
		DueDate:   due,
		MaxPoints: maxPoints,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

// CreateGradedSubmission inserts a submission of studentID to assignmentID with the given grade.
func CreateGradedSubmission(t *testing.T, repo grading.Repository, assignmentID, studentID int, grade float64) grading.Submission {
	t.Helper()
	now := time.Now().UTC()
	sub := grading.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		SubmittedAt:  now,
		Content:      "work",
	}
	sub.Grade.SetValid(grade)
	sub.GradedAt.SetValid(now)
	sub, err := repo.CreateSubmission(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateGradedSubmission() failed: %v", err)
	}
	return sub
}

// Sessions of the seeded roles, for tests that do not care about the acting user's id.
var (
	DirectorSession    = user.Session{UserID: 0, Role: user.RoleDirector}
	CoordinatorSession = user.Session{UserID: 0, Role: user.RoleCoordinator}
	SecretarySession   = user.Session{UserID: 0, Role: user.RoleSecretary}
)
