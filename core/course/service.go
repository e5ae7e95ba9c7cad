package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
		GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (Course, error)
		// QueryCourses returns courses ordered by name; teacherID 0 means all teachers.
		QueryCourses(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]Course, error)
	}

	Service struct {
		db    core.DB
		repo  Repository
		users user.Repository
	}
)

func NewService(db core.DB, repo Repository, users user.Repository) *Service {
	return &Service{db: db, repo: repo, users: users}
}

// Create inserts a new Course taught by nc.TeacherID, which must resolve to a TEACHER.
func (svc *Service) Create(ctx context.Context, sess user.Session, nc NewCourse) (Course, error) {
	if err := sess.Authorize(user.OpCreateCourse); err != nil {
		return Course{}, err
	}
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}

	var created Course
	err := svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		teacher, err := svc.users.GetUserByID(ctx, nc.TeacherID, tx)
		if err != nil {
			if err == user.ErrNotFound {
				return core.NewReferenceError("teacher", nc.TeacherID, "user does not exist")
			}
			return errors.Wrap(err, "finding teacher")
		}
		if !teacher.IsTeacher() {
			return core.NewReferenceError("teacher", nc.TeacherID, "user is not a TEACHER")
		}

		created, err = svc.repo.CreateCourse(ctx, Course{
			Name:        nc.Name,
			TeacherID:   teacher.ID,
			TeacherName: teacher.FullName(),
			CreatedAt:   core.NowFunc().UTC(),
		}, tx)
		return err
	})
	if err != nil {
		return Course{}, err
	}
	return created, nil
}

// Get returns the Course with the given id; found is false if there is none.
func (svc *Service) Get(ctx context.Context, sess user.Session, id int) (crs Course, found bool, err error) {
	if err = sess.Authorize(user.OpViewCourses); err != nil {
		return Course{}, false, err
	}
	crs, err = svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return Course{}, false, nil
		}
		return Course{}, false, err
	}
	return crs, true, nil
}

func (svc *Service) ListAll(ctx context.Context, sess user.Session) ([]Course, error) {
	if err := sess.Authorize(user.OpViewCourses); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, 0)
}

// ListForTeacher returns the courses taught by teacherID, ordered by name.
func (svc *Service) ListForTeacher(ctx context.Context, sess user.Session, teacherID int) ([]Course, error) {
	if err := sess.Authorize(user.OpViewCourses); err != nil {
		return nil, err
	}
	if teacherID <= 0 {
		return []Course{}, nil
	}
	return svc.repo.QueryCourses(ctx, teacherID)
}

// CheckTeaches fails with core.ErrForbidden when a TEACHER session acts on a course they do not
// teach. Other roles pass through; their capabilities are checked by the caller.
func CheckTeaches(sess user.Session, crs Course) error {
	if sess.IsTeacher() && crs.TeacherID != sess.UserID {
		return errors.Wrapf(core.ErrForbidden, "course %d is not taught by user %d", crs.ID, sess.UserID)
	}
	return nil
}
