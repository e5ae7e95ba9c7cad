// Package enrollment is the many-to-many directory between students and courses.
// Enrollments are only ever added.
package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/user"
)

type (
	Enrollment struct {
		StudentID  int       `json:"student_id"`
		CourseID   int       `json:"course_id"`
		EnrolledAt time.Time `json:"enrolled_at"` // UTC
	}

	Repository interface {
		// CreateEnrollment inserts the pair if absent and reports whether a row was created.
		CreateEnrollment(ctx context.Context, e Enrollment, exec ...core.DBExecutor) (bool, error)
		EnrollmentExists(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error)
		// QueryEnrolledCourses returns courses ordered by name, then id.
		QueryEnrolledCourses(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.Course, error)
		// QueryEnrolledStudents returns students ordered by first name, last name, then id.
		QueryEnrolledStudents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]user.User, error)
	}

	Directory struct {
		db      core.DB
		repo    Repository
		users   user.Repository
		courses course.Repository
	}
)

func NewDirectory(db core.DB, repo Repository, users user.Repository, courses course.Repository) *Directory {
	return &Directory{db: db, repo: repo, users: users, courses: courses}
}

// Enroll adds studentID to courseID. Enrolling twice is a no-op: created reports whether a
// new enrollment was made.
func (dir *Directory) Enroll(ctx context.Context, sess user.Session, studentID, courseID int) (created bool, err error) {
	if err = sess.Authorize(user.OpEnroll); err != nil {
		return false, err
	}
	err = dir.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		created, err = dir.enroll(ctx, tx, studentID, courseID)
		return err
	})
	return created, err
}

// EnrollMany enrolls studentID in every course of courseIDs in one transaction and returns
// the number of new enrollments.
func (dir *Directory) EnrollMany(ctx context.Context, sess user.Session, studentID int, courseIDs []int) (int, error) {
	if err := sess.Authorize(user.OpEnroll); err != nil {
		return 0, err
	}
	var count int
	err := dir.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		count = 0
		for _, courseID := range courseIDs {
			created, err := dir.enroll(ctx, tx, studentID, courseID)
			if err != nil {
				return err
			}
			if created {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (dir *Directory) enroll(ctx context.Context, tx core.DBExecutor, studentID, courseID int) (bool, error) {
	student, err := dir.users.GetUserByID(ctx, studentID, tx)
	if err != nil {
		if err == user.ErrNotFound {
			return false, core.NewReferenceError("student", studentID, "user does not exist")
		}
		return false, errors.Wrap(err, "finding student")
	}
	if !student.IsStudent() {
		return false, core.NewReferenceError("student", studentID, "user is not a STUDENT")
	}
	if _, err = dir.courses.GetCourseByID(ctx, courseID, tx); err != nil {
		if err == course.ErrNotFound {
			return false, core.NewReferenceError("course", courseID, "course does not exist")
		}
		return false, errors.Wrap(err, "finding course")
	}
	return dir.repo.CreateEnrollment(ctx, Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: core.NowFunc().UTC(),
	}, tx)
}

func (dir *Directory) IsEnrolled(ctx context.Context, sess user.Session, studentID, courseID int) (bool, error) {
	if err := sess.AuthorizeSelf(user.OpViewEnrollments, studentID); err != nil {
		return false, err
	}
	return dir.repo.EnrollmentExists(ctx, studentID, courseID)
}

// ListEnrolledCourses returns the courses of studentID ordered by course name.
func (dir *Directory) ListEnrolledCourses(ctx context.Context, sess user.Session, studentID int) ([]course.Course, error) {
	if err := sess.AuthorizeSelf(user.OpViewEnrollments, studentID); err != nil {
		return nil, err
	}
	return dir.repo.QueryEnrolledCourses(ctx, studentID)
}

// ListEnrolledStudents returns the students of courseID ordered by display name,
// including those who never submitted anything.
func (dir *Directory) ListEnrolledStudents(ctx context.Context, sess user.Session, courseID int) ([]user.User, error) {
	if err := sess.Authorize(user.OpViewEnrollments); err != nil {
		return nil, err
	}
	return dir.repo.QueryEnrolledStudents(ctx, courseID)
}
