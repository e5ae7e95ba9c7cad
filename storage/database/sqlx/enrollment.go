package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/user"
)

type enrollmentRepository struct {
	baseRepository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{baseRepository{exec: exec}}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment, exec ...core.DBExecutor) (bool, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO enrollments (user_id, course_id, enrolled_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, course_id) DO NOTHING`)
	res, err := exe.ExecContext(ctx, q, e.StudentID, e.CourseID, core.ToMillis(e.EnrolledAt))
	if err != nil {
		return false, errors.Wrap(err, "inserting enrollment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "inserting enrollment")
	}
	return n > 0, nil
}

func (repo enrollmentRepository) EnrollmentExists(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	exe := repo.getExec(exec)
	var count int
	q := exe.Rebind("SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND course_id = ?")
	if err := exe.GetContext(ctx, &count, q, studentID, courseID); err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return count > 0, nil
}

func (repo enrollmentRepository) QueryEnrolledCourses(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.Course, error) {
	exe := repo.getExec(exec)
	var rows []courseRow
	q := exe.Rebind(courseSelect + `
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.user_id = ?
		ORDER BY c.name, c.id`)
	if err := exe.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying enrolled courses")
	}
	return toCourses(rows), nil
}

func (repo enrollmentRepository) QueryEnrolledStudents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]user.User, error) {
	exe := repo.getExec(exec)
	var rows []userRow
	q := exe.Rebind(`
		SELECT u.id, u.username, u.password_hash, u.first_name, u.last_name, u.email, u.role, u.created_at
		FROM users u
		JOIN enrollments e ON e.user_id = u.id
		WHERE e.course_id = ? AND u.role = ?
		ORDER BY u.first_name, u.last_name, u.id`)
	if err := exe.SelectContext(ctx, &rows, q, courseID, string(user.RoleStudent)); err != nil {
		return nil, errors.Wrap(err, "querying enrolled students")
	}
	return toUsers(rows), nil
}
