package sqlxrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
)

const studentName = "u.first_name || ' ' || u.last_name"

type reportRepository struct {
	baseRepository
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(exec core.DBExecutor) *reportRepository {
	return &reportRepository{baseRepository{exec: exec}}
}

func (repo reportRepository) QueryEnrollmentRows(ctx context.Context, exec ...core.DBExecutor) ([]report.EnrollmentRow, error) {
	exe := repo.getExec(exec)
	var rows []struct {
		StudentID int         `db:"id"`
		Student   string      `db:"student"`
		Email     null.String `db:"email"`
		Course    null.String `db:"course"`
	}
	q := exe.Rebind(`
		SELECT u.id, ` + studentName + ` AS student, u.email, c.name AS course
		FROM users u
		LEFT JOIN enrollments e ON e.user_id = u.id
		LEFT JOIN courses c ON c.id = e.course_id
		WHERE u.role = ?
		ORDER BY u.first_name, u.last_name, u.id, c.name, c.id`)
	if err := exe.SelectContext(ctx, &rows, q, string(user.RoleStudent)); err != nil {
		return nil, errors.Wrap(err, "querying enrollment rows")
	}

	// one record per student, course names joined in name order
	result := make([]report.EnrollmentRow, 0)
	var (
		lastID  int
		courses []string
	)
	flush := func() {
		if len(result) == 0 {
			return
		}
		if len(courses) > 0 {
			result[len(result)-1].Courses = null.StringFrom(strings.Join(courses, ", "))
		}
	}
	for _, row := range rows {
		if len(result) == 0 || row.StudentID != lastID {
			flush()
			result = append(result, report.EnrollmentRow{Student: row.Student, Email: row.Email})
			lastID = row.StudentID
			courses = courses[:0]
		}
		if row.Course.Valid {
			courses = append(courses, row.Course.String)
		}
	}
	flush()
	return result, nil
}

func (repo reportRepository) QueryAcademicRows(ctx context.Context, exec ...core.DBExecutor) ([]report.AcademicRow, error) {
	exe := repo.getExec(exec)
	var rows []struct {
		Student string  `db:"student"`
		Course  string  `db:"course"`
		Average float64 `db:"average"`
	}
	q := exe.Rebind(`
		SELECT ` + studentName + ` AS student, c.name AS course, COALESCE(AVG(s.grade), 0) AS average
		FROM users u
		JOIN enrollments e ON e.user_id = u.id
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN assignments a ON a.course_id = c.id
		LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = u.id
		WHERE u.role = ?
		GROUP BY u.id, u.first_name, u.last_name, c.id, c.name
		ORDER BY u.first_name, u.last_name, u.id, c.name, c.id`)
	if err := exe.SelectContext(ctx, &rows, q, string(user.RoleStudent)); err != nil {
		return nil, errors.Wrap(err, "querying academic rows")
	}
	result := make([]report.AcademicRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, report.AcademicRow{Student: row.Student, Course: row.Course, Average: row.Average})
	}
	return result, nil
}

func (repo reportRepository) QueryContactRows(ctx context.Context, exec ...core.DBExecutor) ([]report.ContactRow, error) {
	exe := repo.getExec(exec)
	var rows []struct {
		Student  string      `db:"student"`
		Username string      `db:"username"`
		Email    null.String `db:"email"`
	}
	q := exe.Rebind(`
		SELECT ` + studentName + ` AS student, u.username, u.email
		FROM users u
		WHERE u.role = ?
		ORDER BY u.first_name, u.last_name, u.id`)
	if err := exe.SelectContext(ctx, &rows, q, string(user.RoleStudent)); err != nil {
		return nil, errors.Wrap(err, "querying contact rows")
	}
	result := make([]report.ContactRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, report.ContactRow{Student: row.Student, Username: row.Username, Email: row.Email})
	}
	return result, nil
}

func (repo reportRepository) QuerySummaryRows(ctx context.Context, exec ...core.DBExecutor) ([]report.SummaryRow, error) {
	exe := repo.getExec(exec)
	var rows []struct {
		Student        string       `db:"student"`
		Username       string       `db:"username"`
		Email          null.String  `db:"email"`
		CourseCount    int64        `db:"course_count"`
		OverallAverage null.Float64 `db:"overall_average"`
	}
	q := exe.Rebind(`
		SELECT ` + studentName + ` AS student, u.username, u.email,
			(SELECT COUNT(*) FROM enrollments e WHERE e.user_id = u.id) AS course_count,
			(SELECT AVG(s.grade) FROM submissions s WHERE s.student_id = u.id AND s.grade IS NOT NULL) AS overall_average
		FROM users u
		WHERE u.role = ?
		ORDER BY u.first_name, u.last_name, u.id`)
	if err := exe.SelectContext(ctx, &rows, q, string(user.RoleStudent)); err != nil {
		return nil, errors.Wrap(err, "querying summary rows")
	}
	result := make([]report.SummaryRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, report.SummaryRow{
			Student:        row.Student,
			Username:       row.Username,
			Email:          row.Email,
			CourseCount:    row.CourseCount,
			OverallAverage: row.OverallAverage,
		})
	}
	return result, nil
}
