package sqlxrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
)

const courseSelect = `
	SELECT c.id, c.name, c.teacher_id, c.created_at,
		COALESCE(t.first_name || ' ' || t.last_name, '') AS teacher_name
	FROM courses c
	LEFT JOIN users t ON t.id = c.teacher_id`

type courseRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	TeacherID   int    `db:"teacher_id"`
	TeacherName string `db:"teacher_name"`
	CreatedAt   int64  `db:"created_at"`
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:          row.ID,
		Name:        row.Name,
		TeacherID:   row.TeacherID,
		TeacherName: strings.TrimSpace(row.TeacherName),
		CreatedAt:   core.FromMillis(row.CreatedAt),
	}
}

func toCourses(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses
}

type courseRepository struct {
	baseRepository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{baseRepository{exec: exec}}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind("INSERT INTO courses (name, teacher_id, created_at) VALUES (?, ?, ?) RETURNING id")
	if err := exe.QueryRowxContext(ctx, q, crs.Name, crs.TeacherID, core.ToMillis(crs.CreatedAt)).Scan(&crs.ID); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.CreatedAt = core.FromMillis(core.ToMillis(crs.CreatedAt))
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	exe := repo.getExec(exec)
	var row courseRow
	if err := exe.GetContext(ctx, &row, exe.Rebind(courseSelect+" WHERE c.id = ?"), id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "finding course by ID")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]course.Course, error) {
	exe := repo.getExec(exec)
	var where whereBuilder
	if teacherID > 0 {
		where.add("c.teacher_id = ?", teacherID)
	}
	var rows []courseRow
	q := exe.Rebind(courseSelect + where.String() + " ORDER BY c.name, c.id")
	if err := exe.SelectContext(ctx, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return toCourses(rows), nil
}
