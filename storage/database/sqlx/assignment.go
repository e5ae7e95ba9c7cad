package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
)

const (
	assignmentColumns = "a.id, a.course_id, a.title, a.description, a.due_date, a.max_points, a.type, a.created_at"
	questionColumns   = "id, assignment_id, position, question_text, option_a, option_b, option_c, option_d, correct_answer, points"
)

type assignmentRow struct {
	ID          int     `db:"id"`
	CourseID    int     `db:"course_id"`
	Title       string  `db:"title"`
	Description string  `db:"description"`
	DueDate     int64   `db:"due_date"`
	MaxPoints   float64 `db:"max_points"`
	Type        string  `db:"type"`
	CreatedAt   int64   `db:"created_at"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Title:       row.Title,
		Description: row.Description,
		DueDate:     core.FromMillis(row.DueDate),
		MaxPoints:   row.MaxPoints,
		Type:        assignment.Type(row.Type),
		CreatedAt:   core.FromMillis(row.CreatedAt),
	}
}

func toAssignments(rows []assignmentRow) []assignment.Assignment {
	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toAssignment())
	}
	return asgs
}

type questionRow struct {
	ID            int     `db:"id"`
	AssignmentID  int     `db:"assignment_id"`
	Position      int     `db:"position"`
	Text          string  `db:"question_text"`
	OptionA       string  `db:"option_a"`
	OptionB       string  `db:"option_b"`
	OptionC       string  `db:"option_c"`
	OptionD       string  `db:"option_d"`
	CorrectAnswer string  `db:"correct_answer"`
	Points        float64 `db:"points"`
}

func (row questionRow) toQuestion() assignment.Question {
	return assignment.Question{
		ID:            row.ID,
		AssignmentID:  row.AssignmentID,
		Position:      row.Position,
		Text:          row.Text,
		OptionA:       row.OptionA,
		OptionB:       row.OptionB,
		OptionC:       row.OptionC,
		OptionD:       row.OptionD,
		CorrectAnswer: assignment.Option(row.CorrectAnswer),
		Points:        row.Points,
	}
}

type assignmentRepository struct {
	baseRepository
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{baseRepository{exec: exec}}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO assignments (course_id, title, description, due_date, max_points, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := exe.QueryRowxContext(ctx, q,
		asg.CourseID, asg.Title, asg.Description, core.ToMillis(asg.DueDate), asg.MaxPoints, string(asg.Type), core.ToMillis(asg.CreatedAt),
	).Scan(&asg.ID)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	asg.DueDate = core.FromMillis(core.ToMillis(asg.DueDate))
	asg.CreatedAt = core.FromMillis(core.ToMillis(asg.CreatedAt))
	return asg, nil
}

func (repo assignmentRepository) CreateQuestions(ctx context.Context, qs []assignment.Question, exec ...core.DBExecutor) ([]assignment.Question, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO quiz_questions
			(assignment_id, position, question_text, option_a, option_b, option_c, option_d, correct_answer, points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	created := make([]assignment.Question, 0, len(qs))
	for _, qn := range qs {
		err := exe.QueryRowxContext(ctx, q,
			qn.AssignmentID, qn.Position, qn.Text, qn.OptionA, qn.OptionB, qn.OptionC, qn.OptionD, string(qn.CorrectAnswer), qn.Points,
		).Scan(&qn.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "inserting question %d", qn.Position)
		}
		created = append(created, qn)
	}
	return created, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id int, exec ...core.DBExecutor) (assignment.Assignment, error) {
	exe := repo.getExec(exec)
	var row assignmentRow
	q := exe.Rebind("SELECT " + assignmentColumns + " FROM assignments a WHERE a.id = ?")
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "finding assignment by ID")
	}
	return row.toAssignment(), nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	exe := repo.getExec(exec)
	var rows []assignmentRow
	q := exe.Rebind("SELECT " + assignmentColumns + " FROM assignments a WHERE a.course_id = ? ORDER BY a.due_date, a.id")
	if err := exe.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return toAssignments(rows), nil
}

func (repo assignmentRepository) QueryQuestions(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]assignment.Question, error) {
	exe := repo.getExec(exec)
	var rows []questionRow
	q := exe.Rebind("SELECT " + questionColumns + " FROM quiz_questions WHERE assignment_id = ? ORDER BY position, id")
	if err := exe.SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qs := make([]assignment.Question, 0, len(rows))
	for _, row := range rows {
		qs = append(qs, row.toQuestion())
	}
	return qs, nil
}

func (repo assignmentRepository) QueryUpcoming(ctx context.Context, studentID int, from time.Time, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	exe := repo.getExec(exec)
	var rows []assignmentRow
	q := exe.Rebind(`
		SELECT ` + assignmentColumns + `
		FROM assignments a
		JOIN enrollments e ON e.course_id = a.course_id
		WHERE e.user_id = ? AND a.due_date >= ?
		ORDER BY a.due_date, a.id`)
	if err := exe.SelectContext(ctx, &rows, q, studentID, core.ToMillis(from)); err != nil {
		return nil, errors.Wrap(err, "querying upcoming assignments")
	}
	return toAssignments(rows), nil
}
