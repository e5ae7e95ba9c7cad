package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/grading"
	"github.com/trezcool/academia/core/user"
)

const submissionColumns = "id, assignment_id, student_id, submitted_at, content, grade, feedback, graded_at"

type submissionRow struct {
	ID           int          `db:"id"`
	AssignmentID int          `db:"assignment_id"`
	StudentID    int          `db:"student_id"`
	SubmittedAt  int64        `db:"submitted_at"`
	Content      string       `db:"content"`
	Grade        null.Float64 `db:"grade"`
	Feedback     null.String  `db:"feedback"`
	GradedAt     null.Int64   `db:"graded_at"`
}

func (row submissionRow) toSubmission() grading.Submission {
	sub := grading.Submission{
		ID:           row.ID,
		AssignmentID: row.AssignmentID,
		StudentID:    row.StudentID,
		SubmittedAt:  core.FromMillis(row.SubmittedAt),
		Content:      row.Content,
		Grade:        row.Grade,
		Feedback:     row.Feedback,
	}
	if row.GradedAt.Valid {
		sub.GradedAt = null.TimeFrom(core.FromMillis(row.GradedAt.Int64))
	}
	return sub
}

func gradedAtMillis(sub grading.Submission) null.Int64 {
	if !sub.GradedAt.Valid {
		return null.Int64{}
	}
	return null.Int64From(core.ToMillis(sub.GradedAt.Time))
}

type courseAverageRow struct {
	userRow
	Average float64 `db:"average"`
}

type submissionRepository struct {
	baseRepository
}

var _ grading.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{baseRepository{exec: exec}}
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, sub grading.Submission, exec ...core.DBExecutor) (grading.Submission, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO submissions (assignment_id, student_id, submitted_at, content, grade, feedback, graded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := exe.QueryRowxContext(ctx, q,
		sub.AssignmentID, sub.StudentID, core.ToMillis(sub.SubmittedAt), sub.Content, sub.Grade, sub.Feedback, gradedAtMillis(sub),
	).Scan(&sub.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return grading.Submission{}, grading.ErrAlreadySubmitted
		}
		return grading.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return submissionRow{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		SubmittedAt:  core.ToMillis(sub.SubmittedAt),
		Content:      sub.Content,
		Grade:        sub.Grade,
		Feedback:     sub.Feedback,
		GradedAt:     gradedAtMillis(sub),
	}.toSubmission(), nil
}

func (repo submissionRepository) SubmissionExists(ctx context.Context, assignmentID, studentID int, exec ...core.DBExecutor) (bool, error) {
	exe := repo.getExec(exec)
	var count int
	q := exe.Rebind("SELECT COUNT(*) FROM submissions WHERE assignment_id = ? AND student_id = ?")
	if err := exe.GetContext(ctx, &count, q, assignmentID, studentID); err != nil {
		return false, errors.Wrap(err, "checking submission")
	}
	return count > 0, nil
}

func (repo submissionRepository) GetSubmissionByID(ctx context.Context, id int, exec ...core.DBExecutor) (grading.Submission, error) {
	exe := repo.getExec(exec)
	var row submissionRow
	q := exe.Rebind("SELECT " + submissionColumns + " FROM submissions WHERE id = ?")
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return grading.Submission{}, trapNoRowsErr(err, grading.ErrNotFound, "finding submission by ID")
	}
	return row.toSubmission(), nil
}

func (repo submissionRepository) UpdateGrade(ctx context.Context, sub grading.Submission, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := exe.Rebind("UPDATE submissions SET grade = ?, feedback = ?, graded_at = ? WHERE id = ?")
	res, err := exe.ExecContext(ctx, q, sub.Grade, sub.Feedback, gradedAtMillis(sub), sub.ID)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grading.ErrNotFound
	}
	return nil
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]grading.Submission, error) {
	exe := repo.getExec(exec)
	var rows []submissionRow
	q := exe.Rebind("SELECT " + submissionColumns + " FROM submissions WHERE assignment_id = ? ORDER BY submitted_at, id")
	if err := exe.SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]grading.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubmission())
	}
	return subs, nil
}

func (repo submissionRepository) CreateQuizAnswers(ctx context.Context, answers []grading.QuizAnswer, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := exe.Rebind("INSERT INTO quiz_answers (submission_id, question_id, selected_answer, is_correct) VALUES (?, ?, ?, ?)")
	for _, ans := range answers {
		if _, err := exe.ExecContext(ctx, q, ans.SubmissionID, ans.QuestionID, string(ans.SelectedAnswer), ans.IsCorrect); err != nil {
			return errors.Wrapf(err, "inserting answer to question %d", ans.QuestionID)
		}
	}
	return nil
}

func (repo submissionRepository) QueryQuizAnswers(ctx context.Context, submissionID int, exec ...core.DBExecutor) ([]grading.QuizAnswer, error) {
	exe := repo.getExec(exec)
	var rows []struct {
		ID             int    `db:"id"`
		SubmissionID   int    `db:"submission_id"`
		QuestionID     int    `db:"question_id"`
		SelectedAnswer string `db:"selected_answer"`
		IsCorrect      bool   `db:"is_correct"`
	}
	q := exe.Rebind(`
		SELECT qa.id, qa.submission_id, qa.question_id, qa.selected_answer, qa.is_correct
		FROM quiz_answers qa
		JOIN quiz_questions qq ON qq.id = qa.question_id
		WHERE qa.submission_id = ?
		ORDER BY qq.position, qq.id`)
	if err := exe.SelectContext(ctx, &rows, q, submissionID); err != nil {
		return nil, errors.Wrap(err, "querying quiz answers")
	}
	answers := make([]grading.QuizAnswer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, grading.QuizAnswer{
			ID:             row.ID,
			SubmissionID:   row.SubmissionID,
			QuestionID:     row.QuestionID,
			SelectedAnswer: assignment.Option(row.SelectedAnswer),
			IsCorrect:      row.IsCorrect,
		})
	}
	return answers, nil
}

func (repo submissionRepository) AverageGrade(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (null.Float64, error) {
	exe := repo.getExec(exec)
	var avg null.Float64
	q := exe.Rebind(`
		SELECT AVG(s.grade)
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		WHERE s.student_id = ? AND a.course_id = ? AND s.grade IS NOT NULL`)
	if err := exe.GetContext(ctx, &avg, q, studentID, courseID); err != nil {
		return null.Float64{}, errors.Wrap(err, "computing average grade")
	}
	return avg, nil
}

func (repo submissionRepository) QueryCourseAverages(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]grading.StudentAverage, error) {
	exe := repo.getExec(exec)
	var rows []courseAverageRow
	q := exe.Rebind(`
		SELECT u.id, u.username, u.first_name, u.last_name, u.email, u.role, u.created_at,
			COALESCE(AVG(s.grade), 0) AS average
		FROM users u
		JOIN enrollments e ON e.user_id = u.id AND e.course_id = ?
		LEFT JOIN assignments a ON a.course_id = e.course_id
		LEFT JOIN submissions s ON s.assignment_id = a.id AND s.student_id = u.id
		WHERE u.role = ?
		GROUP BY u.id, u.username, u.first_name, u.last_name, u.email, u.role, u.created_at
		ORDER BY u.first_name, u.last_name, u.id`)
	if err := exe.SelectContext(ctx, &rows, q, courseID, string(user.RoleStudent)); err != nil {
		return nil, errors.Wrap(err, "querying course averages")
	}
	avgs := make([]grading.StudentAverage, 0, len(rows))
	for _, row := range rows {
		avgs = append(avgs, grading.StudentAverage{Student: row.toUser(), Average: row.Average})
	}
	return avgs, nil
}
