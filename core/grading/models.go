package grading

import (
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/user"
)

var (
	ErrAlreadySubmitted = core.DomainErr("a submission already exists for this assignment")
	ErrIncompleteQuiz   = core.DomainErr("quiz is incomplete")
)

type Submission struct {
	ID           int          `json:"id"`
	AssignmentID int          `json:"assignment_id"`
	StudentID    int          `json:"student_id"`
	SubmittedAt  time.Time    `json:"submitted_at"` // UTC
	Content      string       `json:"content"`
	Grade        null.Float64 `json:"grade"`
	Feedback     null.String  `json:"feedback"`
	GradedAt     null.Time    `json:"graded_at"` // UTC
}

func (s Submission) IsGraded() bool { return s.Grade.Valid }

type QuizAnswer struct {
	ID             int               `json:"id"`
	SubmissionID   int               `json:"submission_id"`
	QuestionID     int               `json:"question_id"`
	SelectedAnswer assignment.Option `json:"selected_answer"`
	IsCorrect      bool              `json:"is_correct"`
}

type QuestionResult struct {
	QuestionID int               `json:"question_id"`
	Selected   assignment.Option `json:"selected"`
	Correct    assignment.Option `json:"correct"`
	IsCorrect  bool              `json:"is_correct"`
	Points     float64           `json:"points"`
}

type QuizResult struct {
	Questions      []QuestionResult `json:"questions"`
	CorrectCount   int              `json:"correct_count"`
	PointsEarned   float64          `json:"points_earned"`
	PointsPossible float64          `json:"points_possible"`
	FinalGrade     float64          `json:"final_grade"`
	MaxPoints      float64          `json:"max_points"`
	SubmissionID   int              `json:"submission_id,omitempty"`
}

// StudentAverage is one row of a course's averages list.
type StudentAverage struct {
	Student user.User `json:"student"`
	Average float64   `json:"average"`
}

// IncompleteQuizError is returned when some questions have no answer.
type IncompleteQuizError struct {
	Missing int
}

func (err *IncompleteQuizError) Error() string {
	return fmt.Sprintf("%d question(s) left unanswered", err.Missing)
}

func (err *IncompleteQuizError) Is(target error) bool { return target == ErrIncompleteQuiz }
func (err *IncompleteQuizError) DomainError() bool     { return true }
