package grading

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/user"
)

// Answers maps question ids to the selected option.
type Answers map[int]assignment.Option

// ScoreQuiz grades answers against questions. Unanswered questions count as wrong.
// The final grade is the share of points earned scaled to maxPoints, so it always lies in [0, maxPoints].
func ScoreQuiz(questions []assignment.Question, answers Answers, maxPoints float64) QuizResult {
	res := QuizResult{
		Questions: make([]QuestionResult, 0, len(questions)),
		MaxPoints: maxPoints,
	}
	for _, q := range questions {
		selected := answers[q.ID]
		correct := selected != "" && selected == q.CorrectAnswer
		res.Questions = append(res.Questions, QuestionResult{
			QuestionID: q.ID,
			Selected:   selected,
			Correct:    q.CorrectAnswer,
			IsCorrect:  correct,
			Points:     q.Points,
		})
		res.PointsPossible += q.Points
		if correct {
			res.CorrectCount++
			res.PointsEarned += q.Points
		}
	}
	if res.PointsPossible > 0 && maxPoints > 0 {
		res.FinalGrade = res.PointsEarned / res.PointsPossible * maxPoints
	}
	if res.FinalGrade > maxPoints {
		res.FinalGrade = maxPoints
	}
	return res
}

// CheckAnswers normalises answers in place and validates them against questions.
// Unknown question ids and invalid letters give a *core.ValidationError;
// unanswered questions give an *IncompleteQuizError.
func CheckAnswers(questions []assignment.Question, answers Answers) error {
	known := make(map[int]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var flds []core.FieldError
	for _, id := range ids {
		field := fmt.Sprintf("answers[%d]", id)
		if !known[id] {
			flds = append(flds, core.FieldError{Field: field, Error: "unknown question"})
			continue
		}
		opt, ok := assignment.ParseOption(string(answers[id]))
		if !ok {
			flds = append(flds, core.FieldError{Field: field, Error: "must be one of A, B, C or D"})
			continue
		}
		answers[id] = opt
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}

	missing := 0
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			missing++
		}
	}
	if missing > 0 {
		return &IncompleteQuizError{Missing: missing}
	}
	return nil
}

// SubmitQuiz scores and stores a quiz attempt of the session's student.
// The submission, its answers and its grade are written in one transaction; nothing is
// written when the answers are invalid or the student already submitted.
func (svc *Service) SubmitQuiz(ctx context.Context, sess user.Session, assignmentID int, answers Answers) (QuizResult, error) {
	if err := sess.Authorize(user.OpSubmit); err != nil {
		return QuizResult{}, err
	}
	if answers == nil {
		answers = Answers{}
	}

	var res QuizResult
	err := svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		asg, err := svc.submissionTarget(ctx, tx, sess.UserID, assignmentID)
		if err != nil {
			return err
		}
		if !asg.IsQuiz() {
			return core.NewValidationError(nil, core.FieldError{
				Field: "assignment_id",
				Error: fmt.Sprintf("assignment is a %s, not a quiz", asg.Type),
			})
		}

		questions, err := svc.assignments.QueryQuestions(ctx, asg.ID, tx)
		if err != nil {
			return errors.Wrap(err, "loading questions")
		}
		if err = CheckAnswers(questions, answers); err != nil {
			return err
		}

		exists, err := svc.repo.SubmissionExists(ctx, asg.ID, sess.UserID, tx)
		if err != nil {
			return errors.Wrap(err, "checking existing submission")
		}
		if exists {
			return ErrAlreadySubmitted
		}

		res = ScoreQuiz(questions, answers, asg.MaxPoints)
		now := core.NowFunc().UTC()
		sub, err := svc.repo.CreateSubmission(ctx, Submission{
			AssignmentID: asg.ID,
			StudentID:    sess.UserID,
			SubmittedAt:  now,
			Content:      fmt.Sprintf("quiz: %d/%d correct", res.CorrectCount, len(questions)),
			Grade:        null.Float64From(res.FinalGrade),
			GradedAt:     null.TimeFrom(now),
		}, tx)
		if err != nil {
			return err
		}
		res.SubmissionID = sub.ID

		qas := make([]QuizAnswer, 0, len(res.Questions))
		for _, qr := range res.Questions {
			qas = append(qas, QuizAnswer{
				SubmissionID:   sub.ID,
				QuestionID:     qr.QuestionID,
				SelectedAnswer: qr.Selected,
				IsCorrect:      qr.IsCorrect,
			})
		}
		return svc.repo.CreateQuizAnswers(ctx, qas, tx)
	})
	if err != nil {
		return QuizResult{}, err
	}
	return res, nil
}

// QuizAnswers returns the stored answers of a quiz submission.
func (svc *Service) QuizAnswers(ctx context.Context, sess user.Session, submissionID int) ([]QuizAnswer, error) {
	if _, found, err := svc.GetSubmission(ctx, sess, submissionID); err != nil || !found {
		return []QuizAnswer{}, err
	}
	return svc.repo.QueryQuizAnswers(ctx, submissionID)
}
