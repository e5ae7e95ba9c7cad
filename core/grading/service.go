// Package grading derives and records grades on top of the record store:
// submissions, per-course averages, at-risk detection and quiz scoring.
package grading

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/user"
)

var ErrNotFound = errors.New("submission not found")

type (
	Repository interface {
		// CreateSubmission returns ErrAlreadySubmitted when the (assignment, student) pair exists.
		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		SubmissionExists(ctx context.Context, assignmentID, studentID int, exec ...core.DBExecutor) (bool, error)
		GetSubmissionByID(ctx context.Context, id int, exec ...core.DBExecutor) (Submission, error)
		// UpdateGrade overwrites grade, feedback and graded_at of sub.ID.
		UpdateGrade(ctx context.Context, sub Submission, exec ...core.DBExecutor) error
		// QuerySubmissions returns the submissions of assignmentID ordered by submission time, then id.
		QuerySubmissions(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]Submission, error)
		CreateQuizAnswers(ctx context.Context, answers []QuizAnswer, exec ...core.DBExecutor) error
		QueryQuizAnswers(ctx context.Context, submissionID int, exec ...core.DBExecutor) ([]QuizAnswer, error)
		// AverageGrade is the mean of the non-null grades of studentID in courseID; invalid when none.
		AverageGrade(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (null.Float64, error)
		// QueryCourseAverages returns every student enrolled in courseID with their average
		// (0 when ungraded), ordered by first name, last name, then id.
		QueryCourseAverages(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]StudentAverage, error)
	}

	Service struct {
		db          core.DB
		repo        Repository
		assignments assignment.Repository
		courses     course.Repository
		enrollments enrollment.Repository
		conf        *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	assignments assignment.Repository,
	courses course.Repository,
	enrollments enrollment.Repository,
	conf *core.Config,
) *Service {
	return &Service{
		db:          db,
		repo:        repo,
		assignments: assignments,
		courses:     courses,
		enrollments: enrollments,
		conf:        conf,
	}
}

// submissionTarget resolves the assignment a student submits to and checks enrollment.
func (svc *Service) submissionTarget(ctx context.Context, tx core.DBExecutor, studentID, assignmentID int) (assignment.Assignment, error) {
	asg, err := svc.assignments.GetAssignmentByID(ctx, assignmentID, tx)
	if err != nil {
		if err == assignment.ErrNotFound {
			return asg, core.NewReferenceError("assignment", assignmentID, "assignment does not exist")
		}
		return asg, errors.Wrap(err, "finding assignment")
	}
	enrolled, err := svc.enrollments.EnrollmentExists(ctx, studentID, asg.CourseID, tx)
	if err != nil {
		return asg, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return asg, core.NewReferenceError("student", studentID, "student is not enrolled in the assignment's course")
	}
	return asg, nil
}

// Submit records a non-quiz submission for the session's student.
// Each student submits at most once per assignment.
func (svc *Service) Submit(ctx context.Context, sess user.Session, assignmentID int, content string) (Submission, error) {
	if err := sess.Authorize(user.OpSubmit); err != nil {
		return Submission{}, err
	}

	var created Submission
	err := svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		asg, err := svc.submissionTarget(ctx, tx, sess.UserID, assignmentID)
		if err != nil {
			return err
		}
		if asg.IsQuiz() {
			return core.NewValidationError(nil, core.FieldError{
				Field: "assignment_id",
				Error: "quizzes are submitted with their answers",
			})
		}

		exists, err := svc.repo.SubmissionExists(ctx, asg.ID, sess.UserID, tx)
		if err != nil {
			return errors.Wrap(err, "checking existing submission")
		}
		if exists {
			return ErrAlreadySubmitted
		}

		created, err = svc.repo.CreateSubmission(ctx, Submission{
			AssignmentID: asg.ID,
			StudentID:    sess.UserID,
			SubmittedAt:  core.NowFunc().UTC(),
			Content:      core.CleanString(content),
		}, tx)
		return err
	})
	if err != nil {
		return Submission{}, err
	}
	return created, nil
}

// RecordGrade sets (or overwrites) the grade of a submission.
// The grade must lie in [0, max_points] of the submission's assignment.
func (svc *Service) RecordGrade(ctx context.Context, sess user.Session, submissionID int, grade float64, feedback string) (Submission, error) {
	if err := sess.Authorize(user.OpRecordGrade); err != nil {
		return Submission{}, err
	}

	var graded Submission
	err := svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		sub, err := svc.repo.GetSubmissionByID(ctx, submissionID, tx)
		if err != nil {
			if err == ErrNotFound {
				return core.NewReferenceError("submission", submissionID, "submission does not exist")
			}
			return errors.Wrap(err, "finding submission")
		}
		asg, err := svc.assignments.GetAssignmentByID(ctx, sub.AssignmentID, tx)
		if err != nil {
			return errors.Wrap(err, "finding assignment")
		}
		crs, err := svc.courses.GetCourseByID(ctx, asg.CourseID, tx)
		if err != nil {
			return errors.Wrap(err, "finding course")
		}
		if err = course.CheckTeaches(sess, crs); err != nil {
			return err
		}
		if !(grade >= 0 && grade <= asg.MaxPoints) {
			return core.NewOutOfRangeError("grade", grade, 0, asg.MaxPoints)
		}

		feedback = core.CleanString(feedback)
		sub.Grade = null.Float64From(grade)
		sub.Feedback = null.NewString(feedback, feedback != "")
		sub.GradedAt = null.TimeFrom(core.NowFunc().UTC())
		if err = svc.repo.UpdateGrade(ctx, sub, tx); err != nil {
			return err
		}
		graded = sub
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	return graded, nil
}

// AverageGrade returns the mean grade of a student in a course, 0.0 when nothing is graded.
// Ungraded and missing submissions are indistinguishable.
func (svc *Service) AverageGrade(ctx context.Context, sess user.Session, studentID, courseID int) (float64, error) {
	if err := sess.AuthorizeSelf(user.OpViewGrades, studentID); err != nil {
		return 0, err
	}
	avg, err := svc.repo.AverageGrade(ctx, studentID, courseID)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// CourseAverages lists every enrolled student of a course with their average grade.
func (svc *Service) CourseAverages(ctx context.Context, sess user.Session, courseID int) ([]StudentAverage, error) {
	if err := sess.Authorize(user.OpViewGrades); err != nil {
		return nil, err
	}
	ok, err := svc.canViewCourse(ctx, sess, courseID)
	if err != nil || !ok {
		return []StudentAverage{}, err
	}
	return svc.repo.QueryCourseAverages(ctx, courseID)
}

// AtRisk is AtRiskStudents with the configured threshold.
func (svc *Service) AtRisk(ctx context.Context, sess user.Session, courseID int) ([]StudentAverage, error) {
	return svc.AtRiskStudents(ctx, sess, courseID, svc.conf.Grading.AtRiskThreshold)
}

// AtRiskStudents returns the enrolled students whose average is below threshold.
// A 0.0 average always counts as at risk, so students without graded work are included.
func (svc *Service) AtRiskStudents(ctx context.Context, sess user.Session, courseID int, threshold float64) ([]StudentAverage, error) {
	avgs, err := svc.CourseAverages(ctx, sess, courseID)
	if err != nil {
		return nil, err
	}
	atRisk := make([]StudentAverage, 0)
	for _, sa := range avgs {
		if sa.Average < threshold || sa.Average == 0 {
			atRisk = append(atRisk, sa)
		}
	}
	return atRisk, nil
}

func (svc *Service) ListSubmissions(ctx context.Context, sess user.Session, assignmentID int) ([]Submission, error) {
	if err := sess.Authorize(user.OpViewGrades); err != nil {
		return nil, err
	}
	asg, err := svc.assignments.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if err == assignment.ErrNotFound {
			return []Submission{}, nil
		}
		return nil, err
	}
	ok, err := svc.canViewCourse(ctx, sess, asg.CourseID)
	if err != nil || !ok {
		return []Submission{}, err
	}
	return svc.repo.QuerySubmissions(ctx, assignmentID)
}

// GetSubmission returns a submission; students may only read their own.
func (svc *Service) GetSubmission(ctx context.Context, sess user.Session, id int) (Submission, bool, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return Submission{}, false, sess.Authorize(user.OpViewGrades)
		}
		return Submission{}, false, err
	}
	if err = sess.AuthorizeSelf(user.OpViewGrades, sub.StudentID); err != nil {
		return Submission{}, false, err
	}
	return sub, true, nil
}

// canViewCourse reports whether the course exists, and refuses TEACHERs of other courses.
func (svc *Service) canViewCourse(ctx context.Context, sess user.Session, courseID int) (bool, error) {
	crs, err := svc.courses.GetCourseByID(ctx, courseID)
	if err != nil {
		if err == course.ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding course")
	}
	if err = course.CheckTeaches(sess, crs); err != nil {
		return false, err
	}
	return true, nil
}
