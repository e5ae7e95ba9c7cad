package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/user"
)

var ErrNotFound = errors.New("assignment not found")

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		CreateQuestions(ctx context.Context, qs []Question, exec ...core.DBExecutor) ([]Question, error)
		GetAssignmentByID(ctx context.Context, id int, exec ...core.DBExecutor) (Assignment, error)
		// QueryAssignments returns the assignments of courseID ordered by due date, then id.
		QueryAssignments(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]Assignment, error)
		// QueryQuestions returns the questions of assignmentID in position order.
		QueryQuestions(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]Question, error)
		// QueryUpcoming returns the assignments of the courses studentID is enrolled in,
		// due at or after from, ordered by due date.
		QueryUpcoming(ctx context.Context, studentID int, from time.Time, exec ...core.DBExecutor) ([]Assignment, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		courses course.Repository
	}
)

func NewService(db core.DB, repo Repository, courses course.Repository) *Service {
	return &Service{db: db, repo: repo, courses: courses}
}

// Create validates na and inserts the assignment with its questions in one transaction.
func (svc *Service) Create(ctx context.Context, sess user.Session, na NewAssignment) (Assignment, []Question, error) {
	if err := sess.Authorize(user.OpCreateAssignment); err != nil {
		return Assignment{}, nil, err
	}
	if err := na.Validate(); err != nil {
		return Assignment{}, nil, err
	}

	var (
		created   Assignment
		questions []Question
	)
	err := svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		crs, err := svc.courses.GetCourseByID(ctx, na.CourseID, tx)
		if err != nil {
			if err == course.ErrNotFound {
				return core.NewReferenceError("course", na.CourseID, "course does not exist")
			}
			return errors.Wrap(err, "finding course")
		}
		if err = course.CheckTeaches(sess, crs); err != nil {
			return err
		}

		created, err = svc.repo.CreateAssignment(ctx, Assignment{
			CourseID:    crs.ID,
			Title:       na.Title,
			Description: na.Description,
			DueDate:     na.DueDate.UTC(),
			MaxPoints:   na.MaxPoints,
			Type:        na.Type,
			CreatedAt:   core.NowFunc().UTC(),
		}, tx)
		if err != nil {
			return err
		}
		if len(na.Questions) == 0 {
			return nil
		}

		qs := make([]Question, 0, len(na.Questions))
		for i, qd := range na.Questions {
			qs = append(qs, Question{
				AssignmentID:  created.ID,
				Position:      i + 1,
				Text:          qd.Text,
				OptionA:       qd.OptionA,
				OptionB:       qd.OptionB,
				OptionC:       qd.OptionC,
				OptionD:       qd.OptionD,
				CorrectAnswer: qd.CorrectAnswer,
				Points:        qd.Points,
			})
		}
		questions, err = svc.repo.CreateQuestions(ctx, qs, tx)
		return err
	})
	if err != nil {
		return Assignment{}, nil, err
	}
	if questions == nil {
		questions = []Question{}
	}
	return created, questions, nil
}

// Get returns the Assignment with the given id; found is false if there is none.
func (svc *Service) Get(ctx context.Context, sess user.Session, id int) (asg Assignment, found bool, err error) {
	if err = sess.Authorize(user.OpViewAssignments); err != nil {
		return Assignment{}, false, err
	}
	asg, err = svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return Assignment{}, false, nil
		}
		return Assignment{}, false, err
	}
	return asg, true, nil
}

func (svc *Service) ListForCourse(ctx context.Context, sess user.Session, courseID int) ([]Assignment, error) {
	if err := sess.Authorize(user.OpViewAssignments); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignments(ctx, courseID)
}

// ListQuestions returns the questions of a quiz in order. Students get them without answers.
func (svc *Service) ListQuestions(ctx context.Context, sess user.Session, assignmentID int) ([]Question, error) {
	if err := sess.Authorize(user.OpViewAssignments); err != nil {
		return nil, err
	}
	qs, err := svc.repo.QueryQuestions(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if sess.IsStudent() {
		for i := range qs {
			qs[i] = qs[i].WithoutAnswer()
		}
	}
	return qs, nil
}

// UpcomingForStudent lists the deadlines from `from` onwards across the student's courses.
func (svc *Service) UpcomingForStudent(ctx context.Context, sess user.Session, studentID int, from time.Time) ([]Assignment, error) {
	if err := sess.AuthorizeSelf(user.OpViewEnrollments, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryUpcoming(ctx, studentID, from.UTC())
}
