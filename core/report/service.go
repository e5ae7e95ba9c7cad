package report

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

var ErrUnknownKind = core.DomainErr("unknown report kind")

type (
	EnrollmentRow struct {
		Student string
		Email   null.String
		Courses null.String // course names joined with ", "; invalid when not enrolled
	}

	AcademicRow struct {
		Student string
		Course  string
		Average float64 // 0 when nothing is graded
	}

	ContactRow struct {
		Student  string
		Username string
		Email    null.String
	}

	SummaryRow struct {
		Student        string
		Username       string
		Email          null.String
		CourseCount    int64
		OverallAverage null.Float64 // invalid when nothing is graded
	}

	// Repository queries are ordered by student display name, then id
	// (then course name for AcademicRows).
	Repository interface {
		QueryEnrollmentRows(ctx context.Context, exec ...core.DBExecutor) ([]EnrollmentRow, error)
		QueryAcademicRows(ctx context.Context, exec ...core.DBExecutor) ([]AcademicRow, error)
		QueryContactRows(ctx context.Context, exec ...core.DBExecutor) ([]ContactRow, error)
		QuerySummaryRows(ctx context.Context, exec ...core.DBExecutor) ([]SummaryRow, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Generate builds the report of the given kind. It never writes.
func (svc *Service) Generate(ctx context.Context, sess user.Session, kind Kind) (Report, error) {
	if err := sess.Authorize(user.OpViewReports); err != nil {
		return Report{}, err
	}

	rep := newReport(kind)
	switch kind {
	case KindEnrollment:
		rows, err := svc.repo.QueryEnrollmentRows(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying enrollment report")
		}
		for _, r := range rows {
			rep.add(TextOf(r.Student), Text(r.Email), Text(r.Courses))
		}
	case KindAcademic:
		rows, err := svc.repo.QueryAcademicRows(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying academic report")
		}
		for _, r := range rows {
			rep.add(TextOf(r.Student), TextOf(r.Course), FractionOf(r.Average))
		}
	case KindContact:
		rows, err := svc.repo.QueryContactRows(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying contact report")
		}
		for _, r := range rows {
			rep.add(TextOf(r.Student), TextOf(r.Username), Text(r.Email))
		}
	case KindSummary:
		rows, err := svc.repo.QuerySummaryRows(ctx)
		if err != nil {
			return Report{}, errors.Wrap(err, "querying summary report")
		}
		for _, r := range rows {
			rep.add(TextOf(r.Student), TextOf(r.Username), Text(r.Email), IntegerOf(r.CourseCount), Fraction(r.OverallAverage))
		}
	default:
		return Report{}, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}
	return rep, nil
}
