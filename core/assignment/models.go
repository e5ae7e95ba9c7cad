package assignment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type Type string

const (
	TypeHomework Type = "homework"
	TypeQuiz     Type = "quiz"
	TypeProject  Type = "project"
	TypeExam     Type = "exam"
)

var AllTypes = []Type{TypeHomework, TypeQuiz, TypeProject, TypeExam}

func (t Type) Valid() bool {
	for _, typ := range AllTypes {
		if t == typ {
			return true
		}
	}
	return false
}

// Option is a multiple-choice letter.
type Option string

const (
	OptionA Option = "A"
	OptionB Option = "B"
	OptionC Option = "C"
	OptionD Option = "D"
)

var AllOptions = []Option{OptionA, OptionB, OptionC, OptionD}

func ParseOption(s string) (Option, bool) {
	o := Option(strings.ToUpper(core.CleanString(s)))
	return o, o.Valid()
}

func (o Option) Valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Assignment struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"` // UTC
	MaxPoints   float64   `json:"max_points"`
	Type        Type      `json:"type"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

func (a Assignment) IsQuiz() bool { return a.Type == TypeQuiz }

type Question struct {
	ID            int     `json:"id"`
	AssignmentID  int     `json:"assignment_id"`
	Position      int     `json:"position"`
	Text          string  `json:"question_text"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	CorrectAnswer Option  `json:"correct_answer,omitempty"`
	Points        float64 `json:"points"`
}

// Options returns the option texts keyed by letter.
func (q Question) Options() map[Option]string {
	return map[Option]string{OptionA: q.OptionA, OptionB: q.OptionB, OptionC: q.OptionC, OptionD: q.OptionD}
}

// WithoutAnswer strips the answer key, for students.
func (q Question) WithoutAnswer() Question {
	q.CorrectAnswer = ""
	return q
}

// QuestionDraft is one question of a quiz under construction.
type QuestionDraft struct {
	Text          string  `json:"question_text" validate:"required,notblank"`
	OptionA       string  `json:"option_a" validate:"required,notblank"`
	OptionB       string  `json:"option_b" validate:"required,notblank"`
	OptionC       string  `json:"option_c" validate:"required,notblank"`
	OptionD       string  `json:"option_d" validate:"required,notblank"`
	CorrectAnswer Option  `json:"correct_answer" validate:"required,option"`
	Points        float64 `json:"points" validate:"gt=0"`
}

func (qd *QuestionDraft) clean() {
	qd.Text = core.CleanString(qd.Text)
	qd.OptionA = core.CleanString(qd.OptionA)
	qd.OptionB = core.CleanString(qd.OptionB)
	qd.OptionC = core.CleanString(qd.OptionC)
	qd.OptionD = core.CleanString(qd.OptionD)
	qd.CorrectAnswer = Option(strings.ToUpper(core.CleanString(string(qd.CorrectAnswer))))
}

// NewAssignment contains information needed to create a new Assignment.
// Questions are required for quizzes, and forbidden otherwise.
type NewAssignment struct {
	CourseID    int             `json:"course_id" validate:"required,gt=0"`
	Title       string          `json:"title" validate:"required,notblank,max=200"`
	Description string          `json:"description"`
	DueDate     time.Time       `json:"due_date" validate:"required"`
	MaxPoints   float64         `json:"max_points" validate:"gt=0"`
	Type        Type            `json:"type" validate:"required,assignmenttype"`
	Questions   []QuestionDraft `json:"questions" validate:"dive"`
}

// Validate cleans na and, for quizzes, overwrites MaxPoints with the sum of question points.
// The first field of the returned *core.ValidationError is the first missing field.
func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Type = Type(strings.ToLower(core.CleanString(string(na.Type))))
	for i := range na.Questions {
		na.Questions[i].clean()
	}

	if na.Type == TypeQuiz && len(na.Questions) > 0 {
		na.MaxPoints = na.questionPoints()
	}

	var qErr *core.FieldError
	switch {
	case na.Type == TypeQuiz && len(na.Questions) == 0:
		qErr = &core.FieldError{Field: "questions", Error: "a quiz needs at least one question"}
	case na.Type != TypeQuiz && len(na.Questions) > 0:
		qErr = &core.FieldError{
			Field: "questions",
			Error: fmt.Sprintf("questions are only allowed for %s assignments", TypeQuiz),
		}
	}

	err := core.ValidateStruct(na)
	var vErr *core.ValidationError
	if na.Type == TypeQuiz && len(na.Questions) > 0 && errors.As(err, &vErr) {
		// a quiz's max_points is derived, its question points carry the error
		err = withoutField(vErr, "max_points")
	}
	if qErr == nil {
		return err
	}
	if errors.As(err, &vErr) {
		vErr.Fields = append(vErr.Fields, *qErr)
		return vErr
	}
	if err != nil {
		return err
	}
	return core.NewValidationError(nil, *qErr)
}

func withoutField(vErr *core.ValidationError, field string) error {
	flds := make([]core.FieldError, 0, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		if fld.Field != field {
			flds = append(flds, fld)
		}
	}
	if len(flds) == len(vErr.Fields) {
		return vErr
	}
	if len(flds) == 0 {
		return nil
	}
	return core.NewValidationError(nil, flds...)
}

func (na NewAssignment) questionPoints() float64 {
	var total float64
	for _, q := range na.Questions {
		total += q.Points
	}
	return total
}

var (
	assignmentTypeTag  = "assignmenttype"
	assignmentTypeText = "must be one of homework, quiz, project or exam"

	optionTag  = "option"
	optionText = "must be one of A, B, C or D"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(assignmentTypeTag, func(fl validator.FieldLevel) bool {
		return Type(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(assignmentTypeTag, assignmentTypeText)

	_ = core.Validate.RegisterValidation(optionTag, func(fl validator.FieldLevel) bool {
		return Option(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(optionTag, optionText)
}
