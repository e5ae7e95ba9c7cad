package assignment

import "time"

// QuizBuilder assembles a quiz NewAssignment question by question.
// The zero value is not usable; call NewQuizBuilder.
type QuizBuilder struct {
	na NewAssignment
}

func NewQuizBuilder(courseID int, title string) *QuizBuilder {
	return &QuizBuilder{na: NewAssignment{CourseID: courseID, Title: title, Type: TypeQuiz}}
}

func (b *QuizBuilder) Describe(description string) *QuizBuilder {
	b.na.Description = description
	return b
}

func (b *QuizBuilder) Due(due time.Time) *QuizBuilder {
	b.na.DueDate = due
	return b
}

// AddQuestion appends a question; options are given in A, B, C, D order.
func (b *QuizBuilder) AddQuestion(text string, options [4]string, correct Option, points float64) *QuizBuilder {
	b.na.Questions = append(b.na.Questions, QuestionDraft{
		Text:          text,
		OptionA:       options[0],
		OptionB:       options[1],
		OptionC:       options[2],
		OptionD:       options[3],
		CorrectAnswer: correct,
		Points:        points,
	})
	return b
}

// Len returns the number of questions added so far.
func (b *QuizBuilder) Len() int { return len(b.na.Questions) }

// Build returns a copy of the accumulated NewAssignment, ready for Service.Create.
func (b *QuizBuilder) Build() NewAssignment {
	na := b.na
	na.Questions = append([]QuestionDraft(nil), b.na.Questions...)
	return na
}
