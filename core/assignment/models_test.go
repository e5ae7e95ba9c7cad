package assignment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

var due = time.Date(2025, 9, 25, 23, 59, 0, 0, time.UTC)

func question(correct Option, points float64) QuestionDraft {
	return QuestionDraft{
		Text:          "What is 2 + 2?",
		OptionA:       "3",
		OptionB:       "4",
		OptionC:       "5",
		OptionD:       "22",
		CorrectAnswer: correct,
		Points:        points,
	}
}

func TestNewAssignment_Validate(t *testing.T) {
	missingOption := question(OptionB, 1)
	missingOption.OptionC = "  "

	tests := []struct {
		name          string
		na            NewAssignment
		wantField     string
		wantMaxPoints float64
	}{
		{
			name:      "empty",
			na:        NewAssignment{},
			wantField: "course_id",
		},
		{
			name:      "missing title",
			na:        NewAssignment{CourseID: 1, DueDate: due, MaxPoints: 10, Type: TypeHomework},
			wantField: "title",
		},
		{
			name:      "unknown type",
			na:        NewAssignment{CourseID: 1, Title: "Essay", DueDate: due, MaxPoints: 10, Type: "lab"},
			wantField: "type",
		},
		{
			name:          "homework",
			na:            NewAssignment{CourseID: 1, Title: "Essay", DueDate: due, MaxPoints: 10, Type: " Homework "},
			wantMaxPoints: 10,
		},
		{
			name:      "zero points homework",
			na:        NewAssignment{CourseID: 1, Title: "Essay", DueDate: due, Type: TypeHomework},
			wantField: "max_points",
		},
		{
			name: "homework with questions",
			na: NewAssignment{
				CourseID: 1, Title: "Essay", DueDate: due, MaxPoints: 10, Type: TypeHomework,
				Questions: []QuestionDraft{question(OptionA, 1)},
			},
			wantField: "questions",
		},
		{
			name:      "quiz without questions",
			na:        NewAssignment{CourseID: 1, Title: "Quiz 1", DueDate: due, MaxPoints: 10, Type: TypeQuiz},
			wantField: "questions",
		},
		{
			name: "quiz max points is the sum of question points",
			na: NewAssignment{
				CourseID: 1, Title: "Quiz 1", DueDate: due, MaxPoints: 100, Type: TypeQuiz,
				Questions: []QuestionDraft{question(OptionA, 1), question("b", 3)},
			},
			wantMaxPoints: 4,
		},
		{
			name: "quiz question missing option",
			na: NewAssignment{
				CourseID: 1, Title: "Quiz 1", DueDate: due, Type: TypeQuiz,
				Questions: []QuestionDraft{question(OptionA, 1), missingOption},
			},
			wantField: "questions[1].option_c",
		},
		{
			name: "quiz question with invalid answer",
			na: NewAssignment{
				CourseID: 1, Title: "Quiz 1", DueDate: due, Type: TypeQuiz,
				Questions: []QuestionDraft{question("E", 1)},
			},
			wantField: "questions[0].correct_answer",
		},
		{
			name: "quiz question without points",
			na: NewAssignment{
				CourseID: 1, Title: "Quiz 1", DueDate: due, Type: TypeQuiz,
				Questions: []QuestionDraft{question(OptionA, 2), question(OptionA, 0)},
			},
			wantField: "questions[1].points",
		},
		{
			name: "quiz whose only question has no points",
			na: NewAssignment{
				CourseID: 1, Title: "Quiz 1", DueDate: due, Type: TypeQuiz,
				Questions: []QuestionDraft{question(OptionA, 0)},
			},
			wantField: "questions[0].points",
		},
		{
			name: "quiz without title reports title first",
			na: NewAssignment{
				CourseID: 1, DueDate: due, Type: TypeQuiz,
				Questions: []QuestionDraft{question(OptionA, 0)},
			},
			wantField: "title",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.na.Validate()
			if tc.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.wantMaxPoints, tc.na.MaxPoints)
				return
			}
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tc.wantField, vErr.FirstField())
			assert.True(t, core.IsRecoverable(err))
		})
	}
}

func TestQuizBuilder(t *testing.T) {
	b := NewQuizBuilder(7, "Algorithms Quiz").
		Describe("Chapter 1").
		Due(due).
		AddQuestion("Big-O of binary search?", [4]string{"O(1)", "O(log n)", "O(n)", "O(n log n)"}, OptionB, 2).
		AddQuestion("Stable sort?", [4]string{"Quicksort", "Heapsort", "Mergesort", "Selection sort"}, OptionC, 3)
	assert.Equal(t, 2, b.Len())

	na := b.Build()
	assert.Equal(t, TypeQuiz, na.Type)
	assert.Equal(t, 7, na.CourseID)
	require.Len(t, na.Questions, 2)
	assert.Equal(t, "O(log n)", na.Questions[0].OptionB)

	require.NoError(t, na.Validate())
	assert.Equal(t, 5.0, na.MaxPoints)

	// later additions do not leak into built values
	b.AddQuestion("Extra?", [4]string{"a", "b", "c", "d"}, OptionD, 1)
	assert.Len(t, na.Questions, 2)
	assert.Equal(t, 3, b.Len())
}

func TestParseOption(t *testing.T) {
	for in, want := range map[string]bool{"A": true, " d ": true, "c": true, "E": false, "": false, "AB": false} {
		_, ok := ParseOption(in)
		assert.Equal(t, want, ok, in)
	}
}
