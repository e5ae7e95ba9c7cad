package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/tests"
)

var ctx = context.Background()

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	teacher := testutil.CreateUser(t, env.UserRepo, "prof", "Carlos", "Lima", "", user.RoleTeacher)
	other := testutil.CreateUser(t, env.UserRepo, "prof2", "Rita", "Alves", "", user.RoleTeacher)
	crs := testutil.CreateCourse(t, env.CourseRepo, "Algorithms", teacher.ID)
	due := time.Now().Add(7 * 24 * time.Hour).UTC()

	t.Run("quiz", func(t *testing.T) {
		na := assignment.NewQuizBuilder(crs.ID, "Quiz 1").
			Due(due).
			AddQuestion("Q1", [4]string{"a", "b", "c", "d"}, assignment.OptionA, 1).
			AddQuestion("Q2", [4]string{"a", "b", "c", "d"}, assignment.OptionB, 3).
			Build()
		na.MaxPoints = 50

		asg, qs, err := env.Assignments.Create(ctx, teacher.Session(), na)
		require.NoError(t, err)
		assert.Equal(t, 4.0, asg.MaxPoints)
		assert.Equal(t, assignment.TypeQuiz, asg.Type)
		require.Len(t, qs, 2)
		assert.Equal(t, 1, qs[0].Position)
		assert.Equal(t, asg.ID, qs[1].AssignmentID)

		stored, err := env.Assignments.ListQuestions(ctx, teacher.Session(), asg.ID)
		require.NoError(t, err)
		assert.Equal(t, qs, stored)

		// students never see the answer key
		student := user.Session{UserID: 99, Role: user.RoleStudent}
		hidden, err := env.Assignments.ListQuestions(ctx, student, asg.ID)
		require.NoError(t, err)
		for _, q := range hidden {
			assert.Empty(t, q.CorrectAnswer)
		}
	})

	t.Run("homework", func(t *testing.T) {
		asg, qs, err := env.Assignments.Create(ctx, testutil.CoordinatorSession, assignment.NewAssignment{
			CourseID:  crs.ID,
			Title:     "Essay",
			DueDate:   due,
			MaxPoints: 10,
			Type:      assignment.TypeHomework,
		})
		require.NoError(t, err)
		assert.Empty(t, qs)
		got, found, err := env.Assignments.Get(ctx, teacher.Session(), asg.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "Essay", got.Title)
		assert.True(t, due.Truncate(time.Millisecond).Equal(got.DueDate))
	})

	failures := []struct {
		name    string
		sess    user.Session
		na      assignment.NewAssignment
		wantErr error
	}{
		{
			name:    "unknown course",
			sess:    testutil.CoordinatorSession,
			na:      assignment.NewAssignment{CourseID: 999, Title: "X", DueDate: due, MaxPoints: 10, Type: assignment.TypeExam},
			wantErr: core.ErrInvalidReference,
		},
		{
			name:    "teacher of another course",
			sess:    other.Session(),
			na:      assignment.NewAssignment{CourseID: crs.ID, Title: "X", DueDate: due, MaxPoints: 10, Type: assignment.TypeExam},
			wantErr: core.ErrForbidden,
		},
		{
			name:    "student",
			sess:    user.Session{UserID: 1, Role: user.RoleStudent},
			na:      assignment.NewAssignment{CourseID: crs.ID, Title: "X", DueDate: due, MaxPoints: 10, Type: assignment.TypeExam},
			wantErr: core.ErrForbidden,
		},
	}
	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.Assignments.Create(ctx, tc.sess, tc.na)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}

	t.Run("invalid quiz writes nothing", func(t *testing.T) {
		before, err := env.Assignments.ListForCourse(ctx, teacher.Session(), crs.ID)
		require.NoError(t, err)

		na := assignment.NewQuizBuilder(crs.ID, "Broken").Due(due).
			AddQuestion("Q1", [4]string{"a", "b", "", "d"}, assignment.OptionA, 1).
			Build()
		_, _, err = env.Assignments.Create(ctx, teacher.Session(), na)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "questions[0].option_c", vErr.FirstField())

		after, err := env.Assignments.ListForCourse(ctx, teacher.Session(), crs.ID)
		require.NoError(t, err)
		assert.Equal(t, len(before), len(after))
	})
}

func TestService_UpcomingForStudent(t *testing.T) {
	env := testutil.NewEnv(t)
	teacher := testutil.CreateUser(t, env.UserRepo, "prof", "Carlos", "Lima", "", user.RoleTeacher)
	ana := testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "", user.RoleStudent)
	algo := testutil.CreateCourse(t, env.CourseRepo, "Algorithms", teacher.ID)
	web := testutil.CreateCourse(t, env.CourseRepo, "Web Development", teacher.ID)
	other := testutil.CreateCourse(t, env.CourseRepo, "Compilers", teacher.ID)
	testutil.Enroll(t, env.EnrollmentRepo, ana.ID, algo.ID)
	testutil.Enroll(t, env.EnrollmentRepo, ana.ID, web.ID)

	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	testutil.CreateAssignment(t, env.AssignmentRepo, algo.ID, "Past", assignment.TypeHomework, 10, now.Add(-24*time.Hour))
	late := testutil.CreateAssignment(t, env.AssignmentRepo, algo.ID, "Project", assignment.TypeProject, 10, now.Add(72*time.Hour))
	soon := testutil.CreateAssignment(t, env.AssignmentRepo, web.ID, "Lab", assignment.TypeHomework, 10, now.Add(24*time.Hour))
	testutil.CreateAssignment(t, env.AssignmentRepo, other.ID, "Not mine", assignment.TypeExam, 10, now.Add(48*time.Hour))

	upcoming, err := env.Assignments.UpcomingForStudent(ctx, ana.Session(), ana.ID, now)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, soon.ID, upcoming[0].ID)
	assert.Equal(t, late.ID, upcoming[1].ID)

	_, err = env.Assignments.UpcomingForStudent(ctx, user.Session{UserID: ana.ID + 100, Role: user.RoleStudent}, ana.ID, now)
	assert.True(t, errors.Is(err, core.ErrForbidden))
}
