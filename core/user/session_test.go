package user

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
)

func TestSession_Authorize(t *testing.T) {
	tests := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleStudent, OpSubmit, true},
		{RoleTeacher, OpSubmit, false},
		{RoleTeacher, OpRecordGrade, true},
		{RoleCoordinator, OpRecordGrade, true},
		{RoleDirector, OpRecordGrade, false},
		{RoleSecretary, OpImportStudents, true},
		{RoleCoordinator, OpImportStudents, false},
		{RoleStudent, OpViewCourses, true},
		{RoleStudent, OpViewReports, false},
		{RoleDirector, OpCreateCourse, true},
		{RoleSecretary, OpCreateCourse, false},
		{"", OpViewCourses, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.role)+" "+string(tc.op), func(t *testing.T) {
			sess := Session{UserID: 1, Role: tc.role}
			err := sess.Authorize(tc.op)
			assert.Equal(t, tc.want, sess.Can(tc.op))
			if tc.want {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, core.ErrForbidden))
			assert.True(t, core.IsRecoverable(err))
		})
	}
}

func TestSession_AuthorizeSelf(t *testing.T) {
	student := Session{UserID: 5, Role: RoleStudent}
	assert.NoError(t, student.AuthorizeSelf(OpViewGrades, 5))
	assert.NoError(t, student.AuthorizeSelf(OpViewEnrollments, 5))
	assert.Error(t, student.AuthorizeSelf(OpViewGrades, 6))
	// only self-capable operations
	assert.Error(t, student.AuthorizeSelf(OpRecordGrade, 5))

	anonymous := Session{}
	assert.Error(t, anonymous.AuthorizeSelf(OpViewGrades, 0))

	teacher := Session{UserID: 9, Role: RoleTeacher}
	assert.NoError(t, teacher.AuthorizeSelf(OpViewGrades, 5))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" teacher ")
	assert.NoError(t, err)
	assert.Equal(t, RoleTeacher, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)
}

func TestCapabilities_Copy(t *testing.T) {
	roles := Capabilities(OpSubmit)
	roles[0] = RoleDirector
	assert.Equal(t, []Role{RoleStudent}, Capabilities(OpSubmit))
}
