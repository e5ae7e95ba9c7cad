package user

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

type Role string

// Roles
const (
	RoleTeacher     Role = "TEACHER"
	RoleStudent     Role = "STUDENT"
	RoleCoordinator Role = "COORDINATOR"
	RoleSecretary   Role = "SECRETARY"
	RoleDirector    Role = "DIRECTOR"
)

var (
	AllRoles   = []Role{RoleTeacher, RoleStudent, RoleCoordinator, RoleSecretary, RoleDirector}
	StaffRoles = []Role{RoleCoordinator, RoleSecretary, RoleDirector}

	rolePriorities = map[Role]int{
		RoleDirector:    50,
		RoleCoordinator: 40,
		RoleSecretary:   30,
		RoleTeacher:     20,
		RoleStudent:     10,
	}

	errUnknownRole = errors.New("unknown role")
)

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(core.CleanString(s)))
	if !r.Valid() {
		return "", errors.Wrapf(errUnknownRole, "%q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

func (r Role) String() string { return string(r) }

func RolePriority(role Role) int {
	return rolePriorities[role]
}

// Operation names a core operation guarded by the capability table.
type Operation string

const (
	OpCreateUser       Operation = "user:create"
	OpViewUsers        Operation = "user:view"
	OpImportStudents   Operation = "student:import"
	OpRegisterStudent  Operation = "student:register"
	OpCreateCourse     Operation = "course:create"
	OpViewCourses      Operation = "course:view"
	OpEnroll           Operation = "enrollment:create"
	OpViewEnrollments  Operation = "enrollment:view"
	OpCreateAssignment Operation = "assignment:create"
	OpViewAssignments  Operation = "assignment:view"
	OpSubmit           Operation = "submission:create"
	OpRecordGrade      Operation = "grade:record"
	OpViewGrades       Operation = "grade:view"
	OpViewReports      Operation = "report:view"
)

var (
	capabilities = map[Operation][]Role{
		OpCreateUser:       {RoleCoordinator, RoleSecretary, RoleDirector},
		OpViewUsers:        {RoleTeacher, RoleCoordinator, RoleSecretary, RoleDirector},
		OpImportStudents:   {RoleSecretary, RoleDirector},
		OpRegisterStudent:  {RoleCoordinator, RoleSecretary, RoleDirector},
		OpCreateCourse:     {RoleCoordinator, RoleDirector},
		OpViewCourses:      AllRoles,
		OpEnroll:           {RoleCoordinator, RoleSecretary, RoleDirector},
		OpViewEnrollments:  {RoleTeacher, RoleCoordinator, RoleSecretary, RoleDirector},
		OpCreateAssignment: {RoleTeacher, RoleCoordinator, RoleDirector},
		OpViewAssignments:  AllRoles,
		OpSubmit:           {RoleStudent},
		OpRecordGrade:      {RoleTeacher, RoleCoordinator},
		OpViewGrades:       {RoleTeacher, RoleCoordinator, RoleDirector},
		OpViewReports:      {RoleCoordinator, RoleSecretary, RoleDirector},
	}

	// operations a user may always perform on their own records
	selfCapabilities = map[Operation]bool{
		OpViewUsers:       true,
		OpViewEnrollments: true,
		OpViewGrades:      true,
	}
)

// Capabilities returns the roles allowed to perform op.
func Capabilities(op Operation) []Role {
	roles := capabilities[op]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
