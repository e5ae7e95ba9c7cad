package user_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/tests"
)

var ctx = context.Background()

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)

	nu := user.NewUser{
		Username:  "Carlos",
		Password:  "pass123",
		FirstName: "Carlos",
		LastName:  "Lima",
		Role:      user.RoleTeacher,
	}
	usr, err := env.Users.Create(ctx, testutil.CoordinatorSession, nu)
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, "carlos", usr.Username)
	assert.False(t, usr.Email.Valid)
	assert.NoError(t, usr.CheckPassword("pass123"))

	t.Run("duplicate username", func(t *testing.T) {
		dup := nu
		dup.Username = " CARLOS "
		_, err := env.Users.Create(ctx, testutil.CoordinatorSession, dup)
		assert.Equal(t, user.ErrUsernameExists, err)
		assert.True(t, core.IsRecoverable(err))
	})

	t.Run("role above own", func(t *testing.T) {
		dir := nu
		dir.Username = "boss"
		dir.Role = user.RoleDirector
		_, err := env.Users.Create(ctx, testutil.SecretarySession, dir)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "role", vErr.FirstField())
	})

	t.Run("forbidden", func(t *testing.T) {
		other := nu
		other.Username = "someone"
		_, err := env.Users.Create(ctx, user.Session{UserID: usr.ID, Role: user.RoleTeacher}, other)
		assert.True(t, errors.Is(err, core.ErrForbidden))
	})

	t.Run("ids are monotonic", func(t *testing.T) {
		next := nu
		next.Username = "carlos2"
		usr2, err := env.Users.Create(ctx, testutil.CoordinatorSession, next)
		require.NoError(t, err)
		assert.Greater(t, usr2.ID, usr.ID)
	})
}

func TestService_Get(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "ana@school.edu", user.RoleStudent)

	got, found, err := env.Users.Get(ctx, testutil.DirectorSession, ana.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, ana.Username, got.Username)
	assert.Equal(t, "ana@school.edu", got.Email.String)

	_, found, err = env.Users.Get(ctx, testutil.DirectorSession, ana.ID+100)
	assert.NoError(t, err)
	assert.False(t, found)

	// students may read themselves only
	_, found, err = env.Users.Get(ctx, ana.Session(), ana.ID)
	assert.NoError(t, err)
	assert.True(t, found)
	_, _, err = env.Users.Get(ctx, ana.Session(), ana.ID+1)
	assert.True(t, errors.Is(err, core.ErrForbidden))
}

func TestService_SearchStudents(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.CreateUser(t, env.UserRepo, "maria", "Maria", "Santos", "", user.RoleStudent)
	testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "", user.RoleStudent)
	testutil.CreateUser(t, env.UserRepo, "pedro", "Pedro", "Silveira", "", user.RoleStudent)
	testutil.CreateUser(t, env.UserRepo, "prof", "Paulo", "Silva", "", user.RoleTeacher)

	names := func(users []user.User) []string {
		out := make([]string, 0, len(users))
		for _, u := range users {
			out = append(out, u.FullName())
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Ana Silva", "Maria Santos", "Pedro Silveira"}},
		{"SILV", []string{"Ana Silva", "Pedro Silveira"}},
		{"mar", []string{"Maria Santos"}},
		{"nobody", []string{}},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("query %q", tc.query), func(t *testing.T) {
			got, err := env.Users.SearchStudents(ctx, testutil.SecretarySession, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	env := testutil.NewEnv(t)
	ana := testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "", user.RoleStudent)

	usr, err := env.Users.Authenticate(ctx, " ANA ", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, usr.ID)
	assert.Equal(t, user.Session{UserID: ana.ID, Role: user.RoleStudent}, usr.Session())

	_, err = env.Users.Authenticate(ctx, "ana", "wrong-secret")
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	_, err = env.Users.Authenticate(ctx, "ghost", testutil.Password)
	assert.Equal(t, user.ErrAuthenticationFailed, err)
}

func TestService_Register(t *testing.T) {
	env := testutil.NewEnv(t)
	req := user.RegistrationRequest{
		FirstName: "Joana",
		LastName:  "Pereira",
		Username:  "joana",
		Password:  "pass123",
		Email:     "joana@school.edu",
	}

	resp, err := env.Users.Register(ctx, testutil.SecretarySession, req)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.StudentID)

	usr, found, err := env.Users.Get(ctx, testutil.DirectorSession, resp.StudentID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, user.RoleStudent, usr.Role)

	t.Run("duplicate username", func(t *testing.T) {
		resp, err := env.Users.Register(ctx, testutil.SecretarySession, req)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, user.CodeUsernameExists, resp.Code)
		assert.Equal(t, user.ErrUsernameExists.Error(), resp.Error)
	})

	t.Run("missing email", func(t *testing.T) {
		bad := req
		bad.Username = "joana2"
		bad.Email = ""
		resp, err := env.Users.Register(ctx, testutil.SecretarySession, bad)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, user.CodeInvalidInput, resp.Code)
		assert.Contains(t, resp.Error, "email")
	})

	t.Run("forbidden", func(t *testing.T) {
		other := req
		other.Username = "joana3"
		resp, err := env.Users.Register(ctx, user.Session{UserID: usr.ID, Role: user.RoleStudent}, other)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, user.CodeForbidden, resp.Code)
	})
}

func TestService_ImportStudents(t *testing.T) {
	env := testutil.NewEnv(t)
	existing := testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "old@school.edu", user.RoleStudent)
	testutil.CreateUser(t, env.UserRepo, "prof", "Paulo", "Souza", "", user.RoleTeacher)

	rows := []user.ImportRow{
		{Username: "ana", FirstName: "Ana Maria", LastName: "Silva", Email: "ana@school.edu", Password: "newpass1"},
		{Username: "bruno", FirstName: "Bruno", LastName: "Costa", Email: "bruno@school.edu"},
		{Username: "prof", FirstName: "Paulo", LastName: "Souza", Email: "paulo@school.edu"},
		{Username: "nomail", FirstName: "No", LastName: "Mail"},
	}
	res, err := env.Users.ImportStudents(ctx, testutil.SecretarySession, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Failed())
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], "row 3:")
	assert.Contains(t, res.Errors[1], "row 4:")

	// existing student refreshed in place
	ana, found, err := env.Users.Get(ctx, testutil.DirectorSession, existing.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ana Maria", ana.FirstName)
	assert.Equal(t, "ana@school.edu", ana.Email.String)
	_, err = env.Users.Authenticate(ctx, "ana", "newpass1")
	assert.NoError(t, err)

	// new student gets the default password
	_, err = env.Users.Authenticate(ctx, "bruno", env.Conf.Import.DefaultPassword)
	assert.NoError(t, err)

	// teacher left untouched
	prof, err := env.Users.Authenticate(ctx, "prof", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, prof.Role)
}

func TestService_ImportStudents_DefaultPassword(t *testing.T) {
	env := testutil.NewEnv(t)

	rows := []user.ImportRow{
		// looks like the default password, which is not the row's own choice
		{Username: "daniel123", FirstName: "Daniel", LastName: "Costa", Email: "daniel@school.edu"},
		{Username: "ab", FirstName: "Abel", LastName: "Brito", Email: "ab@school.edu"},
		{Username: "daniel2", FirstName: "Daniel", LastName: "Lopes", Email: "dl@school.edu", Password: "daniel2024"},
	}
	res, err := env.Users.ImportStudents(ctx, testutil.SecretarySession, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 2)
	assert.True(t, strings.HasPrefix(res.Errors[0], "row 2: username"), res.Errors[0])
	assert.True(t, strings.HasPrefix(res.Errors[1], "row 3: password"), res.Errors[1])

	usr, err := env.Users.Authenticate(ctx, "daniel123", env.Conf.Import.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
}

func TestService_ImportStudents_ErrorOverflow(t *testing.T) {
	env := testutil.NewEnv(t)

	rows := make([]user.ImportRow, 0, 8)
	for i := 1; i <= 8; i++ {
		rows = append(rows, user.ImportRow{Username: fmt.Sprintf("s%d", i), FirstName: "", LastName: "X", Email: "x@school.edu"})
	}
	rows = append(rows, user.ImportRow{Username: "valid", FirstName: "Val", LastName: "Id", Email: "val@school.edu"})

	res, err := env.Users.ImportStudents(ctx, testutil.SecretarySession, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Len(t, res.Errors, 5)
	assert.Equal(t, 3, res.MoreErrors)
	assert.Equal(t, 8, res.Failed())
	assert.Contains(t, res.Errors[0], "row 1:")
	assert.Contains(t, res.Errors[4], "row 5:")
}

func TestService_ImportStudents_Forbidden(t *testing.T) {
	env := testutil.NewEnv(t)
	_, err := env.Users.ImportStudents(ctx, testutil.CoordinatorSession, nil)
	assert.True(t, errors.Is(err, core.ErrForbidden))
}
