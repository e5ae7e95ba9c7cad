package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/tests"
)

var ctx = context.Background()

func setup(t *testing.T) (*commandLine, *testutil.Env, *bytes.Buffer) {
	env := testutil.NewEnv(t)
	out := new(bytes.Buffer)
	cli := newCommandLine(env.Conf, env.DB, env.Logger)
	cli.out = out
	return cli, env, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	gooseRunFunc = func(_ context.Context, command string, db *sql.DB, dir string, args ...string) error {
		if dir != "migrations/sqlite" {
			return fmt.Errorf("unexpected dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "grades_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, env, _ := setup(t)
	usr := testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "ana@school.edu", user.RoleStudent)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "n3wsecret"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", "ANA"}, extra: extra{pwd: "n3wsecret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			refreshed, err := env.UserRepo.GetUserByID(ctx, usr.ID)
			require.NoError(t, err)
			assert.False(t, bytes.Equal(refreshed.PasswordHash, usr.PasswordHash), "failed to update password")
			assert.NoError(t, refreshed.CheckPassword("n3wsecret"))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, env, out := setup(t)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("t0pS3cret"), nil }

	err := cli.run([]string{"admin", "adduser", "-username", "Rita", "-first", "Rita", "-last", "Alves", "-role", "teacher"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `created TEACHER "rita"`)

	usr, err := env.UserRepo.GetUserByUsername(ctx, "rita")
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)

	assert.Equal(t, errHelp, cli.run([]string{"admin", "adduser", "-username", "x"}))
	err = cli.run([]string{"admin", "adduser", "-username", "bob", "-first", "B", "-last", "C", "-role", "janitor"})
	assert.Error(t, err)
	err = cli.run([]string{"admin", "adduser", "-username", "rita", "-first", "Rita", "-last", "Alves", "-role", "teacher"})
	assert.Equal(t, user.ErrUsernameExists, err)
}

func Test_commandLine_externalModule(t *testing.T) {
	cli, env, out := setup(t)
	teacher := testutil.CreateUser(t, env.UserRepo, "prof", "Carlos", "Lima", "", user.RoleTeacher)
	algo := testutil.CreateCourse(t, env.CourseRepo, "Algorithms", teacher.ID)
	web := testutil.CreateCourse(t, env.CourseRepo, "Web Development", teacher.ID)

	run := func(args ...string) (string, error) {
		out.Reset()
		err := cli.run(append([]string{"admin"}, args...))
		return out.String(), err
	}

	// register
	stdout, err := run("register", "ana", "pass123", "Ana", "Silva", "ana@school.edu")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "REGISTER_SUCCESS", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "STUDENT_ID:"))
	studentID, err := strconv.Atoi(strings.TrimPrefix(lines[1], "STUDENT_ID:"))
	require.NoError(t, err)

	stdout, err = run("register", "ana", "pass123", "Ana", "Souza", "ana2@school.edu")
	assert.Equal(t, errFailed, err)
	assert.Equal(t, "REGISTER_FAILED:USERNAME_EXISTS\n", stdout)

	stdout, err = run("register", "bia", "pass123", "Bia", "Rocha", "not-an-email")
	assert.Equal(t, errFailed, err)
	assert.True(t, strings.HasPrefix(stdout, "REGISTER_FAILED:INVALID_INPUT\n"))

	_, err = run("register", "too", "few")
	assert.Equal(t, errHelp, err)

	// enroll
	stdout, err = run("enroll", strconv.Itoa(studentID), strconv.Itoa(algo.ID), strconv.Itoa(web.ID))
	require.NoError(t, err)
	assert.Equal(t, "ENROLL_SUCCESS\nNEW_ENROLLMENTS:2\n", stdout)

	stdout, err = run("enroll", strconv.Itoa(studentID), strconv.Itoa(algo.ID))
	require.NoError(t, err)
	assert.Equal(t, "ENROLL_SUCCESS\nNEW_ENROLLMENTS:0\n", stdout)

	stdout, err = run("enroll", strconv.Itoa(teacher.ID), strconv.Itoa(algo.ID))
	assert.Equal(t, errFailed, err)
	assert.True(t, strings.HasPrefix(stdout, "ENROLL_FAILED\n"))

	_, err = run("enroll", "abc", "1")
	assert.Error(t, err)

	// login
	stdout, err = run("login", "ana", "pass123")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(
		"LOGIN_SUCCESS\nUSER_ID:%d\nUSERNAME:ana\nFIRST_NAME:Ana\nLAST_NAME:Silva\nEMAIL:ana@school.edu\nROLE:STUDENT\n", studentID,
	), stdout)

	stdout, err = run("login", "ana", "wrong")
	assert.Equal(t, errFailed, err)
	assert.Equal(t, "LOGIN_FAILED\n", stdout)

	stdout, err = run("login", "nobody", "pass123")
	assert.Equal(t, errFailed, err)
	assert.Equal(t, "LOGIN_FAILED\n", stdout)
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_readImportRows(t *testing.T) {
	rows, err := readImportRows(strings.NewReader("email,username,last_name,first_name\nana@school.edu,ana,Silva,Ana\nbruno@school.edu,bruno,Costa\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, user.ImportRow{Username: "ana", FirstName: "Ana", LastName: "Silva", Email: "ana@school.edu"}, rows[0])
	assert.Equal(t, "", rows[1].FirstName, "short rows leave missing fields empty")

	_, err = readImportRows(strings.NewReader("username,first_name,email\nana,Ana,ana@school.edu\n"))
	assert.True(t, errors.Is(err, errMissingColumns))
	assert.Contains(t, err.Error(), "last_name")

	_, err = readImportRows(strings.NewReader(""))
	assert.True(t, errors.Is(err, errMissingColumns))
}

func Test_commandLine_importStudents(t *testing.T) {
	cli, env, out := setup(t)
	testutil.CreateUser(t, env.UserRepo, "prof", "Carlos", "Lima", "", user.RoleTeacher)

	path := writeFile(t, "students.csv", strings.Join([]string{
		"username,first_name,last_name,email,password",
		"ana,Ana,Silva,ana@school.edu,",
		"bruno,Bruno,Costa,bruno@school.edu,s3cr3tpwd",
		"prof,Carlos,Lima,carlos@school.edu,",
	}, "\n"))

	require.NoError(t, cli.run([]string{"admin", "import", "-file", path}))
	assert.True(t, strings.HasPrefix(out.String(), "imported 2 student(s), 1 failed\n"))
	assert.Contains(t, out.String(), "row 3:")

	ana, err := env.UserRepo.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.NoError(t, ana.CheckPassword(env.Conf.Import.DefaultPassword))

	bad := writeFile(t, "bad.csv", "username,first_name\nana,Ana\n")
	err = cli.run([]string{"admin", "import", "-file", bad})
	assert.True(t, errors.Is(err, errMissingColumns))

	assert.Equal(t, errHelp, cli.run([]string{"admin", "import"}))
}

func Test_commandLine_exportReport(t *testing.T) {
	cli, env, out := setup(t)
	testutil.CreateUser(t, env.UserRepo, "ana", "Ana", "Silva", "ana@school.edu", user.RoleStudent)
	testutil.CreateUser(t, env.UserRepo, "bruno", "Bruno", "Costa", "", user.RoleStudent)

	require.NoError(t, cli.run([]string{"admin", "report", "-kind", "contact"}))
	assert.Equal(t, "Student,Username,Email\nAna Silva,ana,ana@school.edu\nBruno Costa,bruno,N/A\n", out.String())

	out.Reset()
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, cli.run([]string{"admin", "report", "-kind", "summary", "-out", path}))
	assert.Equal(t, "summary report: 2 row(s) written to "+path+"\n", out.String())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Student,Username,Email,Courses,Overall Average\nAna Silva,ana,ana@school.edu,0,N/A\nBruno Costa,bruno,N/A,0,N/A\n", string(content))

	assert.Equal(t, errHelp, cli.run([]string{"admin", "report", "-kind", "financial"}))
}

func Test_commandLine_seed(t *testing.T) {
	cli, env, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.True(t, strings.HasPrefix(out.String(), "seeded 6 users, 3 courses and 6 assignments"))

	students, err := env.Users.ListStudents(ctx, testutil.DirectorSession)
	require.NoError(t, err)
	assert.Len(t, students, 2)

	courses, err := env.Courses.ListAll(ctx, testutil.DirectorSession)
	require.NoError(t, err)
	require.Len(t, courses, 3)

	var quizzes int
	for _, crs := range courses {
		asgs, err := env.Assignments.ListForCourse(ctx, testutil.DirectorSession, crs.ID)
		require.NoError(t, err)
		assert.Len(t, asgs, 2)
		for _, asg := range asgs {
			if asg.IsQuiz() {
				quizzes++
				assert.Equal(t, 50.0, asg.MaxPoints)
			}
		}
	}
	assert.Equal(t, 1, quizzes)

	usr, err := env.Users.Authenticate(ctx, "student1", "pass123")
	require.NoError(t, err)
	enrolled, err := env.Directory.ListEnrolledCourses(ctx, usr.Session(), usr.ID)
	require.NoError(t, err)
	assert.Len(t, enrolled, 2)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Equal(t, "database already holds users, skipping seed\n", out.String())
}
