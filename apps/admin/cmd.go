package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp   = errors.New("help provided")
	errFailed = errors.New("command failed") // failure already reported on stdout
)

type commandLine struct {
	conf   *core.Config
	db     *database.DB
	logger core.Logger
	out    io.Writer

	usrRepo     user.Repository
	users       *user.Service
	courses     *course.Service
	directory   *enrollment.Directory
	assignments *assignment.Service
	reports     *report.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -username U -first F -last L [-email E] [-role R] - create a user, the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset user's password")
	fmt.Fprintln(cli.out, "  register USERNAME PASSWORD FIRST_NAME LAST_NAME EMAIL - register a student")
	fmt.Fprintln(cli.out, "  enroll STUDENT_ID COURSE_ID [COURSE_ID...] - enroll a student in courses")
	fmt.Fprintln(cli.out, "  login USERNAME PASSWORD - check credentials")
	fmt.Fprintln(cli.out, "  import -file FILE - import students from a CSV file")
	fmt.Fprintln(cli.out, "  report -kind KIND [-out FILE] - export a report as CSV (enrollment, academic, contact, summary)")
	fmt.Fprintln(cli.out, "  seed - insert demo data into an empty database")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserFirst := addUserCmd.String("first", "", "The user's first name.")
	addUserLast := addUserCmd.String("last", "", "The user's last name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserRole := addUserCmd.String("role", string(user.RoleDirector), "The user's role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "CSV file with a header row: "+fmt.Sprint(user.ImportColumns)+" [password]")

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	reportKind := reportCmd.String("kind", "", "Report kind: enrollment, academic, contact or summary.")
	reportOut := reportCmd.String("out", "", "Output file. Defaults to stdout.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserFirst == "" || *addUserLast == "" {
			addUserCmd.Usage()
			return errHelp
		}
		role, err := user.ParseRole(*addUserRole)
		if err != nil {
			return err
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			Username:  *addUserUname,
			Password:  pwd,
			FirstName: *addUserFirst,
			LastName:  *addUserLast,
			Email:     *addUserEmail,
			Role:      role,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "register":
		if len(args) != 7 {
			cli.printUsage()
			return errHelp
		}
		return cli.register(user.RegistrationRequest{
			Username:  args[2],
			Password:  args[3],
			FirstName: args[4],
			LastName:  args[5],
			Email:     args[6],
		})

	case "enroll":
		if len(args) < 4 {
			cli.printUsage()
			return errHelp
		}
		ids, err := parseIDs(args[2:])
		if err != nil {
			return err
		}
		return cli.enroll(ids[0], ids[1:])

	case "login":
		if len(args) != 4 {
			cli.printUsage()
			return errHelp
		}
		return cli.login(args[2], args[3])

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importFile)

	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		kind, ok := report.ParseKind(*reportKind)
		if !ok {
			reportCmd.Usage()
			return errHelp
		}
		return cli.exportReport(kind, *reportOut)

	case "seed":
		return cli.seed()

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
