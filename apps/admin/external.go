package main

import (
	"context"
	"fmt"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

// Commands of the external registration module. Each prints machine-readable status lines.

func (cli *commandLine) register(req user.RegistrationRequest) error {
	sess := user.SystemSession()
	resp, err := cli.users.Register(context.Background(), sess, req)
	if err != nil {
		fmt.Fprintln(cli.out, "REGISTER_FAILED:"+user.CodeDatabaseError)
		return err
	}
	if resp.Success {
		fmt.Fprintln(cli.out, "REGISTER_SUCCESS")
		fmt.Fprintf(cli.out, "STUDENT_ID:%d\n", resp.StudentID)
		return nil
	}
	fmt.Fprintln(cli.out, "REGISTER_FAILED:"+resp.Code)
	if resp.Code != user.CodeUsernameExists {
		fmt.Fprintf(cli.out, "ERROR:%s\n", resp.Error)
	}
	return errFailed
}

func (cli *commandLine) enroll(studentID int, courseIDs []int) error {
	sess := user.SystemSession()
	n, err := cli.directory.EnrollMany(context.Background(), sess, studentID, courseIDs)
	if err != nil {
		fmt.Fprintln(cli.out, "ENROLL_FAILED")
		if core.IsRecoverable(err) {
			fmt.Fprintf(cli.out, "ERROR:%v\n", err)
			return errFailed
		}
		return err
	}
	fmt.Fprintln(cli.out, "ENROLL_SUCCESS")
	fmt.Fprintf(cli.out, "NEW_ENROLLMENTS:%d\n", n)
	return nil
}

func (cli *commandLine) login(uname, pwd string) error {
	usr, err := cli.users.Authenticate(context.Background(), uname, pwd)
	if err != nil {
		fmt.Fprintln(cli.out, "LOGIN_FAILED")
		if err == user.ErrAuthenticationFailed {
			return errFailed
		}
		return err
	}
	fmt.Fprintln(cli.out, "LOGIN_SUCCESS")
	fmt.Fprintf(cli.out, "USER_ID:%d\n", usr.ID)
	fmt.Fprintf(cli.out, "USERNAME:%s\n", usr.Username)
	fmt.Fprintf(cli.out, "FIRST_NAME:%s\n", usr.FirstName)
	fmt.Fprintf(cli.out, "LAST_NAME:%s\n", usr.LastName)
	fmt.Fprintf(cli.out, "EMAIL:%s\n", usr.Email.String)
	fmt.Fprintf(cli.out, "ROLE:%s\n", usr.Role)
	return nil
}
