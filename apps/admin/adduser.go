package main

import (
	"context"
	"fmt"

	"github.com/trezcool/academia/core/user"
)

// addUser creates a user.User of any role on behalf of the operator.
func (cli *commandLine) addUser(nu user.NewUser) error {
	usr, err := cli.users.Create(context.Background(), user.SystemSession(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %q (id %d)\n", usr.Role, usr.Username, usr.ID)
	return nil
}
