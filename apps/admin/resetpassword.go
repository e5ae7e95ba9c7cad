package main

import (
	"context"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	cli.logger.Info("password reset", map[string]interface{}{"user_id": usr.ID}, user.SystemSession())
	return nil
}
