package main

import (
	"context"

	"github.com/pressly/goose/v3"

	"github.com/trezcool/academia/storage/database"
)

var gooseRunFunc = goose.RunContext // mockable

// migrate runs a goose command against the embedded migrations of the configured engine.
func (cli *commandLine) migrate(args []string) error {
	dir, err := database.PrepareGoose(cli.db)
	if err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(context.Background(), args[0], cli.db.DB.DB, dir, arguments...)
}
