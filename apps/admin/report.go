package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/academia/core/report"
	"github.com/trezcool/academia/core/user"
)

// exportReport writes the report of the given kind as CSV to path, or to stdout if path is empty.
func (cli *commandLine) exportReport(kind report.Kind, path string) error {
	rep, err := cli.reports.Generate(context.Background(), user.SystemSession(), kind)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		return report.WriteCSV(cli.out, rep)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = report.WriteCSV(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s report: %d row(s) written to %s\n", kind, len(rep.Rows), path)
	return nil
}
