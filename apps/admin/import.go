package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/user"
)

var errMissingColumns = errors.New("missing required columns")

// readImportRows parses a students CSV. The header row names the columns, in any order.
func readImportRows(r io.Reader) ([]user.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrapf(errMissingColumns, "%v", user.ImportColumns)
		}
		return nil, errors.Wrap(err, "reading CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range user.ImportColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(errMissingColumns, "%v", missing)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]user.ImportRow, 0)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading CSV row")
		}
		rows = append(rows, user.ImportRow{
			Username:  field(rec, "username"),
			FirstName: field(rec, "first_name"),
			LastName:  field(rec, "last_name"),
			Email:     field(rec, "email"),
			Password:  field(rec, "password"),
		})
	}
	return rows, nil
}

func (cli *commandLine) importStudents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := readImportRows(f)
	if err != nil {
		return err
	}
	res, err := cli.users.ImportStudents(context.Background(), user.SystemSession(), rows)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "imported %d student(s), %d failed\n", res.Imported, res.Failed())
	for _, msg := range res.Errors {
		fmt.Fprintln(cli.out, "  "+msg)
	}
	if res.MoreErrors > 0 {
		fmt.Fprintf(cli.out, "  ... and %d more error(s)\n", res.MoreErrors)
	}
	return nil
}
