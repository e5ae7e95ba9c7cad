// Package report builds read-only tabular projections of the academic records.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindEnrollment Kind = "enrollment"
	KindAcademic   Kind = "academic"
	KindContact    Kind = "contact"
	KindSummary    Kind = "summary"
)

var AllKinds = []Kind{KindEnrollment, KindAcademic, KindContact, KindSummary}

var columns = map[Kind][]string{
	KindEnrollment: {"Student", "Email", "Courses"},
	KindAcademic:   {"Student", "Course", "Average Grade"},
	KindContact:    {"Student", "Username", "Email"},
	KindSummary:    {"Student", "Username", "Email", "Courses", "Overall Average"},
}

func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := columns[k]
	return k, ok
}

// Columns returns the fixed column names of k.
func Columns(k Kind) []string {
	return append([]string(nil), columns[k]...)
}

type Report struct {
	Kind    Kind
	Columns []string
	Rows    [][]Cell
}

func newReport(k Kind) Report {
	return Report{Kind: k, Columns: Columns(k), Rows: make([][]Cell, 0)}
}

func (rep *Report) add(cells ...Cell) {
	rep.Rows = append(rep.Rows, cells)
}

// Records returns the header followed by one formatted record per row.
func (rep Report) Records() [][]string {
	recs := make([][]string, 0, len(rep.Rows)+1)
	recs = append(recs, append([]string(nil), rep.Columns...))
	for _, row := range rep.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = c.String()
		}
		recs = append(recs, rec)
	}
	return recs
}

// MarshalJSON renders the report as its formatted records, keyed by column.
func (rep Report) MarshalJSON() ([]byte, error) {
	rows := make([]map[string]string, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		m := make(map[string]string, len(row))
		for i, c := range row {
			m[rep.Columns[i]] = c.String()
		}
		rows = append(rows, m)
	}
	return json.Marshal(struct {
		Kind    Kind                `json:"kind"`
		Columns []string            `json:"columns"`
		Rows    []map[string]string `json:"rows"`
	}{rep.Kind, rep.Columns, rows})
}

// WriteCSV exports rep with the same formatting as Records.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rep.Records()); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}
