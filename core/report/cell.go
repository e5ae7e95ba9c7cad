package report

import (
	"strconv"

	"github.com/volatiletech/null/v8"
)

// NA is how null cells render.
const NA = "N/A"

type CellKind int

const (
	KindText CellKind = iota
	KindInteger
	KindFractional
)

// Cell is a typed, nullable report value.
type Cell struct {
	Kind CellKind
	s    null.String
	i    null.Int64
	f    null.Float64
}

func Text(s null.String) Cell      { return Cell{Kind: KindText, s: s} }
func TextOf(s string) Cell         { return Text(null.StringFrom(s)) }
func Integer(i null.Int64) Cell    { return Cell{Kind: KindInteger, i: i} }
func IntegerOf(i int64) Cell       { return Integer(null.Int64From(i)) }
func Fraction(f null.Float64) Cell { return Cell{Kind: KindFractional, f: f} }
func FractionOf(f float64) Cell    { return Fraction(null.Float64From(f)) }

func (c Cell) IsNull() bool {
	switch c.Kind {
	case KindInteger:
		return !c.i.Valid
	case KindFractional:
		return !c.f.Valid
	default:
		return !c.s.Valid
	}
}

// String formats the cell: null renders as "N/A", fractions with exactly one decimal digit.
func (c Cell) String() string {
	if c.IsNull() {
		return NA
	}
	switch c.Kind {
	case KindInteger:
		return strconv.FormatInt(c.i.Int64, 10)
	case KindFractional:
		return strconv.FormatFloat(c.f.Float64, 'f', 1, 64)
	default:
		return c.s.String
	}
}

// Value returns the underlying value, or nil when null.
func (c Cell) Value() interface{} {
	if c.IsNull() {
		return nil
	}
	switch c.Kind {
	case KindInteger:
		return c.i.Int64
	case KindFractional:
		return c.f.Float64
	default:
		return c.s.String
	}
}
