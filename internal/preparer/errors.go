package preparer

import (
	"errors"
	"fmt"
)

// Sentinel kinds for errors.Is.
var (
	ErrInputFormat     = errors.New("input format error")
	ErrParse           = errors.New("parse error")
	ErrDivisionAnomaly = errors.New("division anomaly")
)

// InputFormatError reports a structural problem with the input: a missing
// column, a malformed number or a duplicate (Ticker, Date) pair.
type InputFormatError struct {
	Line   int // 0 when the problem is not tied to a data line
	Column string
	Msg    string
}

func (e *InputFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: column %q: %s", e.Line, e.Column, e.Msg)
	}
	if e.Column != "" {
		return fmt.Sprintf("column %q: %s", e.Column, e.Msg)
	}
	return e.Msg
}

func (e *InputFormatError) Is(target error) bool { return target == ErrInputFormat }

// ParseError reports a Date value that matches none of the accepted layouts.
type ParseError struct {
	Line  int
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: unparseable date %q", e.Line, e.Value)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// DivisionAnomalyError is returned under AnomalyReject when a row's percent
// change is non-finite.
type DivisionAnomalyError struct {
	Line   int
	Ticker string
	Date   string
	Open   float64
}

func (e *DivisionAnomalyError) Error() string {
	return fmt.Sprintf("line %d: %s %s: percent change is non-finite (open %g)", e.Line, e.Ticker, e.Date, e.Open)
}

func (e *DivisionAnomalyError) Is(target error) bool { return target == ErrDivisionAnomaly }
