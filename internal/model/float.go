package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 whose JSON form survives non-finite values:
// +Inf, -Inf and NaN are written as the strings "+Inf", "-Inf" and "NaN".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// IsFinite reports whether f is neither infinite nor NaN.
func (f Float) IsFinite() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NullFloat is a float64 that may be missing. A missing value is never zero.
type NullFloat struct {
	Value float64
	Valid bool
}

// Some returns a present NullFloat.
func Some(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return Float(n.Value).MarshalJSON()
}

func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	var f Float
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = Some(float64(f))
	return nil
}

// Direction is a 0/1 up-move flag.
type Direction bool

func (d Direction) Int() int {
	if d {
		return 1
	}
	return 0
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(d.Int())), nil
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*d = v != 0
	return nil
}
