package formula

import (
	"strconv"
	"strings"
)

// Value is the result of evaluating a formula, or a binding for one of its
// variables. A Value is either a scalar or an array of float64. Values also
// carry a label for debugging.
//
// The zero Value is the scalar 0.
type Value struct {
	name   string
	scalar float64
	array  []float64
	isArr  bool
}

// Scalar returns a scalar value.
func Scalar(x float64) Value {
	return Value{scalar: x}
}

// Array returns an array value. The value uses xs directly; callers should
// not modify xs afterward.
func Array(xs ...float64) Value {
	if xs == nil {
		xs = []float64{}
	}
	return Value{array: xs, isArr: true}
}

// Named returns a copy of v with its label set to name.
func (v Value) Named(name string) Value {
	v.name = name
	return v
}

// Name returns the value's label.
func (v Value) Name() string {
	return v.name
}

// IsArray reports whether v is an array.
func (v Value) IsArray() bool {
	return v.isArr
}

// Len returns the length of an array value, or 0 for scalars.
func (v Value) Len() int {
	return len(v.array)
}

// Float returns the value of a scalar. For an array, the result is its first
// element, or 0 if the array is empty.
func (v Value) Float() float64 {
	if !v.isArr {
		return v.scalar
	}
	if len(v.array) == 0 {
		return 0
	}
	return v.array[0]
}

// Floats returns the elements of an array value, or a one-element slice for
// a scalar. The result must not be modified.
func (v Value) Floats() []float64 {
	if !v.isArr {
		return []float64{v.scalar}
	}
	return v.array
}

// at returns element i of v as broadcast to an array of any length.
func (v Value) at(i int) float64 {
	if !v.isArr {
		return v.scalar
	}
	if i < len(v.array) {
		return v.array[i]
	}
	return 0
}

func (v Value) String() string {
	if !v.isArr {
		return strconv.FormatFloat(v.scalar, 'g', -1, 64)
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v.array {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// broadcast applies f element-wise across args. If no argument is a
// non-empty array, f is applied once and the result is a scalar. Otherwise
// scalars are repeated and shorter arrays padded with zeros to the length of
// the longest array, and the result is an array of that length.
//
// scratch must have length len(args); broadcast overwrites it.
func broadcast(args []Value, scratch []float64, f func([]float64) float64) Value {
	n := 0
	for _, v := range args {
		if len(v.array) > n {
			n = len(v.array)
		}
	}
	if n == 0 {
		for i, v := range args {
			scratch[i] = v.at(0)
		}
		return Scalar(f(scratch))
	}
	r := make([]float64, n)
	for k := range r {
		for i, v := range args {
			scratch[i] = v.at(k)
		}
		r[k] = f(scratch)
	}
	return Array(r...)
}
