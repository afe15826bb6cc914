package formula

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"", ""},
		{"  \t\n", ""},
		{"1+2", "1+2"},
		{"1 - 2", "1-2"},
		{"-3+5", "#3+5"},
		{" -3", "#3"},
		{"+3", "3"},
		{"3*-2", "3*#2"},
		{"3*+2", "3*2"},
		{"2^-x", "2^#x"},
		{"1--1", "1-#1"},
		{"1+-+-1", "1+##1"},
		{"(-1)", "(#1)"},
		{"[-1]", "[#1]"},
		{"{+1}", "{1}"},
		{"f(-1, -2)", "f(#1,#2)"},
		{"(1)-2", "(1)-2"},
		{"x-y", "x-y"},
		{"sin(x) - -x", "sin(x)-#x"},
	}
	for _, c := range cases {
		if got := Normalize(c.src); got != c.want {
			t.Errorf("normalizing %q: want %q, got %q", c.src, c.want, got)
		}
	}
}

func TestNormalizePositions(t *testing.T) {
	cases := []struct {
		src    string
		offset int
		pos    []int
	}{
		{"", 0, []int{}},
		{" -a", 0, []int{1, 2}},
		{"1 + +2", 0, []int{0, 2, 5}},
		{"x * y", 7, []int{7, 9, 11}},
	}
	for _, c := range cases {
		_, pos := normalize([]rune(c.src), c.offset)
		if !reflect.DeepEqual(pos, c.pos) {
			t.Errorf("positions of %q at %d: want %v, got %v", c.src, c.offset, c.pos, pos)
		}
	}
}
