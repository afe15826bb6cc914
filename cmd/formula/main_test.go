package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/formula"
)

func runTest(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun(t *testing.T) {
	cases := []struct {
		name string
		args []string
		out  string
	}{
		{"literal", []string{"2+3*4"}, "14\n"},
		{"many", []string{"1+1", "2^3^2"}, "2\n512\n"},
		{"given", []string{"-given", "x=2", "x^2"}, "4\n"},
		{"given-expr", []string{"-given", "x=-2*3", "x"}, "-6\n"},
		{"given-array", []string{"-given", "x=2", "-given", "y=1,2,3", "x+y"}, "[3 4 5]\n"},
		{"declared", []string{"-given", "x=16", "f(x) = sqrt(x)"}, "4\n"},
		{"fmt", []string{"-fmt", "%.2f", "-given", "y=1,2", "y/3"}, "[0.33 0.67]\n"},
		{"postfix", []string{"-postfix", "-var", "x", "sin(x)+2*x^2"}, "x sin 2 x 2 ^ * +\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _, err := runTest(t, c.args...)
			require.NoError(t, err)
			assert.Equal(t, c.out, out)
		})
	}
}

func TestRunErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		msg  string
	}{
		{"none", nil, "no formulas given"},
		{"unknown-func", []string{"sqr(1)"}, `did you mean "sqrt"?`},
		{"missing", []string{"-var", "x", "x+1"}, "undefined variable"},
		{"given-syntax", []string{"-given", "x", "1"}, "name=value"},
		{"given-value", []string{"-given", "x=1+", "1"}, "setting x"},
		{"level", []string{"-log.level", "loud", "1"}, "unknown log level"},
		{"bad-var", []string{"-var", "cos", "1"}, "built-in"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := runTest(t, c.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.msg)
		})
	}
}

func TestRunDebugLog(t *testing.T) {
	_, stderr, err := runTest(t, "-log.level", "debug", "1+2")
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="compiled expression"`)
	assert.Contains(t, stderr, `postfix="1 2 +"`)

	_, stderr, err = runTest(t, "1+2")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

const testBatch = `
formulas:
  - name: area
    expr: pi * r^2
    bindings:
      pi: 3
      r: [1, 2]
  - expr: g(a, b) = a*b + c
    bindings:
      a: 2
      b: 5
  - name: unbound
    expr: x + 1
    vars: [x]
    bindings:
      x: []
`

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunBatch(t *testing.T) {
	path := writeBatch(t, testBatch)
	out, stderr, err := runTest(t, "-f", path, "-given", "c=1")
	require.NoError(t, err)
	assert.Equal(t, "area = [3 12]\ng(a,b,c) = 11\nunbound = 1\n", out)
	assert.Contains(t, stderr, `msg="loaded batch"`)
	assert.Contains(t, stderr, "formulas=3")

	out, _, err = runTest(t, "-postfix", "-f", path, "-given", "c=1")
	require.NoError(t, err)
	assert.Equal(t, "area = pi r 2 ^ *\ng(a,b,c) = a b * c +\nunbound = x 1 +\n", out)
}

func TestRunBatchErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		msg     string
	}{
		{"yaml", "formulas: [", "parsing"},
		{"binding", "formulas:\n  - expr: x\n    bindings:\n      x: {a: 1}\n", "binding must be a number"},
		{"compile", "formulas:\n  - name: bad\n    expr: 1 +\n", "formula 0 (bad)"},
		{"eval", "formulas:\n  - expr: x\n    vars: [x]\n", "undefined variable"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := runTest(t, "-f", writeBatch(t, c.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.msg)
		})
	}

	_, _, err := runTest(t, "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestBinding(t *testing.T) {
	var m map[string]binding
	require.NoError(t, yaml.Unmarshal([]byte("a: 1.5\nb: [1, 2]\nc: []\n"), &m))
	assert.Equal(t, formula.Scalar(1.5), m["a"].value())
	assert.Equal(t, []float64{1, 2}, m["b"].value().Floats())
	assert.True(t, m["c"].value().IsArray())
	assert.Zero(t, m["c"].value().Len())
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"x", "y", "z"}, unique([]string{"x", "y"}, []string{"y", "z"}, []string{"x"}))
	assert.Nil(t, unique())
}
