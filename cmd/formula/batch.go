package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/formula"
)

// batch is the contents of a -f file.
type batch struct {
	Formulas []batchFormula `yaml:"formulas"`
}

type batchFormula struct {
	Name     string             `yaml:"name"`
	Expr     string             `yaml:"expr"`
	Vars     []string           `yaml:"vars"`
	Bindings map[string]binding `yaml:"bindings"`
}

// binding is a YAML number or list of numbers.
type binding struct {
	xs    []float64
	array bool
}

func (b *binding) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var x float64
		if err := n.Decode(&x); err != nil {
			return err
		}
		b.xs, b.array = []float64{x}, false
	case yaml.SequenceNode:
		if err := n.Decode(&b.xs); err != nil {
			return err
		}
		b.array = true
	default:
		return errors.Errorf("line %d: binding must be a number or a list of numbers", n.Line)
	}
	return nil
}

func (b binding) value() formula.Value {
	if b.array {
		return formula.Array(b.xs...)
	}
	return formula.Scalar(b.xs[0])
}

func loadBatch(path string) (*batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var b batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &b, nil
}

// runBatch compiles and evaluates every formula in cfg.file. Bindings from
// -given apply to every formula unless the formula binds the same name.
func runBatch(cfg config, logger log.Logger, out io.Writer) error {
	b, err := loadBatch(cfg.file)
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "loaded batch", "file", cfg.file, "formulas", len(b.Formulas))
	for i, f := range b.Formulas {
		env := formula.Env{}
		for k, v := range cfg.given {
			env[k] = v
		}
		names := make([]string, 0, len(f.Bindings))
		for k, v := range f.Bindings {
			env.Set(k, v.value())
			names = append(names, k)
		}
		sort.Strings(names)
		vars := unique(cfg.declared(), names, f.Vars)
		e, err := formula.NewBuilder(f.Expr).Var(vars...).Logger(logger).Build()
		if err != nil {
			return errors.Wrapf(err, "formula %d (%s)", i, f.Name)
		}
		name := f.Name
		if name == "" {
			name = e.Declaration()
		}
		if cfg.postfix {
			fmt.Fprintf(out, "%s = %s\n", name, e)
			continue
		}
		r, err := e.Eval(env)
		if err != nil {
			return errors.Wrapf(err, "formula %d (%s)", i, name)
		}
		level.Debug(logger).Log("msg", "evaluated", "formula", name, "result", r)
		fmt.Fprintf(out, "%s = %s\n", name, format(cfg.verb, r))
	}
	return nil
}

// unique concatenates lists of names, keeping the first of each.
func unique(lists ...[]string) []string {
	seen := make(map[string]bool)
	var r []string
	for _, l := range lists {
		for _, s := range l {
			if !seen[s] {
				seen[s] = true
				r = append(r, s)
			}
		}
	}
	return r
}
