package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/zephyrtronium/formula"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type config struct {
	given    formula.Env
	vars     []string
	postfix  bool
	file     string
	verb     string
	logLevel string
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg := config{given: formula.Env{}}
	fs := flag.NewFlagSet("formula", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Func("given", "name=value variable binding; a comma-separated value is an array (any number of times)", cfg.addGiven)
	fs.Func("var", "declare a variable without binding it (any number of times)", func(s string) error {
		cfg.vars = append(cfg.vars, strings.TrimSpace(s))
		return nil
	})
	fs.BoolVar(&cfg.postfix, "postfix", false, "print compiled postfix instead of evaluating")
	fs.StringVar(&cfg.file, "f", "", "YAML batch file of formulas and bindings")
	fs.StringVar(&cfg.verb, "fmt", "%g", "result formatting verb")
	fs.StringVar(&cfg.logLevel, "log.level", "info", "log level: debug, info, warn, or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger, err := newLogger(stderr, cfg.logLevel)
	if err != nil {
		return err
	}
	if cfg.file == "" && fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no formulas given")
	}

	if cfg.file != "" {
		if err := runBatch(cfg, logger, stdout); err != nil {
			return err
		}
	}
	for _, src := range fs.Args() {
		e, err := formula.NewBuilder(src).Var(cfg.declared()...).Logger(logger).Build()
		if err != nil {
			return errors.Wrapf(err, "compiling %q", src)
		}
		if cfg.postfix {
			fmt.Fprintln(stdout, e)
			continue
		}
		r, err := e.Eval(cfg.given)
		if err != nil {
			return errors.Wrapf(err, "evaluating %q", src)
		}
		fmt.Fprintln(stdout, format(cfg.verb, r))
	}
	return nil
}

// addGiven parses a -given flag.
func (cfg *config) addGiven(s string) error {
	d := strings.SplitN(s, "=", 2)
	if len(d) != 2 {
		return errors.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	name := strings.TrimSpace(d[0])
	parts := strings.Split(d[1], ",")
	xs := make([]float64, len(parts))
	for i, p := range parts {
		v, err := formula.EvalString(p, nil)
		if err != nil {
			return errors.Wrapf(err, "setting %s", name)
		}
		xs[i] = v.Float()
	}
	if len(xs) == 1 {
		cfg.given.Set(name, formula.Scalar(xs[0]))
	} else {
		cfg.given.Set(name, formula.Array(xs...))
	}
	return nil
}

// declared returns the variables declared by -given and -var, with given
// names in sorted order first.
func (cfg *config) declared() []string {
	names := make([]string, 0, len(cfg.given)+len(cfg.vars))
	for k := range cfg.given {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, v := range cfg.vars {
		if _, ok := cfg.given[v]; !ok {
			names = append(names, v)
		}
	}
	return names
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, errors.Errorf("unknown log level %q", lvl)
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	return level.NewFilter(logger, opt), nil
}

// format formats a value with a verb, element-wise for arrays.
func format(verb string, v formula.Value) string {
	if !v.IsArray() {
		return fmt.Sprintf(verb, v.Float())
	}
	parts := make([]string, v.Len())
	for i, x := range v.Floats() {
		parts[i] = fmt.Sprintf(verb, x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
