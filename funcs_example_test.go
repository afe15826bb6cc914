package formula_test

import (
	"fmt"
	"math"

	"github.com/zephyrtronium/formula"
)

func ExampleFunc() {
	e, _ := formula.NewBuilder("dist(x, y) = hypot(x, y)").
		Func("hypot", formula.Dyadic(math.Hypot)).
		Build()
	a, _ := e.Eval(formula.Env{"x": formula.Scalar(3), "y": formula.Scalar(4)})
	b, _ := e.Eval(formula.Env{"x": formula.Array(3, 5), "y": formula.Scalar(4)})
	fmt.Println(e.Declaration(), e)
	fmt.Println(a)
	fmt.Printf("%.4f\n", b.Floats())

	// Output:
	// dist(x,y) x y hypot
	// 5
	// [5.0000 6.4031]
}

func ExampleExpr_String() {
	for _, src := range []string{"2+3*4", "2^3^2", "-2^2", "f(x) = sin(x) - -x"} {
		e, _ := formula.Compile(src)
		fmt.Println(e)
	}

	// Output:
	// 2 3 4 * +
	// 2 3 2 ^ ^
	// 2 # 2 ^
	// x sin x # -
}
