package linear_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/linear"
)

func ExampleLinearRegression() {
	// price = 1000 * engine_litres + 2000
	X := mat.NewDense(4, 1, []float64{1.0, 1.5, 2.0, 3.0})
	y := mat.NewDense(4, 1, []float64{3000, 3500, 4000, 5000})

	lr := linear.NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		fmt.Println(err)
		return
	}

	pred, err := lr.Predict(mat.NewDense(1, 1, []float64{2.5}))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.0f\n", pred.At(0, 0))

	// Output: 4500
}

func ExampleWithAlpha() {
	lr := linear.NewLinearRegression(linear.WithAlpha(1.0))
	fmt.Println(lr.Name(), lr.GetParams()["alpha"])

	// Output: Ridge 1
}
