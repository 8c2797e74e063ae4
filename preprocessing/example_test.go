package preprocessing_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/preprocessing"
)

func ExampleStandardScaler() {
	// car_age
	X := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	scaler := preprocessing.NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("mean=%.0f first=%.3f last=%.3f\n", scaler.Mean[0], scaled.At(0, 0), scaled.At(3, 0))

	// Output: mean=5 first=-1.342 last=1.342
}

func ExampleOneHotEncoder() {
	enc := preprocessing.NewOneHotEncoder()
	X, err := enc.FitTransform([][]string{{"First"}, {"Few"}, {"Many"}})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(enc.GetFeatureNamesOut([]string{"owner_type"}))
	fmt.Println(mat.Formatted(X))

	// Output:
	// [owner_type_Few owner_type_First owner_type_Many]
	// ⎡0  1  0⎤
	// ⎢1  0  0⎥
	// ⎣0  0  1⎦
}
