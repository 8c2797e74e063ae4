package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/carprice/pkg/errors"
)

func TestStandardScaler_FitTransform(t *testing.T) {
	// engine_cc, mileage_kmpl
	X := mat.NewDense(4, 2, []float64{
		1000, 20,
		1500, 18,
		2000, 16,
		2500, 14,
	})

	s := NewStandardScalerDefault()
	Xs, err := s.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if s.Mean[0] != 1750 || s.Mean[1] != 17 {
		t.Errorf("Mean = %v, want [1750 17]", s.Mean)
	}
	wantScale := []float64{math.Sqrt(312500), math.Sqrt(5)}
	for j, w := range wantScale {
		if math.Abs(s.Scale[j]-w) > 1e-9 {
			t.Errorf("Scale[%d] = %v, want %v", j, s.Scale[j], w)
		}
	}

	for j := 0; j < 2; j++ {
		var sum, ss float64
		for i := 0; i < 4; i++ {
			v := Xs.At(i, j)
			sum += v
			ss += v * v
		}
		if math.Abs(sum) > 1e-9 {
			t.Errorf("column %d mean = %v, want 0", j, sum/4)
		}
		if math.Abs(ss/4-1) > 1e-9 {
			t.Errorf("column %d variance = %v, want 1", j, ss/4)
		}
	}
}

func TestStandardScaler_Options(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 6})

	noMean := NewStandardScaler(false, true)
	Xs, err := noMean.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	// scale = sqrt((4+36)/2)
	if got, want := Xs.At(1, 0), 6/math.Sqrt(20); math.Abs(got-want) > 1e-9 {
		t.Errorf("withMean=false: got %v, want %v", got, want)
	}

	noStd := NewStandardScaler(true, false)
	Xs, err = noStd.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	if Xs.At(0, 0) != -2 || Xs.At(1, 0) != 2 {
		t.Errorf("withStd=false: got %v", mat.Formatted(Xs))
	}
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})
	s := NewStandardScalerDefault()
	Xs, err := s.FitTransform(X)
	if err != nil {
		t.Fatal(err)
	}
	if s.Scale[0] != 1 {
		t.Errorf("Scale = %v, want 1", s.Scale[0])
	}
	for i := 0; i < 3; i++ {
		if Xs.At(i, 0) != 0 {
			t.Errorf("row %d = %v, want 0", i, Xs.At(i, 0))
		}
	}
}

func TestStandardScaler_Errors(t *testing.T) {
	s := NewStandardScalerDefault()
	if _, err := s.Transform(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("Transform before Fit should fail")
	}
	if err := s.Fit(&mat.Dense{}); !errors.Is(err, errors.ErrEmptyData) {
		t.Errorf("Fit(empty) = %v, want ErrEmptyData", err)
	}
	if err := s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Transform(mat.NewDense(1, 3, nil)); !errors.Is(err, errors.ErrDimensionMismatch) {
		t.Errorf("Transform(wrong width) = %v, want ErrDimensionMismatch", err)
	}
}

func TestStandardScaler_String(t *testing.T) {
	s := NewStandardScalerDefault()
	if got := s.String(); got != "StandardScaler(with_mean=true, with_std=true)" {
		t.Errorf("String() = %q", got)
	}
	_ = s.Fit(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
	if got := s.String(); got != "StandardScaler(with_mean=true, with_std=true, n_features=3)" {
		t.Errorf("String() = %q", got)
	}
}
