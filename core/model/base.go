// Package model provides core abstractions shared by the carprice estimators.
//
// It defines:
//
//   - StateManager: fitted-state and dimension tracking, embedded by pointer
//     in every estimator and exported so it survives gob encoding
//   - Regressor and Transformer: the matrix-level estimator contracts
//   - Model persistence: SaveModel / LoadModel using encoding/gob
//
// Example usage:
//
//	type MyModel struct {
//		State *model.StateManager
//		// model-specific fields
//	}
//
//	func (m *MyModel) Fit(X, y mat.Matrix) error {
//		// training logic
//		m.State.SetFitted()
//		return nil
//	}
package model

import (
	"gonum.org/v1/gonum/mat"
)

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

// StateManager tracks whether an estimator is fitted and the shape of the
// data it was fitted on. Fields are exported for gob encoding.
type StateManager struct {
	State     EstimatorState
	NFeatures int
	NSamples  int
}

// NewStateManager returns a StateManager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{State: NotFitted}
}

// IsFitted reports whether SetFitted has been called since the last Reset.
// A nil StateManager is never fitted.
func (s *StateManager) IsFitted() bool {
	return s != nil && s.State == Fitted
}

// SetFitted marks the estimator as trained. Called by Fit implementations only.
func (s *StateManager) SetFitted() {
	s.State = Fitted
}

// SetDimensions records the training shape.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// Reset returns the estimator to its initial untrained state.
func (s *StateManager) Reset() {
	s.State = NotFitted
	s.NFeatures = 0
	s.NSamples = 0
}

// Regressor is a fitted-then-predict estimator over dense matrices.
// Predict returns an (n_samples, 1) matrix.
type Regressor interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
	IsFitted() bool
}

// Transformer learns statistics from X and applies them.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// Named is implemented by estimators that report a display name, recorded in
// model artifacts.
type Named interface {
	Name() string
}
