// Package optim implements optimization algorithms for training the
// parameter networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.02})
//
//	backend.Tape().StartRecording()
//	loss := computeLoss(model, batch)
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
//	backend.Tape().Clear()
package optim

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters in place based on computed gradients.
// Updates write into the parameters' existing storage so that the tensors
// held by layers (and the gradient map keys) stay valid.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	// Parameters absent from grads are left unchanged.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// getGradient retrieves the gradient for a parameter and records it on the
// parameter. Returns nil if the parameter was not part of the graph.
func getGradient(param *nn.Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) []float64 {
	if param == nil {
		return nil
	}
	raw := param.Tensor().Raw()
	grad, ok := grads[raw]
	if !ok {
		return nil
	}
	if !grad.Shape().Equal(raw.Shape()) {
		panic(fmt.Sprintf("optim: gradient shape %v does not match parameter %s %v",
			grad.Shape(), param.Name(), raw.Shape()))
	}
	param.SetGrad(tensor.New(grad, param.Tensor().Backend()))
	return grad.Data()
}
