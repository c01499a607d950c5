package estimator

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/autodiff"
	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/tensor"
)

// defaultBatchSize is the number of examples per optimizer step.
const defaultBatchSize = 32

// FitOptions controls a training run.
type FitOptions struct {
	// Epochs is the number of passes over the data (default: 1).
	Epochs int
	// BatchSize is the number of examples per step (default: 32).
	BatchSize int
	// Shuffle reorders the examples every epoch.
	Shuffle bool
	// OnEpoch, if set, is called after every epoch with its mean loss.
	OnEpoch func(epoch int, loss float64)
}

// DefaultFitOptions returns shuffled training for the given number of epochs.
func DefaultFitOptions(epochs int) FitOptions {
	return FitOptions{Epochs: epochs, BatchSize: defaultBatchSize, Shuffle: true}
}

// History records the mean training loss of every epoch.
type History struct {
	Loss []float64
}

// Fit minimizes the loss over x [N, InputDims] and y [N, Dims] with Adam.
//
// Every step runs the network in ModeTrain on one batch, records the
// computation, backpropagates the loss (plus the KL term for a Bayesian
// estimator) and updates the weights. The tape is cleared after every step.
func (e *Estimator) Fit(x, y *tensor.Tensor, opts FitOptions) (History, error) {
	if err := checkInputs(x, e.cfg.InputDims); err != nil {
		return History{}, err
	}
	if err := checkTargets(x, y, e.cfg.Dims); err != nil {
		return History{}, err
	}
	if opts.Epochs == 0 {
		opts.Epochs = 1
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Epochs < 0 || opts.BatchSize < 0 {
		return History{}, fmt.Errorf("fit: invalid epochs %d or batch size %d", opts.Epochs, opts.BatchSize)
	}

	n := x.Shape()[0]
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	history := History{Loss: make([]float64, 0, opts.Epochs)}
	for epoch := range opts.Epochs {
		if opts.Shuffle {
			e.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		total := 0.0
		for start := 0; start < n; start += opts.BatchSize {
			idx := order[start:min(start+opts.BatchSize, n)]
			loss, err := e.step(takeRows(x, idx, e.backend), takeRows(y, idx, e.backend))
			if err != nil {
				return history, fmt.Errorf("fit: epoch %d: %w", epoch, err)
			}
			total += loss * float64(len(idx))
		}

		mean := total / float64(n)
		history.Loss = append(history.Loss, mean)
		if opts.OnEpoch != nil {
			opts.OnEpoch(epoch, mean)
		}
	}
	return history, nil
}

// step performs one optimizer update and returns the batch loss.
func (e *Estimator) step(x, y *tensor.Tensor) (float64, error) {
	tape := e.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	loss, err := e.objective(x, y, nn.ModeTrain)
	if err != nil {
		return 0, err
	}

	grads := autodiff.Backward(loss, e.backend)
	e.optimizer.Step(grads)
	e.optimizer.ZeroGrad()
	return loss.Item(), nil
}

// Evaluate returns the mean loss over x and y in ModeInfer, plus the KL term
// for a Bayesian estimator.
func (e *Estimator) Evaluate(x, y *tensor.Tensor) (float64, error) {
	loss, err := e.objective(x, y, nn.ModeInfer)
	if err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}
	return loss.Item(), nil
}

// takeRows copies rows idx of a 2-D tensor into a new tensor on backend.
func takeRows(t *tensor.Tensor, idx []int, backend tensor.Backend) *tensor.Tensor {
	cols := t.Shape()[1]
	src := t.Data()
	out := tensor.Zeros(tensor.Shape{len(idx), cols}, backend)
	dst := out.Data()
	for i, row := range idx {
		copy(dst[i*cols:(i+1)*cols], src[row*cols:(row+1)*cols])
	}
	return out
}
