package nn

import "github.com/born-ml/nfcde/internal/tensor"

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(noise, hidden, output)
//	params := model.Forward(input, nn.ModeTrain)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor, mode Mode) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output, mode)
	}
	return output
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Modules returns the modules in order.
func (s *Sequential) Modules() []Module {
	return s.modules
}

// Len returns the number of modules.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// KL sums the KL terms of every Regularizer in the sequence from their most
// recent Forward call. Returns nil if no module contributes one.
func (s *Sequential) KL() *tensor.Tensor {
	var total *tensor.Tensor
	for _, module := range s.modules {
		r, ok := module.(Regularizer)
		if !ok {
			continue
		}
		kl := r.KL()
		if kl == nil {
			continue
		}
		if total == nil {
			total = kl
		} else {
			total = total.Add(kl)
		}
	}
	return total
}
