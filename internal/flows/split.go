package flows

import (
	"fmt"
	"slices"

	"github.com/born-ml/nfcde/internal/tensor"
)

// TotalParamSize returns Σ paramSize(dims) over names, plus 2·dims when the
// base distribution is trainable. A network producing parameters for these
// flows must have exactly this output width.
func TotalParamSize(reg *Registry, names []string, dims int, trainableBase bool) (int, error) {
	total := 0
	for _, name := range names {
		spec, err := reg.Get(name)
		if err != nil {
			return 0, err
		}
		total += spec.ParamSize(dims)
	}
	if trainableBase {
		total += 2 * dims
	}
	return total, nil
}

// BuildChain slices params [N, P] into one parameter block per flow and
// composes the resulting bijectors.
//
// The flows are processed in reverse of names: each block's offset is the
// exclusive prefix sum of the reversed sizes, and the chain stores the
// bijectors in that same reversed order. P must equal the summed sizes;
// base-distribution parameters must already be stripped.
func BuildChain(reg *Registry, params *tensor.Tensor, names []string, dims int) (*Chain, error) {
	order := slices.Clone(names)
	slices.Reverse(order)

	specs := make([]Spec, len(order))
	offsets := make([]int, len(order))
	total := 0
	for i, name := range order {
		spec, err := reg.Get(name)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
		offsets[i] = total
		total += spec.ParamSize(dims)
	}

	got := 0
	if params != nil {
		shape := params.Shape()
		if len(shape) != 2 {
			return nil, fmt.Errorf("build chain: params must be [batch, size], got %v: %w", shape, ErrParamSizeMismatch)
		}
		got = shape[1]
	}
	if got != total {
		return nil, &ParamSizeMismatchError{Where: "build chain", Want: total, Got: got}
	}

	bijectors := make([]Bijector, len(order))
	for i, spec := range specs {
		var slice *tensor.Tensor
		if size := spec.ParamSize(dims); size > 0 {
			slice = params.Narrow(-1, offsets[i], size)
		}
		b, err := spec.Factory(slice, dims)
		if err != nil {
			return nil, fmt.Errorf("build chain: %s: %w", spec.Name, err)
		}
		bijectors[i] = b
	}

	return NewChain(bijectors...), nil
}
