package nn

// Mode selects training or inference behavior for stochastic modules.
type Mode int

const (
	// ModeInfer disables noise injection. It is the zero value.
	ModeInfer Mode = iota
	// ModeTrain enables noise injection.
	ModeTrain
)

// Training reports whether m is ModeTrain.
func (m Mode) Training() bool {
	return m == ModeTrain
}

// String returns "train" or "infer".
func (m Mode) String() string {
	if m == ModeTrain {
		return "train"
	}
	return "infer"
}
