package estimator

import (
	"bytes"
	"fmt"

	"github.com/born-ml/nfcde/internal/serialization"
)

const (
	configKey = "config"
	kindKey   = "kind"
)

// Save writes the configuration and every trainable parameter to path.
// Optimizer state and the random source are not saved.
func (e *Estimator) Save(path string) error {
	var cfg bytes.Buffer
	if err := e.cfg.WriteYAML(&cfg); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	params := e.Parameters()
	tensors := make([]serialization.NamedTensor, len(params))
	for i, p := range params {
		tensors[i] = serialization.NamedTensor{Name: paramKey(i, p.Name()), Raw: p.Tensor().Raw()}
	}

	metadata := map[string]string{configKey: cfg.String(), kindKey: e.kind.String()}
	if err := serialization.WriteFile(path, tensors, metadata); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load rebuilds an estimator from a checkpoint written by Save.
func Load(path string) (*Estimator, error) {
	ckpt, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	cfg, err := ParseConfig([]byte(ckpt.Header.Metadata[configKey]))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	e, err := FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	params := e.Parameters()
	if len(params) != len(ckpt.Tensors) {
		return nil, fmt.Errorf("load %s: %d tensors for %d parameters: %w",
			path, len(ckpt.Tensors), len(params), ErrParamSizeMismatch)
	}
	for i, p := range params {
		key := paramKey(i, p.Name())
		raw, ok := ckpt.Tensors[key]
		if !ok {
			return nil, fmt.Errorf("load %s: missing %s: %w", path, key, ErrParamSizeMismatch)
		}
		if !raw.Shape().Equal(p.Tensor().Shape()) {
			return nil, fmt.Errorf("load %s: %s has shape %v, want %v: %w",
				path, key, raw.Shape(), p.Tensor().Shape(), ErrParamSizeMismatch)
		}
		copy(p.Tensor().Data(), raw.Data())
	}
	return e, nil
}

func paramKey(i int, name string) string {
	return fmt.Sprintf("param.%d.%s", i, name)
}
