package estimator_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/internal/distributions"
	"github.com/born-ml/nfcde/internal/estimator"
	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linspaceColumns returns [n, cols] with every column running from -1 to 1.
func linspaceColumns(t *testing.T, n, cols int) *tensor.Tensor {
	t.Helper()
	column := tensor.Linspace(-1, 1, n, cpu.New()).Data()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, cols)
		for j := range rows[i] {
			rows[i][j] = column[i]
		}
	}
	out, err := tensor.FromRows(rows, cpu.New())
	require.NoError(t, err)
	return out
}

func mustNew(t *testing.T, cfg estimator.Config) *estimator.Estimator {
	t.Helper()
	e, err := estimator.New(cfg)
	require.NoError(t, err)
	return e
}

// TestConfig_Validate tests that invalid hyperparameters are rejected eagerly.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*estimator.Config)
		target error
	}{
		{"zero dims", func(c *estimator.Config) { c.Dims = 0 }, nil},
		{"zero input dims", func(c *estimator.Config) { c.InputDims = 0 }, nil},
		{"nil hidden sizes", func(c *estimator.Config) { c.HiddenSizes = nil }, nil},
		{"zero width", func(c *estimator.Config) { c.HiddenSizes = []int{16, 0} }, nil},
		{"negative x noise", func(c *estimator.Config) { c.XNoiseStd = -0.1 }, nil},
		{"nan y noise", func(c *estimator.Config) { c.YNoiseStd = math.NaN() }, nil},
		{"kl weight above one", func(c *estimator.Config) { c.KLWeightScale = 1.5 }, nil},
		{"negative kl weight", func(c *estimator.Config) { c.KLWeightScale = -1 }, nil},
		{"zero learning rate", func(c *estimator.Config) { c.LearningRate = 0 }, nil},
		{"unknown flow", func(c *estimator.Config) { c.FlowTypes = []string{"radial", "nice"} }, estimator.ErrUnknownFlow},
		{"unknown activation", func(c *estimator.Config) { c.Activation = "gelu" }, estimator.ErrUnknownActivation},
		{"nothing to learn", func(c *estimator.Config) {
			c.FlowTypes = []string{"identity"}
			c.TrainableBaseDist = false
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := estimator.DefaultConfig(1)
			tt.modify(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, estimator.ErrInvalidConfig)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}

			_, err = estimator.New(cfg)
			assert.ErrorIs(t, err, estimator.ErrInvalidConfig)
		})
	}

	assert.NoError(t, estimator.DefaultConfig(2).Validate())
	assert.NoError(t, estimator.DefaultBayesianConfig(2).Validate())

	empty := estimator.DefaultConfig(1)
	empty.HiddenSizes = []int{}
	assert.NoError(t, empty.Validate())
}

// TestParseConfig tests YAML decoding with defaults and strict keys.
func TestParseConfig(t *testing.T) {
	cfg, err := estimator.ParseConfig([]byte(`
dims: 2
flow_types: [planar, affine]
x_noise_std: 0.5
`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Dims)
	assert.Equal(t, []string{"planar", "affine"}, cfg.FlowTypes)
	assert.Equal(t, 0.5, cfg.XNoiseStd)
	assert.Equal(t, []int{16, 16}, cfg.HiddenSizes)
	assert.False(t, cfg.Bayesian)

	cfg, err = estimator.ParseConfig([]byte("bayesian: true\nkl_use_exact: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Bayesian)
	assert.Equal(t, []int{10}, cfg.HiddenSizes)
	assert.Equal(t, 1.0, cfg.KLWeightScale)

	_, err = estimator.ParseConfig([]byte("dims: 1\nhiden_sizes: [4]\n"))
	assert.ErrorIs(t, err, estimator.ErrInvalidConfig)

	_, err = estimator.ParseConfig([]byte("kl_weight_scale: 2\n"))
	assert.ErrorIs(t, err, estimator.ErrInvalidConfig)

	cfg, err = estimator.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, estimator.DefaultConfig(1), cfg)
}

// TestConfig_YAMLRoundTrip tests that a written config reads back unchanged.
func TestConfig_YAMLRoundTrip(t *testing.T) {
	want := estimator.DefaultBayesianConfig(3)
	want.InputDims = 2
	want.FlowTypes = []string{"radial", "affine", "planar"}
	want.YNoiseStd = 0.25
	want.TrainablePrior = true
	want.Seed = 42

	var buf bytes.Buffer
	require.NoError(t, want.WriteYAML(&buf))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	got, err := estimator.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = estimator.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestBuildDenseLayers tests the layer count with and without input noise.
func TestBuildDenseLayers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cfg := estimator.NetworkConfig{
		InputDims:   1,
		HiddenSizes: []int{2, 2, 2},
		Activation:  "tanh",
		OutputSize:  2,
	}

	layers, err := estimator.BuildDenseLayers(cfg, rng, cpu.New())
	require.NoError(t, err)
	assert.Len(t, layers, 4)
	last, ok := layers[3].(*nn.Dense)
	require.True(t, ok)
	assert.Equal(t, 2, last.OutFeatures())
	assert.Equal(t, "linear", last.Activation())

	cfg.XNoiseStd = 1
	layers, err = estimator.BuildDenseLayers(cfg, rng, cpu.New())
	require.NoError(t, err)
	assert.Len(t, layers, 5)
	assert.IsType(t, &nn.GaussianNoise{}, layers[0])

	cfg.Variational = &estimator.VariationalOptions{KLWeight: 1}
	layers, err = estimator.BuildDenseLayers(cfg, rng, cpu.New())
	require.NoError(t, err)
	assert.Len(t, layers, 5)
	assert.IsType(t, &nn.DenseVariational{}, layers[4])

	cfg.Activation = "swish"
	_, err = estimator.BuildDenseLayers(cfg, rng, cpu.New())
	assert.ErrorIs(t, err, nn.ErrUnknownActivation)
}

// TestEstimator_OutputShapes fits briefly and checks the distribution shapes.
func TestEstimator_OutputShapes(t *testing.T) {
	tests := []struct {
		name      string
		dims      int
		flows     []string
		trainable bool
	}{
		{"1d flows fixed base", 1, []string{"radial", "affine", "planar"}, false},
		{"1d no flows trainable base", 1, []string{}, true},
		{"3d flows trainable base", 3, []string{"radial", "affine", "planar"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := estimator.DefaultConfig(tt.dims)
			cfg.InputDims = tt.dims
			cfg.FlowTypes = tt.flows
			cfg.TrainableBaseDist = tt.trainable
			e := mustNew(t, cfg)

			x := linspaceColumns(t, 10, tt.dims)
			y := linspaceColumns(t, 10, tt.dims)
			history, err := e.Fit(x, y, estimator.DefaultFitOptions(1))
			require.NoError(t, err)
			require.Len(t, history.Loss, 1)

			dist, err := e.Forward(x, nn.ModeInfer)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{tt.dims}, dist.EventShape())
			assert.Equal(t, tensor.Shape{10}, dist.BatchShape())

			lp, err := dist.LogProb(tensor.Zeros(tensor.Shape{1, tt.dims}, cpu.New()))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{10}, lp.Shape())

			sample, err := dist.(distributions.Sampler).Sample(rand.New(rand.NewSource(1)))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{10, tt.dims}, sample.Shape())
		})
	}
}

// TestEstimator_EmptyFlowsIsBase tests that no flows yields the trainable base.
func TestEstimator_EmptyFlowsIsBase(t *testing.T) {
	cfg := estimator.DefaultConfig(2)
	cfg.FlowTypes = nil
	e := mustNew(t, cfg)
	assert.Equal(t, 4, e.DistributionLayer().ParamSize())

	dist, err := e.Forward(linspaceColumns(t, 5, 1), nn.ModeInfer)
	require.NoError(t, err)
	transformed, ok := dist.(*distributions.Transformed)
	require.True(t, ok)
	assert.Equal(t, 0, transformed.Chain().Len())

	y := linspaceColumns(t, 5, 2)
	got, err := dist.LogProb(y)
	require.NoError(t, err)
	want, err := transformed.Base().LogProb(y)
	require.NoError(t, err)
	assert.Equal(t, want.Data(), got.Data())
}

// TestEstimator_YNoise tests that target noise applies only in ModeTrain.
func TestEstimator_YNoise(t *testing.T) {
	cfg := estimator.DefaultConfig(1)
	cfg.FlowTypes = []string{"planar", "radial", "affine"}
	cfg.XNoiseStd = 1
	cfg.YNoiseStd = 1
	e := mustNew(t, cfg)

	_, err := e.Fit(linspaceColumns(t, 10, 1), linspaceColumns(t, 10, 1), estimator.DefaultFitOptions(10))
	require.NoError(t, err)

	base := distributions.StandardNormal(1, cpu.New())
	y := tensor.Zeros(tensor.Shape{1, 1}, cpu.New())

	loss1, err := e.Loss(y, base, nn.ModeInfer)
	require.NoError(t, err)
	loss2, err := e.Loss(y, base, nn.ModeInfer)
	require.NoError(t, err)
	assert.Equal(t, loss1.Item(), loss2.Item())
	assert.InDelta(t, 0.5*math.Log(2*math.Pi), loss1.Item(), 1e-12)

	loss1, err = e.Loss(y, base, nn.ModeTrain)
	require.NoError(t, err)
	loss2, err = e.Loss(y, base, nn.ModeTrain)
	require.NoError(t, err)
	assert.NotEqual(t, loss1.Item(), loss2.Item())
}

// TestEstimator_EvaluateDeterministic tests that evaluation ignores input noise.
func TestEstimator_EvaluateDeterministic(t *testing.T) {
	cfg := estimator.DefaultConfig(1)
	cfg.XNoiseStd = 0.5
	cfg.YNoiseStd = 0.5
	e := mustNew(t, cfg)
	x, y := linspaceColumns(t, 20, 1), linspaceColumns(t, 20, 1)

	out1, err := e.Evaluate(x, y)
	require.NoError(t, err)
	out2, err := e.Evaluate(x, y)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}

// TestEstimator_FitReducesLoss tests that training lowers the loss.
func TestEstimator_FitReducesLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	x := tensor.Linspace(-2, 2, 64, cpu.New())
	y := x.MulScalar(2).Add(tensor.Randn(tensor.Shape{64, 1}, rng, cpu.New()).MulScalar(0.3))

	e := mustNew(t, estimator.DefaultConfig(1))
	before, err := e.Evaluate(x, y)
	require.NoError(t, err)

	var epochs []int
	opts := estimator.DefaultFitOptions(100)
	opts.OnEpoch = func(epoch int, _ float64) { epochs = append(epochs, epoch) }
	history, err := e.Fit(x, y, opts)
	require.NoError(t, err)
	require.Len(t, history.Loss, 100)
	assert.Len(t, epochs, 100)

	after, err := e.Evaluate(x, y)
	require.NoError(t, err)
	assert.Less(t, after, before)
	assert.Less(t, history.Loss[99], history.Loss[0])
}

// TestEstimator_ShapeErrors tests rejected inputs and targets.
func TestEstimator_ShapeErrors(t *testing.T) {
	e := mustNew(t, estimator.DefaultConfig(1))

	_, err := e.Forward(tensor.Zeros(tensor.Shape{4, 2}, cpu.New()), nn.ModeInfer)
	assert.ErrorIs(t, err, estimator.ErrShapeMismatch)

	_, err = e.Fit(linspaceColumns(t, 4, 1), linspaceColumns(t, 5, 1), estimator.FitOptions{})
	assert.ErrorIs(t, err, estimator.ErrShapeMismatch)

	_, err = e.Evaluate(linspaceColumns(t, 4, 1), linspaceColumns(t, 4, 2))
	assert.ErrorIs(t, err, estimator.ErrShapeMismatch)
}

// TestEstimator_Bayesian tests the variational estimator end to end.
func TestEstimator_Bayesian(t *testing.T) {
	for _, exact := range []bool{true, false} {
		cfg := estimator.DefaultBayesianConfig(1)
		cfg.KLUseExact = exact
		cfg.KLWeightScale = 0.01
		e, err := estimator.NewBayesian(cfg)
		require.NoError(t, err)
		assert.Equal(t, estimator.Bayesian, e.Kind())
		assert.Nil(t, e.KL())

		// Hidden 1 -> 10, output 10 -> 8 (two radial flows and the base),
		// each weight with a mean and a raw scale.
		size := (1*10 + 10) + (10*8 + 8)
		assert.Equal(t, 2*size, e.NumParameters())
		assert.Len(t, e.Layers(), 2)

		x, y := linspaceColumns(t, 16, 1), linspaceColumns(t, 16, 1)
		history, err := e.Fit(x, y, estimator.DefaultFitOptions(3))
		require.NoError(t, err)
		for _, loss := range history.Loss {
			assert.False(t, math.IsNaN(loss))
		}
		require.NotNil(t, e.KL())

		loss, err := e.Evaluate(x, y)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(loss) || math.IsInf(loss, 0))
	}

	cfg := estimator.DefaultBayesianConfig(1)
	cfg.TrainablePrior = true
	e, err := estimator.FromConfig(cfg)
	require.NoError(t, err)
	size := (1*10 + 10) + (10*8 + 8)
	assert.Equal(t, 3*size, e.NumParameters())

	cfg.KLWeightScale = 1.01
	_, err = estimator.NewBayesian(cfg)
	assert.True(t, errors.Is(err, estimator.ErrInvalidConfig))
}

// TestEstimator_Variants tests FromConfig dispatch.
func TestEstimator_Variants(t *testing.T) {
	e, err := estimator.FromConfig(estimator.DefaultConfig(1))
	require.NoError(t, err)
	assert.Equal(t, estimator.MaximumLikelihood, e.Kind())
	assert.Equal(t, "maximum-likelihood", e.Kind().String())
	assert.Len(t, e.Layers(), 3)

	cfg := estimator.DefaultConfig(1)
	cfg.XNoiseStd = 0.1
	assert.Len(t, mustNew(t, cfg).Layers(), 4)
}

// heteroscedastic draws y = 5·sin(2x) + |x|·ε on 300 points in [-3, 3].
func heteroscedastic(rng *rand.Rand) (x, y *tensor.Tensor) {
	x = tensor.Linspace(-3, 3, 300, cpu.New())
	y = tensor.Zeros(tensor.Shape{300, 1}, cpu.New())
	yd := y.Data()
	for i, v := range x.Data() {
		yd[i] = 5*math.Sin(2*v) + math.Abs(v)*rng.NormFloat64()
	}
	return x, y
}

// TestEstimator_XNoiseRegularization tests that heavy input noise degrades the
// held-out fit.
func TestEstimator_XNoiseRegularization(t *testing.T) {
	if testing.Short() {
		t.Skip("long training")
	}

	rng := rand.New(rand.NewSource(22))
	xTrain, yTrain := heteroscedastic(rng)
	xTest, yTest := heteroscedastic(rng)

	fit := func(xNoise float64) *estimator.Estimator {
		cfg := estimator.DefaultConfig(1)
		cfg.XNoiseStd = xNoise
		e := mustNew(t, cfg)
		_, err := e.Fit(xTrain, yTrain, estimator.DefaultFitOptions(700))
		require.NoError(t, err)
		return e
	}

	little := fit(0.1)
	out1, err := little.Evaluate(xTest, yTest)
	require.NoError(t, err)
	out2, err := little.Evaluate(xTest, yTest)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)

	out3, err := fit(10).Evaluate(xTest, yTest)
	require.NoError(t, err)
	assert.Greater(t, out3, out2)
}

// TestEstimator_SaveLoad tests that a checkpoint restores the fitted weights.
func TestEstimator_SaveLoad(t *testing.T) {
	x, y := linspaceColumns(t, 20, 1), linspaceColumns(t, 20, 1)
	path := filepath.Join(t.TempDir(), "model.nfcd")

	cfg := estimator.DefaultConfig(1)
	cfg.FlowTypes = []string{"affine", "planar"}
	e := mustNew(t, cfg)
	_, err := e.Fit(x, y, estimator.DefaultFitOptions(5))
	require.NoError(t, err)
	require.NoError(t, e.Save(path))

	loaded, err := estimator.Load(path)
	require.NoError(t, err)
	assert.Equal(t, e.Config(), loaded.Config())
	assert.Equal(t, e.NumParameters(), loaded.NumParameters())

	want, err := e.Evaluate(x, y)
	require.NoError(t, err)
	got, err := loaded.Evaluate(x, y)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	bayes, err := estimator.NewBayesian(estimator.DefaultBayesianConfig(1))
	require.NoError(t, err)
	require.NoError(t, bayes.Save(path))
	loaded, err = estimator.Load(path)
	require.NoError(t, err)
	assert.Equal(t, estimator.Bayesian, loaded.Kind())
	for i, p := range bayes.Parameters() {
		assert.Equal(t, p.Tensor().Data(), loaded.Parameters()[i].Tensor().Data())
	}

	require.NoError(t, os.WriteFile(path, []byte("not a checkpoint"), 0o600))
	_, err = estimator.Load(path)
	assert.Error(t, err)
}
