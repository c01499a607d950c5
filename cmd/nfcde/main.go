// Package main provides the nfcde command-line tool.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/born-ml/nfcde/backend/cpu"
	"github.com/born-ml/nfcde/estimator"
	"github.com/born-ml/nfcde/nn"
	"github.com/born-ml/nfcde/tensor"
)

const version = "v0.1.0-dev"

const usage = `nfcde - conditional density estimation with normalizing flows

Commands:
  version    Show version
  config     Print a default config as YAML
  train      Fit an estimator to a CSV file and save a checkpoint
  eval       Report the mean loss of a checkpoint on a CSV file
  density    Print p(y|x) on a grid for a one-dimensional output
`

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("nfcde: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return nil
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "version":
		fmt.Fprintf(out, "nfcde %s\n", version)
		return nil
	case "config":
		return runConfig(rest, out)
	case "train":
		return runTrain(rest, out)
	case "eval":
		return runEval(rest, out)
	case "density":
		return runDensity(rest, out)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	bayesian := fs.Bool("bayesian", false, "Print the Bayesian defaults")
	dims := fs.Int("dims", 1, "Output dimensionality")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := estimator.DefaultConfig(*dims)
	if *bayesian {
		cfg = estimator.DefaultBayesianConfig(*dims)
	}
	return cfg.WriteYAML(out)
}

func runTrain(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file (defaults when empty)")
	dataPath := fs.String("data", "", "Training CSV file")
	epochs := fs.Int("epochs", 300, "Number of training epochs")
	batchSize := fs.Int("batch", 32, "Batch size")
	logEvery := fs.Int("log-every", 10, "Log the loss every N epochs (0 = never)")
	output := fs.String("out", "model.nfcd", "Checkpoint path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataPath == "" {
		return errors.New("train: -data is required")
	}

	cfg := estimator.DefaultConfig(1)
	if *configPath != "" {
		var err error
		if cfg, err = estimator.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	data, err := LoadCSV(*dataPath, cfg.InputDims, cfg.Dims)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	e, err := estimator.FromConfig(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s estimator: flows %v, %d parameters, %d examples\n",
		e.Kind(), cfg.FlowTypes, e.NumParameters(), data.X.Shape()[0])

	opts := estimator.DefaultFitOptions(*epochs)
	opts.BatchSize = *batchSize
	opts.OnEpoch = func(epoch int, loss float64) {
		if *logEvery > 0 && (epoch+1)%*logEvery == 0 {
			fmt.Fprintf(out, "epoch %4d  loss %.4f\n", epoch+1, loss)
		}
	}
	if _, err := e.Fit(data.X, data.Y, opts); err != nil {
		return err
	}

	if err := e.Save(*output); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", *output)
	return nil
}

func runEval(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	modelPath := fs.String("model", "model.nfcd", "Checkpoint path")
	dataPath := fs.String("data", "", "Evaluation CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataPath == "" {
		return errors.New("eval: -data is required")
	}

	e, err := estimator.Load(*modelPath)
	if err != nil {
		return err
	}
	cfg := e.Config()
	data, err := LoadCSV(*dataPath, cfg.InputDims, cfg.Dims)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}

	loss, err := e.Evaluate(data.X, data.Y)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "loss %.6f\n", loss)
	return nil
}

func runDensity(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("density", flag.ContinueOnError)
	modelPath := fs.String("model", "model.nfcd", "Checkpoint path")
	x := fs.Float64("x", 0, "Input value (every input feature is set to it)")
	from := fs.Float64("from", -5, "Grid start")
	to := fs.Float64("to", 5, "Grid end")
	n := fs.Int("n", 101, "Number of grid points")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := estimator.Load(*modelPath)
	if err != nil {
		return err
	}
	cfg := e.Config()
	if cfg.Dims != 1 {
		return fmt.Errorf("density: needs a one-dimensional output, model has %d", cfg.Dims)
	}
	if *n < 1 {
		return fmt.Errorf("density: -n must be positive, got %d", *n)
	}

	backend := cpu.New()
	input := tensor.Full(tensor.Shape{1, cfg.InputDims}, *x, backend)
	dist, err := e.Forward(input, nn.ModeInfer)
	if err != nil {
		return err
	}
	grid := tensor.Linspace(*from, *to, *n, backend)
	prob, err := dist.Prob(grid)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "y,density")
	for i, y := range grid.Data() {
		fmt.Fprintf(out, "%g,%g\n", y, prob.Data()[i])
	}
	return nil
}
