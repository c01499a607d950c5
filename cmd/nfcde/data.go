package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/nfcde/backend/cpu"
	"github.com/born-ml/nfcde/tensor"
)

// Dataset holds paired inputs and targets.
type Dataset struct {
	X *tensor.Tensor // [N, inputDims]
	Y *tensor.Tensor // [N, dims]
}

// LoadCSV loads a dataset from a CSV file.
//
// CSV Format:
//
//	x0,...,x{inputDims-1},y0,...,y{dims-1}
//	0.5,1.25
//	-0.1,0.8
//
// A first row that does not parse as numbers is treated as a header. Lines
// starting with '#' are skipped.
func LoadCSV(filename string, inputDims, dims int) (*Dataset, error) {
	//nolint:gosec // G304: File path comes from user input
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	return ReadCSV(file, inputDims, dims)
}

// ReadCSV parses a dataset from r. See LoadCSV for the format.
func ReadCSV(r io.Reader, inputDims, dims int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = inputDims + dims
	reader.TrimLeadingSpace = true

	var xs, ys [][]float64
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		values, err := parseRecord(record)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		xs = append(xs, values[:inputDims])
		ys = append(ys, values[inputDims:])
	}
	if len(xs) == 0 {
		return nil, errors.New("no data rows")
	}

	backend := cpu.New()
	x, err := tensor.FromRows(xs, backend)
	if err != nil {
		return nil, err
	}
	y, err := tensor.FromRows(ys, backend)
	if err != nil {
		return nil, err
	}
	return &Dataset{X: x, Y: y}, nil
}

func parseRecord(record []string) ([]float64, error) {
	values := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
