// Package observations reads the scalar time series an estimation run
// operates on: a CSV of epoch/value pairs plus a YAML sidecar naming the
// sampling period and offset epochs, with blank fields marking missing
// observations.
package observations

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Payload is the observation data an estimation run consumes: a uniformly
// sampled scalar series (NaN = missing) together with the metadata needed
// to build the design matrix.
type Payload struct {
	SamplingPeriod float64
	Offsets        []float64 // MJD
	Epochs         []float64 // MJD, length m
	Values         []float64 // length m, NaN = missing
}

// sidecar is the YAML metadata file accompanying the CSV series.
type sidecar struct {
	SamplingPeriod float64   `yaml:"sampling_period"`
	Offsets        []float64 `yaml:"offsets,omitempty"`
}

// LoadSidecar reads the YAML metadata file naming the sampling period (in
// days) and offset epochs (MJD).
func LoadSidecar(path string) (samplingPeriod float64, offsets []float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("reading sidecar %s: %w", path, err)
	}
	var s sidecar
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return 0, nil, fmt.Errorf("parsing sidecar %s: %w", path, err)
	}
	if s.SamplingPeriod <= 0 {
		return 0, nil, fmt.Errorf("sidecar %s: sampling_period must be positive, got %f", path, s.SamplingPeriod)
	}
	return s.SamplingPeriod, s.Offsets, nil
}

// LoadCSV reads a two-column CSV (epoch, value) with a header row. A blank
// value field marks a missing observation (NaN).
func LoadCSV(path string) (epochs, values []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != 2 {
		return nil, nil, fmt.Errorf("expected 2 columns (epoch, value), got %d", len(header))
	}

	row := 0
	for {
		record, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, nil, fmt.Errorf("read row %d: %w", row+2, rerr)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if len(record) != 2 {
			return nil, nil, fmt.Errorf("row %d: expected 2 columns, got %d", row+2, len(record))
		}

		epoch, perr := strconv.ParseFloat(record[0], 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("parse epoch at row %d (%q): %w", row+2, record[0], perr)
		}
		epochs = append(epochs, epoch)

		if record[1] == "" {
			values = append(values, math.NaN())
		} else {
			v, perr := strconv.ParseFloat(record[1], 64)
			if perr != nil {
				return nil, nil, fmt.Errorf("parse value at row %d (%q): %w", row+2, record[1], perr)
			}
			values = append(values, v)
		}
		row++
	}

	if row == 0 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	return epochs, values, nil
}

// Load combines LoadSidecar and LoadCSV into a complete Payload.
func Load(csvPath, sidecarPath string) (*Payload, error) {
	sp, offsets, err := LoadSidecar(sidecarPath)
	if err != nil {
		return nil, err
	}
	epochs, values, err := LoadCSV(csvPath)
	if err != nil {
		return nil, err
	}
	return &Payload{
		SamplingPeriod: sp,
		Offsets:        offsets,
		Epochs:         epochs,
		Values:         values,
	}, nil
}
