// Package dataset reads WISDM-style raw accelerometer recordings into labeled
// samples for the training pipeline.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/konkalaitzidis/digital-health-app/internal/activity"
)

// Stats reports what the loader kept and dropped. Raw WISDM files carry
// malformed rows (truncated lines, ",;" artifacts, empty readings) and
// activities outside the MET mapping; both are skipped, not fatal.
type Stats struct {
	Rows       int // Total non-empty lines seen
	Kept       int // Rows converted into labeled samples
	Malformed  int // Rows that failed to parse
	Unmapped   int // Rows whose activity has no MET class
	Activities map[string]int
}

// Load reads a WISDM raw file from path. Rows have the form
//
//	user,activity,timestamp,accel_x,accel_y,accel_z;
//
// with an optional stray comma before the terminating semicolon.
func Load(path string) ([]activity.LabeledSample, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses WISDM rows from r. Sample order is preserved; the windowing
// pipeline depends on it.
func Read(r io.Reader) ([]activity.LabeledSample, Stats, error) {
	stats := Stats{Activities: make(map[string]int)}
	var samples []activity.LabeledSample

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stats.Rows++

		sample, ok := parseRow(line)
		if !ok {
			stats.Malformed++
			continue
		}

		class, ok := activity.METClasses[sample.Activity]
		if !ok {
			stats.Unmapped++
			continue
		}
		sample.Class = class

		samples = append(samples, sample)
		stats.Kept++
		stats.Activities[sample.Activity]++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("reading dataset: %w", err)
	}

	return samples, stats, nil
}

func parseRow(line string) (activity.LabeledSample, bool) {
	// Normalize the known raw-file artifacts: ",;" runs and the terminating
	// semicolon.
	line = strings.TrimSuffix(line, ";")
	line = strings.TrimSuffix(line, ",")

	fields := strings.Split(line, ",")
	if len(fields) != 6 {
		return activity.LabeledSample{}, false
	}

	user, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return activity.LabeledSample{}, false
	}

	var xyz [3]float64
	for i, f := range fields[3:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return activity.LabeledSample{}, false
		}
		xyz[i] = v
	}

	return activity.LabeledSample{
		User:     user,
		Activity: strings.TrimSpace(fields[1]),
		X:        xyz[0],
		Y:        xyz[1],
		Z:        xyz[2],
	}, true
}
