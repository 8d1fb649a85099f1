package data

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// LoadCSV loads a set from a CSV file.
// labelCols specifies the indices of columns used as targets, in target order.
// All other columns are used as inputs. hasHeader skips the first line if true.
func LoadCSV(filename string, labelCols []int, hasHeader bool) (*Set, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return ReadCSV(file, labelCols, hasHeader)
}

// ReadCSV reads a set from CSV records; see LoadCSV.
func ReadCSV(r io.Reader, labelCols []int, hasHeader bool) (*Set, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv")
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}
	if len(records) <= startRow {
		return nil, errors.Wrap(ErrEmpty, "csv has no data rows")
	}

	numCols := len(records[0])
	isLabelCol := make(map[int]bool, len(labelCols))
	for _, col := range labelCols {
		if col < 0 || col >= numCols {
			return nil, errors.Errorf("data: label column %d out of range [0, %d)", col, numCols)
		}
		isLabelCol[col] = true
	}

	numSamples := len(records) - startRow
	set := &Set{
		Inputs:  make([][]float64, numSamples),
		Targets: make([][]float64, numSamples),
	}

	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return nil, errors.Wrapf(ErrWidth, "row %d has %d columns, want %d", i, len(record), numCols)
		}

		inputRow := make([]float64, 0, numCols-len(isLabelCol))
		values := make([]float64, numCols)
		for j, valStr := range record {
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to parse value at row %d, col %d", i, j)
			}
			values[j] = val
			if !isLabelCol[j] {
				inputRow = append(inputRow, val)
			}
		}

		// Targets keep the order given by labelCols
		targetRow := make([]float64, len(labelCols))
		for k, col := range labelCols {
			targetRow[k] = values[col]
		}

		set.Inputs[i-startRow] = inputRow
		set.Targets[i-startRow] = targetRow
	}

	return set, nil
}

// Normalize performs min-max normalization of the inputs and returns the per-column minimum
// and maximum so new inputs can be scaled the same way.
func (s *Set) Normalize() (min, max []float64) {
	if len(s.Inputs) == 0 {
		return nil, nil
	}

	numFeatures := len(s.Inputs[0])
	min = append([]float64(nil), s.Inputs[0]...)
	max = append([]float64(nil), s.Inputs[0]...)

	for _, sample := range s.Inputs {
		for i := 0; i < numFeatures; i++ {
			if sample[i] < min[i] {
				min[i] = sample[i]
			}
			if sample[i] > max[i] {
				max[i] = sample[i]
			}
		}
	}

	for _, sample := range s.Inputs {
		for i := 0; i < numFeatures; i++ {
			diff := max[i] - min[i]
			if diff != 0 {
				sample[i] = (sample[i] - min[i]) / diff
			} else {
				sample[i] = 0
			}
		}
	}
	return min, max
}

// Split splits the set into two based on the given ratio (0.0 to 1.0).
// The halves share backing storage with s.
func (s *Set) Split(ratio float64) (*Set, *Set) {
	if ratio <= 0 {
		return &Set{}, s
	}
	if ratio >= 1 {
		return s, &Set{}
	}

	splitIdx := int(float64(len(s.Inputs)) * ratio)

	train := &Set{
		Inputs:  s.Inputs[:splitIdx],
		Targets: s.Targets[:splitIdx],
	}
	test := &Set{
		Inputs:  s.Inputs[splitIdx:],
		Targets: s.Targets[splitIdx:],
	}
	return train, test
}
