package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a numeric CSV file with a header row. Columns named in
// targets become targets, every other column is an input.
func LoadCSV(path string, targets []string) (*DataSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file, targets)
}

func ReadCSV(r io.Reader, targets []string) (*DataSet, error) {
	var reader = csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var names = make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(name)
	}

	var uses = make([]Use, len(names))
	for i := range uses {
		uses[i] = Input
	}
	for _, target := range targets {
		var found = false
		for i, name := range names {
			if name == target {
				uses[i] = Target
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("target column %v not found", target)
		}
	}

	var columns = make([][]float64, len(names))
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("line %v column %v: %w", line, names[i], err)
			}
			columns[i] = append(columns[i], v)
		}
	}
	if len(columns[0]) == 0 {
		return nil, fmt.Errorf("data set has no instances")
	}
	return New(columns, names, uses)
}
