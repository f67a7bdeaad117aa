package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drakos74/scalearn/internal/storage"
)

// Save writes the dataset to a csv file with the target as last column.
func Save(path string, d Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file '%s': %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	record := make([]string, d.Features()+1)
	for i, row := range d.X {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		record[len(record)-1] = strconv.FormatFloat(d.Y[i], 'f', -1, 64)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("could not write row %d: %w", i, err)
		}
	}
	return nil
}

// Load reads a dataset from a csv file, taking the last column as target.
func Load(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("could not open file '%s': %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("could not read file '%s': %w", path, err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("empty file '%s': %w", path, storage.CouldNotLoadErr)
	}

	x := make([][]float64, len(records))
	y := make([]float64, len(records))
	for i, record := range records {
		if len(record) < 2 {
			return Dataset{}, fmt.Errorf("row %d has no features", i)
		}
		row := make([]float64, len(record)-1)
		for j, s := range record[:len(record)-1] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Dataset{}, fmt.Errorf("could not parse '%s' at [ %d | %d ]: %w", s, i, j, err)
			}
			row[j] = v
		}
		label, err := strconv.ParseFloat(record[len(record)-1], 64)
		if err != nil {
			return Dataset{}, fmt.Errorf("could not parse label '%s' at %d: %w", record[len(record)-1], i, err)
		}
		x[i] = row
		y[i] = label
	}
	return Dataset{X: x, Y: y}, nil
}

// ToFeatureFile writes the given vectors as a feature file for the classifier libraries.
// The last element of each vector is written as a categorical label.
func ToFeatureFile(parentPath string, description string, vectors [][]float64, predict bool) (string, error) {
	fn, err := storage.MakePath(parentPath, fmt.Sprintf("%s.csv", description))
	if err != nil {
		return "", err
	}
	file, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return "", fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	for _, vector := range vectors {
		lw := new(strings.Builder)
		for i, v := range vector {
			if i >= len(vector)-1 {
				lw.WriteString(toLabel(v))
			} else {
				lw.WriteString(fmt.Sprintf("%.4f,", v))
			}
		}
		_, _ = writer.WriteString(lw.String() + "\n")
	}
	return fn, nil
}

func toLabel(v float64) string {
	return fmt.Sprintf("c%d", int(v))
}

// FromLabel converts a categorical label back to its class value.
func FromLabel(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(s), "c"), 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse label '%s': %w", s, err)
	}
	return v, nil
}
