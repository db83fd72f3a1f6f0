package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Interchange table headers.
var (
	LabelHeader       = []string{"file", "arrival_time"}
	PredictionHeader  = []string{"file", "predicted_time"}
	DeliverableHeader = []string{"file", "lec_p"}
	CatalogHeader     = []string{"archivo", "lec_p"}
)

// LabelRow is a relative arrival label.
type LabelRow struct {
	File        string
	ArrivalTime float64
}

// PredictionRow is a relative arrival prediction.
type PredictionRow struct {
	File          string
	PredictedTime float64
}

// DeliverableRow is an absolute pick in Unix seconds.
type DeliverableRow struct {
	File string
	LecP float64
}

// CatalogRow is an upstream catalog pick: a numeric file id and an absolute time.
type CatalogRow struct {
	Archivo int
	LecP    float64
}

// CatalogFileName renders a catalog id as a source identity, e.g. 12 -> "00000012.mseed".
func CatalogFileName(archivo int, ext string) string {
	return fmt.Sprintf("%08d.%s", archivo, strings.TrimPrefix(ext, "."))
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func writeTable(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readTable reads a CSV table with the expected header and hands each record to fn with its
// 1-based line number.
func readTable(r io.Reader, header []string, fn func(line int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true
	got, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("store: empty table, want header %v", header)
	}
	if err != nil {
		return err
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(got[i], "\ufeff")) != h {
			return fmt.Errorf("store: unexpected header %v, want %v", got, header)
		}
	}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return err
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

func parseFloat(line int, col, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("store: line %d: %s: %w", line, col, err)
	}
	return v, nil
}

// WriteLabels writes a file,arrival_time table.
func WriteLabels(w io.Writer, rows []LabelRow) error {
	return writeTable(w, LabelHeader, len(rows), func(i int) []string {
		return []string{rows[i].File, formatFloat(rows[i].ArrivalTime)}
	})
}

// ReadLabels reads a file,arrival_time table.
func ReadLabels(r io.Reader) ([]LabelRow, error) {
	var out []LabelRow
	err := readTable(r, LabelHeader, func(line int, rec []string) error {
		v, err := parseFloat(line, "arrival_time", rec[1])
		if err != nil {
			return err
		}
		out = append(out, LabelRow{File: strings.TrimSpace(rec[0]), ArrivalTime: v})
		return nil
	})
	return out, err
}

// WritePredictions writes a file,predicted_time table.
func WritePredictions(w io.Writer, rows []PredictionRow) error {
	return writeTable(w, PredictionHeader, len(rows), func(i int) []string {
		return []string{rows[i].File, formatFloat(rows[i].PredictedTime)}
	})
}

// ReadPredictions reads a file,predicted_time table.
func ReadPredictions(r io.Reader) ([]PredictionRow, error) {
	var out []PredictionRow
	err := readTable(r, PredictionHeader, func(line int, rec []string) error {
		v, err := parseFloat(line, "predicted_time", rec[1])
		if err != nil {
			return err
		}
		out = append(out, PredictionRow{File: strings.TrimSpace(rec[0]), PredictedTime: v})
		return nil
	})
	return out, err
}

// WriteDeliverable writes a file,lec_p table.
func WriteDeliverable(w io.Writer, rows []DeliverableRow) error {
	return writeTable(w, DeliverableHeader, len(rows), func(i int) []string {
		return []string{rows[i].File, formatFloat(rows[i].LecP)}
	})
}

// ReadDeliverable reads a file,lec_p table.
func ReadDeliverable(r io.Reader) ([]DeliverableRow, error) {
	var out []DeliverableRow
	err := readTable(r, DeliverableHeader, func(line int, rec []string) error {
		v, err := parseFloat(line, "lec_p", rec[1])
		if err != nil {
			return err
		}
		out = append(out, DeliverableRow{File: strings.TrimSpace(rec[0]), LecP: v})
		return nil
	})
	return out, err
}

// ReadCatalog reads an archivo,lec_p table.
func ReadCatalog(r io.Reader) ([]CatalogRow, error) {
	var out []CatalogRow
	err := readTable(r, CatalogHeader, func(line int, rec []string) error {
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return fmt.Errorf("store: line %d: archivo: %w", line, err)
		}
		v, err := parseFloat(line, "lec_p", rec[1])
		if err != nil {
			return err
		}
		out = append(out, CatalogRow{Archivo: id, LecP: v})
		return nil
	})
	return out, err
}
