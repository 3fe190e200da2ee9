package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"thingsync/internal/canon"
)

// csvHeader is the shared column layout of the view CSV files.
var csvHeader = []string{
	"ItemName", "ItemType", "ResidesWithin", "Notes",
	"ToDoDate", "DueDate", "DueTime", "Tags", "TaskID",
}

// WriteCSV writes records to a view CSV file. Notes have newlines
// flattened so one record stays one row.
func WriteCSV(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		notes := strings.NewReplacer("\r", " ", "\n", " ").Replace(r.Notes)
		row := []string{
			r.Title, "Task", r.Project, notes,
			r.StartDate, r.DueDate, r.DueTime, r.Tags, r.LocalID,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ReadCSV loads records from a view CSV file. A missing file is not an
// error; it reads as no records.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []Record
	for _, row := range rows[1:] {
		records = append(records, Record{
			Title:     get(row, "ItemName"),
			Notes:     get(row, "Notes"),
			Project:   get(row, "ResidesWithin"),
			StartDate: get(row, "ToDoDate"),
			DueDate:   get(row, "DueDate"),
			DueTime:   get(row, "DueTime"),
			Tags:      get(row, "Tags"),
			LocalID:   get(row, "TaskID"),
		})
	}
	return records, nil
}

// LoadTitles returns the canonical titles found in a view CSV, for
// filtering later views. A missing file reads as an empty set.
func LoadTitles(path string) (map[string]struct{}, error) {
	records, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]struct{}, len(records))
	for _, r := range records {
		titles[canon.Title(r.Title)] = struct{}{}
	}
	return titles, nil
}
