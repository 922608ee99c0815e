package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"towncore/pkg/domain"
)

// DecodeJSON reads a full dataset document.
func DecodeJSON(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return Dataset{}, fmt.Errorf("decode dataset json: %w", err)
	}
	return ds, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.Comment = '#'
	return csvr
}

// readRows walks CSV records, skipping a header whose first cell is header,
// and hands each record to fn. Failing rows are collected, not fatal.
func readRows(r io.Reader, header string, columns int, fn func(rec []string) error) error {
	csvr := newCSVReader(r)
	var errs []error
	for n := 0; ; n++ {
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// *csv.ParseError already carries the line.
			errs = append(errs, err)
			continue
		}
		line, _ := csvr.FieldPos(0)
		if n == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), header) {
			continue
		}
		if len(rec) != columns {
			errs = append(errs, fmt.Errorf("line %d: expected %d columns, got %d", line, columns, len(rec)))
			continue
		}
		if err := fn(rec); err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
		}
	}
	if len(errs) > 0 {
		return &BatchError{Errors: errs}
	}
	return nil
}

func atoi(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return n, nil
}

// DecodeTownsCSV reads rows of id,name,x,y,tax. Valid rows are returned even
// when others fail; the failures come back as a *BatchError.
func DecodeTownsCSV(r io.Reader) ([]Town, error) {
	var towns []Town
	err := readRows(r, "id", 5, func(rec []string) error {
		x, err := atoi("x", rec[2])
		if err != nil {
			return err
		}
		y, err := atoi("y", rec[3])
		if err != nil {
			return err
		}
		tax, err := atoi("tax", rec[4])
		if err != nil {
			return err
		}
		towns = append(towns, Town{
			ID:   domain.TownID(strings.TrimSpace(rec[0])),
			Name: strings.TrimSpace(rec[1]),
			X:    x,
			Y:    y,
			Tax:  tax,
		})
		return nil
	})
	return towns, err
}

// DecodeVassalshipsCSV reads rows of vassal,master.
func DecodeVassalshipsCSV(r io.Reader) ([]Vassalship, error) {
	var links []Vassalship
	err := readRows(r, "vassal", 2, func(rec []string) error {
		links = append(links, Vassalship{
			Vassal: domain.TownID(strings.TrimSpace(rec[0])),
			Master: domain.TownID(strings.TrimSpace(rec[1])),
		})
		return nil
	})
	return links, err
}

// Decode picks a decoder from the file extension of name. A .csv file holds
// towns only.
func Decode(name string, r io.Reader) (Dataset, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return DecodeJSON(r)
	case ".csv":
		towns, err := DecodeTownsCSV(r)
		return Dataset{Towns: towns}, err
	default:
		return Dataset{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}
