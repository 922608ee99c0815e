package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// EncodeJSON writes ds as an indented dataset document readable by DecodeJSON.
func EncodeJSON(w io.Writer, ds Dataset) error {
	if ds.Towns == nil {
		ds.Towns = []Town{}
	}
	if ds.Vassalships == nil {
		ds.Vassalships = []Vassalship{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset json: %w", err)
	}
	return nil
}

// EncodeTownsCSV writes a header and one id,name,x,y,tax row per town.
func EncodeTownsCSV(w io.Writer, towns []Town) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "name", "x", "y", "tax"})
	for _, t := range towns {
		_ = cw.Write([]string{string(t.ID), t.Name, strconv.Itoa(t.X), strconv.Itoa(t.Y), strconv.Itoa(t.Tax)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode towns csv: %w", err)
	}
	return nil
}

// EncodeVassalshipsCSV writes a header and one vassal,master row per edge.
func EncodeVassalshipsCSV(w io.Writer, links []Vassalship) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"vassal", "master"})
	for _, v := range links {
		_ = cw.Write([]string{string(v.Vassal), string(v.Master)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encode vassalships csv: %w", err)
	}
	return nil
}
