package dataset

import (
	"errors"
	"strings"
	"testing"

	"towncore/pkg/domain"
)

func TestDecodeJSON(t *testing.T) {
	doc := `{"towns":[{"id":"a","name":"Oulu","x":3,"y":-4,"tax":10}],"vassalships":[{"vassal":"a","master":"b"}]}`
	ds, err := Decode("north.JSON", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ds.Towns) != 1 || ds.Towns[0] != (Town{ID: "a", Name: "Oulu", X: 3, Y: -4, Tax: 10}) {
		t.Fatalf("unexpected towns %+v", ds.Towns)
	}
	if len(ds.Vassalships) != 1 || ds.Vassalships[0].Master != "b" {
		t.Fatalf("unexpected vassalships %+v", ds.Vassalships)
	}
	if _, err := DecodeJSON(strings.NewReader(`{"cities":[]}`)); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestDecodeTownsCSV(t *testing.T) {
	input := "id,name,x,y,tax\n" +
		"a, Oulu, 1, 2, 3\n" +
		"# comment\n" +
		"b,Espoo,x,0,1\n" +
		"c,Turku,5\n" +
		"d,Vaasa,-1,-1,0\n"
	towns, err := DecodeTownsCSV(strings.NewReader(input))
	if len(towns) != 2 || towns[0].Name != "Oulu" || towns[1].ID != "d" {
		t.Fatalf("unexpected towns %+v", towns)
	}
	var batch *BatchError
	if !errors.As(err, &batch) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if len(batch.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %d: %s", len(batch.Errors), batch.ErrorList())
	}
	if !strings.Contains(batch.Errors[0].Error(), "x:") {
		t.Fatalf("expected field name in error, got %v", batch.Errors[0])
	}
}

func TestDecodeTownsCSVWithoutHeader(t *testing.T) {
	towns, err := DecodeTownsCSV(strings.NewReader("a,Oulu,1,2,3\n"))
	if err != nil || len(towns) != 1 {
		t.Fatalf("unexpected result %+v %v", towns, err)
	}
}

func TestDecodeVassalshipsCSV(t *testing.T) {
	links, err := DecodeVassalshipsCSV(strings.NewReader("vassal,master\nb,a\nc,a\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(links) != 2 || links[1] != (Vassalship{Vassal: "c", Master: "a"}) {
		t.Fatalf("unexpected links %+v", links)
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, err := Decode("towns.xml", strings.NewReader("")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	ds := Dataset{
		Towns: []Town{
			{ID: "a", Tax: 1},
			{ID: "", Tax: 1},
			{ID: "b", Tax: -1},
			{ID: "c", X: domain.MaxCoord + 1},
		},
		Vassalships: []Vassalship{{Vassal: "a", Master: "a"}, {Vassal: "b", Master: "a"}},
	}
	err := ds.Validate()
	var batch *BatchError
	if !errors.As(err, &batch) || len(batch.Errors) != 4 {
		t.Fatalf("expected 4 validation errors, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidTown) || !errors.Is(err, domain.ErrInvalidLink) {
		t.Fatalf("expected wrapped domain errors, got %v", err)
	}
	if err := (Dataset{Towns: []Town{{ID: "ok"}}}).Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestBatchErrorMessages(t *testing.T) {
	if (&BatchError{}).Error() != "batch error with no errors" {
		t.Fatalf("unexpected empty message")
	}
	one := &BatchError{Errors: []error{errors.New("boom")}}
	if one.Error() != "boom" {
		t.Fatalf("unexpected single message %q", one.Error())
	}
	many := &BatchError{Errors: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	if many.Error() != "3 errors: a (and 2 more)" {
		t.Fatalf("unexpected message %q", many.Error())
	}
	if many.ErrorList() != "a\nb\nc" {
		t.Fatalf("unexpected list %q", many.ErrorList())
	}
}
