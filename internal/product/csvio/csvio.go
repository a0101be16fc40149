// Package csvio reads and writes the product catalogue as CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/abgdnv/kasir/internal/product/form"
	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/gocarina/gocsv"
)

// Record is one CSV line. Numbers stay text so they go through the same checks as the product form.
type Record struct {
	Name     string `csv:"name"`
	Cost     string `csv:"cost"`
	Price    string `csv:"price"`
	Stock    string `csv:"stock"`
	Category string `csv:"category"`
	ImageURL string `csv:"image_url"`
	Barcode  string `csv:"barcode"`
}

// LineError reports a rejected record. Line is the physical line the record starts on,
// counting the header as line 1, so quoted fields spanning several lines are accounted for.
type LineError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Result of an import: the products that passed validation and the lines that did not.
type Result struct {
	Products []model.Product
	Errors   []LineError
}

// Export writes a header and one line per product.
func Export(w io.Writer, products []model.Product) error {
	records := make([]*Record, len(products))
	for i, p := range products {
		records[i] = &Record{
			Name:     p.Name,
			Cost:     p.Cost.String(),
			Price:    p.Price.String(),
			Stock:    fmt.Sprint(p.Stock),
			Category: p.Category,
			ImageURL: p.ImageURL,
			Barcode:  p.Barcode,
		}
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Import parses r and validates every line with v.
// A malformed file fails as a whole; invalid lines are collected in Result.Errors.
func Import(r io.Reader, v *form.Validator) (Result, error) {
	lr := &lineReader{Reader: csv.NewReader(r)}
	var records []*Record
	if err := gocsv.UnmarshalCSV(lr, &records); err != nil {
		return Result{}, fmt.Errorf("failed to read csv: %w", err)
	}

	var res Result
	for i, rec := range records {
		p, err := v.Validate(rec.draft())
		if err != nil {
			var verr *form.ValidationError
			if !errors.As(err, &verr) {
				return Result{}, err
			}
			res.Errors = append(res.Errors, LineError{Line: lr.line(i + 1), Field: verr.Field, Message: verr.Message})
			continue
		}
		res.Products = append(res.Products, p)
	}
	return res, nil
}

func (r *Record) draft() form.Draft {
	return form.Draft{
		Name:     r.Name,
		Cost:     r.Cost,
		Price:    r.Price,
		Stock:    r.Stock,
		Category: r.Category,
		ImageURL: r.ImageURL,
		Barcode:  r.Barcode,
	}
}

// lineReader records the line each row starts on while gocsv consumes it.
type lineReader struct {
	*csv.Reader
	starts []int
}

func (r *lineReader) Read() ([]string, error) {
	row, err := r.Reader.Read()
	if err == nil {
		line, _ := r.Reader.FieldPos(0)
		r.starts = append(r.starts, line)
	}
	return row, err
}

func (r *lineReader) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// line returns the starting line of the given row, the header being row 0.
func (r *lineReader) line(row int) int {
	if row < len(r.starts) {
		return r.starts[row]
	}
	return row + 1
}
