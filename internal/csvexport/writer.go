// Package csvexport renders the monthly KPI recap as a spreadsheet-friendly
// CSV: semicolon separated, decimal commas, UTF-8 with BOM.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"restau/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the recap header row, shared with the XLSX export.
var Columns = []string{
	"Date",
	"Restaurant",
	"CA Net",
	"CA TTC",
	"TAC",
	"CA Reel",
	"N-1 HT",
	"Var N-1 %",
	"Prev HT",
	"Clients",
	"Clients N-1",
	"CA Livraison",
	"CA Livraison N-1",
	"Clients Livraison",
	"Clients Livraison N-1",
	"CA Click & Collect",
	"CA Click & Collect N-1",
	"Clients Click & Collect",
	"Clients Click & Collect N-1",
	"Ecart Caisse",
}

// Cell is one recap value. Exactly one of Text, Number or Int is meaningful;
// Null marks an absent value.
type Cell struct {
	Text   string
	Number decimal.Decimal
	Int    int
	Kind   CellKind
}

// CellKind tells which field of a Cell carries the value.
type CellKind int

const (
	CellNull CellKind = iota
	CellText
	CellNumber
	CellInt
)

// Cells converts one item into typed values in Columns order.
func Cells(item *domain.MonthlyItem) []Cell {
	k := item.Kpi
	if k == nil {
		k = &domain.KpiSummary{}
	}
	return []Cell{
		{Kind: CellText, Text: item.ReportDate.String()},
		{Kind: CellText, Text: item.RestaurantCode},
		{Kind: CellNumber, Number: item.CANetTotal},
		{Kind: CellNumber, Number: item.CATTCTotal},
		{Kind: CellInt, Int: item.TACTotal},
		decCell(k.CAReal),
		decCell(k.N1HT),
		decCell(k.VarN1),
		decCell(k.PrevHT),
		intCell(k.Clients),
		intCell(k.ClientsN1),
		decCell(k.CADelivery),
		decCell(k.CADeliveryN1),
		intCell(k.ClientDelivery),
		intCell(k.ClientDeliveryN1),
		decCell(k.CAClickCollect),
		decCell(k.CncN1),
		intCell(k.ClientClickCollect),
		intCell(k.ClientN1),
		decCell(k.CashDiff),
	}
}

func decCell(v decimal.NullDecimal) Cell {
	if !v.Valid {
		return Cell{}
	}
	return Cell{Kind: CellNumber, Number: v.Decimal}
}

func intCell(v *int) Cell {
	if v == nil {
		return Cell{}
	}
	return Cell{Kind: CellInt, Int: *v}
}

// Writer wraps csv.Writer for exporting the monthly recap.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes semicolon separated CSV to w.
func NewWriter(w io.Writer) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return &Writer{csv: cw}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteItems writes one row per monthly item.
func (w *Writer) WriteItems(items []domain.MonthlyItem) error {
	for i := range items {
		if err := w.csv.Write(itemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Write emits the BOM, header and items, then flushes.
func Write(out io.Writer, items []domain.MonthlyItem) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteItems(items); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func itemToRow(item *domain.MonthlyItem) []string {
	cells := Cells(item)
	row := make([]string, len(cells))
	for i, c := range cells {
		switch c.Kind {
		case CellText:
			row[i] = c.Text
		case CellNumber:
			row[i] = FormatDecimal(c.Number)
		case CellInt:
			row[i] = strconv.Itoa(c.Int)
		}
	}
	return row
}

// FormatDecimal renders d with two places and a decimal comma.
func FormatDecimal(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// BuildFilename returns the Content-Disposition filename of a monthly recap,
// e.g. recap_AB12_2026-02.csv or recap_all_2026-02.xlsx.
func BuildFilename(restaurantCode string, year, month int, ext string) string {
	scope := strings.Trim(nonAlphanumeric.ReplaceAllString(restaurantCode, "_"), "_")
	if scope == "" {
		scope = "all"
	}
	return fmt.Sprintf("recap_%s_%04d-%02d.%s", scope, year, month, ext)
}
