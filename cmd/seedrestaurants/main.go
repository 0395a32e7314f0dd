// Command seedrestaurants converts the restaurant directory workbook into a
// SQL seed file. The first sheet holds one restaurant per row: code in
// column A, name in column B, after a header row.
// Usage: go run ./cmd/seedrestaurants [workbook.xlsx] [output.sql]
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"restau/internal/ingest"
)

const batchSize = 200

type restaurantEntry struct {
	code string
	name string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	xlsxPath := "restaurants.xlsx"
	outPath := "db/seeds/restaurants.sql"
	if len(args) > 0 {
		xlsxPath = args[0]
	}
	if len(args) > 1 {
		outPath = args[1]
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseSheet(f)
	if err != nil {
		return fmt.Errorf("parse restaurant sheet: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, entries); err != nil {
		return err
	}

	log.Printf("Generated %d restaurants (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseSheet reads the first sheet. Rows without a code or name are skipped,
// and a code seen twice keeps its first name.
func parseSheet(f *excelize.File) ([]restaurantEntry, error) {
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []restaurantEntry
	for i := 1; i < len(rows); i++ {
		code := ingest.NormalizeRestaurantCode(cellVal(rows[i], 0))
		name := strings.TrimSpace(cellVal(rows[i], 1))
		if code == "" || name == "" || seen[code] {
			continue
		}
		seen[code] = true
		entries = append(entries, restaurantEntry{code: code, name: name})
	}
	return entries, nil
}

func writeSeed(out io.Writer, entries []restaurantEntry) error {
	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Restaurant seed data generated from Excel.",
		fmt.Sprintf("-- %d restaurants in batches of %d.", len(entries), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := min(i+batchSize, len(entries))
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}
	return nil
}

func writeBatch(out io.Writer, batch []restaurantEntry) error {
	if _, err := fmt.Fprintln(out, "INSERT INTO restaurants (code, name) VALUES"); err != nil {
		return err
	}
	for i, e := range batch {
		sep := ","
		if i == len(batch)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(out, "  (%s, %s)%s\n", quote(e.code), quote(e.name), sep); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out, "ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name;")
	return err
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
