// Package importer loads order lists, stock catalogs and machine specs.
// Orders can come from JSON, CSV or Excel; CSV delimiters and column
// headers are detected automatically. Catalogs and machine specs are
// JSON or YAML.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ReelCut/internal/model"
)

// ImportResult holds the results of an order import.
type ImportResult struct {
	Orders   []model.RawOrder
	Errors   []string
	Warnings []string
}

// Err folds the collected row errors into a single InvalidInputError, or
// returns nil when the import was clean.
func (r ImportResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return model.NewInvalidInput("orders", "%s", strings.Join(r.Errors, "; "))
}

// ColumnMapping maps column roles to their indices in the data.
type ColumnMapping struct {
	Width    int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"width":    {"width", "w", "size", "inch", "mm", "order width"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "reels"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive. When no known header is present the
// positional mapping (width, quantity) is returned with false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Width: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Width: 0, Quantity: 1}, false
	}
	return mapping, true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts an order line. It returns an error message instead of
// an order when the row is malformed.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.RawOrder, string) {
	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return model.RawOrder{}, fmt.Sprintf("%s: missing width", rowLabel)
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return model.RawOrder{}, fmt.Sprintf("%s: invalid width '%s'", rowLabel, widthStr)
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.RawOrder{}, fmt.Sprintf("%s: missing quantity", rowLabel)
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.RawOrder{}, fmt.Sprintf("%s: invalid quantity '%s'", rowLabel, qtyStr)
	}

	order := model.RawOrder{Width: width, Qty: qty}
	if msg := validateRecord(order); msg != "" {
		return model.RawOrder{}, fmt.Sprintf("%s: %s", rowLabel, msg)
	}
	return order, ""
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports orders from a CSV file, detecting the delimiter and
// mapping columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read CSV: %v", err))
		return result
	}
	return importFromRows(records, "line", result.Warnings)
}

// ImportCSVFromReader imports orders from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "line", nil)
}

// ImportExcel imports orders from the first sheet of an .xlsx workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read Excel data: %v", err))
		return result
	}
	return importFromRows(rows, "row", nil)
}

// ImportJSON imports an orders file of the form [{"width": 20.5, "qty": 3}].
func ImportJSON(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}

	var orders []model.RawOrder
	if err := json.Unmarshal(data, &orders); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot parse JSON: %v", err))
		return result
	}
	for i, o := range orders {
		if msg := validateRecord(o); msg != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d: %s", i+1, msg))
			continue
		}
		result.Orders = append(result.Orders, o)
	}
	if len(orders) == 0 {
		result.Warnings = append(result.Warnings, "no orders in file")
	}
	return result
}

// ImportOrders picks the loader from the file extension.
func ImportOrders(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ImportJSON(path)
	case ".csv", ".tsv", ".txt":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("unsupported orders file type %q", filepath.Ext(path))}}
	}
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "width")
		}
		if mapping.Quantity == -1 {
			missing = append(missing, "quantity")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if _, err := strconv.ParseFloat(getCell(rows[0], 0), 64); err != nil {
		// Unrecognized header; keep positional mapping.
		startRow = 1
		result.Warnings = append(result.Warnings, "unrecognized header row, using positional columns")
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		order, errMsg := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Orders = append(result.Orders, order)
	}

	return result
}
