package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/knieriem/odf/ods"
	"github.com/xuri/excelize/v2"
)

// MaxUploadBytes caps accepted files at 50 MB.
const MaxUploadBytes = 50 << 20

// DecodeError is fatal to the upload session: the file never produced rows,
// so there is no partial state to keep.
type DecodeError struct {
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// DecodeResult is the decoder output: ordered headers, raw rows and the
// initial alias-based column mapping.
type DecodeResult struct {
	Headers  []string        `json:"headers"`
	Rows     []RawRow        `json:"rows"`
	Mappings []ColumnMapping `json:"mappings"`
}

// DecodeFile turns file bytes plus their declared extension into headers and
// raw string rows. CSV and TSV stream row by row and report incremental
// progress; workbook formats are read whole, which is fine under the size cap.
// Only the first sheet of a workbook is read.
func DecodeFile(fileName string, data []byte, progress ProgressFunc) (*DecodeResult, error) {
	if len(data) > MaxUploadBytes {
		return nil, &DecodeError{Reason: fmt.Sprintf("file exceeds the %d MB limit", MaxUploadBytes>>20)}
	}

	ext := strings.ToLower(filepath.Ext(fileName))

	var cells [][]string
	var err error
	switch ext {
	case ".csv":
		cells, err = decodeSeparated(data, ',', progress)
	case ".tsv":
		cells, err = decodeSeparated(data, '\t', progress)
	case ".xlsx", ".xlsm", ".xltx":
		cells, err = decodeXLSX(data)
	case ".xls":
		cells, err = decodeXLS(data)
	case ".ods":
		cells, err = decodeODS(data)
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported file extension %q", ext)}
	}
	if err != nil {
		return nil, err
	}

	return assembleRows(cells, progress)
}

func decodeSeparated(data []byte, comma rune, progress ProgressFunc) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // ragged rows are padded later

	var cells [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Reason: "failed to read delimited file", Cause: err}
		}
		cells = append(cells, record)

		if progress != nil && len(data) > 0 {
			offset := reader.InputOffset()
			progress(int(offset * 100 / int64(len(data))))
		}
	}
	return cells, nil
}

func decodeXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "failed to open workbook", Cause: err}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &DecodeError{Reason: "failed to read rows from workbook sheet", Cause: err}
	}
	return rows, nil
}

func decodeXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &DecodeError{Reason: "failed to open legacy workbook", Cause: err}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &DecodeError{Reason: "legacy workbook has no sheets"}
	}

	var cells [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			cells = append(cells, nil)
			continue
		}
		var record []string
		for j := 0; j < row.LastCol(); j++ {
			record = append(record, row.Col(j))
		}
		cells = append(cells, record)
	}
	return cells, nil
}

func decodeODS(data []byte) ([][]string, error) {
	// The ods reader wants a file on disk, so spill the upload to a temp file.
	tmp, err := os.CreateTemp("", "upload-*.ods")
	if err != nil {
		return nil, &DecodeError{Reason: "failed to stage spreadsheet", Cause: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, &DecodeError{Reason: "failed to stage spreadsheet", Cause: err}
	}
	tmp.Close()

	f, err := ods.Open(tmp.Name())
	if err != nil {
		return nil, &DecodeError{Reason: "failed to open spreadsheet", Cause: err}
	}
	defer f.Close()

	var doc ods.Doc
	if err := f.ParseContent(&doc); err != nil {
		return nil, &DecodeError{Reason: "failed to parse spreadsheet content", Cause: err}
	}
	if len(doc.Table) == 0 {
		return nil, &DecodeError{Reason: "spreadsheet has no sheets"}
	}
	return doc.Table[0].Strings(), nil
}

// assembleRows trims every cell, drops rows that are entirely empty (they do
// not consume a row number) and runs the alias pass over the headers.
func assembleRows(cells [][]string, progress ProgressFunc) (*DecodeResult, error) {
	if len(cells) == 0 {
		return nil, &DecodeError{Reason: "file is empty"}
	}

	headers := make([]string, len(cells[0]))
	empty := true
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil, &DecodeError{Reason: "header row is empty"}
	}

	var rows []RawRow
	rowNumber := 0
	for _, record := range cells[1:] {
		data := make(map[string]string, len(headers))
		blank := true
		for i, header := range headers {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			data[header] = value
			if value != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rowNumber++
		rows = append(rows, RawRow{RowNumber: rowNumber, Data: data})
	}

	mappings := aliasPass(headers)

	if progress != nil {
		progress(100)
	}
	return &DecodeResult{Headers: headers, Rows: rows, Mappings: mappings}, nil
}

// aliasPass builds the initial mapping from the alias table. The first column
// to claim a field keeps it.
func aliasPass(headers []string) []ColumnMapping {
	used := make(map[CanonicalField]bool)
	mappings := make([]ColumnMapping, 0, len(headers))
	for _, header := range headers {
		mapping := ColumnMapping{FileHeader: header}
		if field, ok := LookupAlias(header); ok && !used[field] {
			used[field] = true
			mapping.TargetField = &field
			mapping.AutoDetected = true
		}
		mappings = append(mappings, mapping)
	}
	return mappings
}
