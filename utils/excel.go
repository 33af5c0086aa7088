package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	ingestion_services "inventory-intake-backend/ingestion/services"

	"github.com/xuri/excelize/v2"
)

const reportDir = "./public/files"

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

// GenerateErrorReportExcel writes the row errors of an upload attempt to a
// workbook under public/files. It returns the public path of the saved file.
func GenerateErrorReportExcel(fileName string, rowErrors []ingestion_services.UploadRowError) (string, error) {
	if err := EnsureDirectoryExists(reportDir); err != nil {
		return "", fmt.Errorf("failed to ensure directory exists: %v", err)
	}

	f := excelize.NewFile()
	sheetName := "Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{"Row", "SKU", "Error"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	for i, rowErr := range rowErrors {
		values := []interface{}{rowErr.RowNumber, rowErr.SKU, rowErr.Message}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", fmt.Errorf("error setting value at %s: %v", cell, err)
			}
		}
	}

	f.SetActiveSheet(index)

	reportName := fmt.Sprintf("upload_errors_%s_%s.xlsx",
		sanitizeFileName(fileName), time.Now().Format("2006-01-02_15-04-05"))
	savePath := filepath.Join(reportDir, reportName)

	if err := f.SaveAs(savePath); err != nil {
		return "", err
	}

	return fmt.Sprintf("/public/files/%s", reportName), nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	base = base[:len(base)-len(ext)]

	out := make([]rune, 0, len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
