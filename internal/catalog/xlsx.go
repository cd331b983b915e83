package catalog

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

func readWorkbook(path, sheet string) (rows [][]string, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest workbook: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Debug("close manifest workbook", "path", path, "error", closeErr)
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("manifest workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err = f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q from %s: %w", sheet, path, err)
	}
	return rows, nil
}
