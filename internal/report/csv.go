package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV streams rows as CSV, header first.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, 0, len(Headers))
		for _, value := range row.values() {
			switch v := value.(type) {
			case string:
				record = append(record, v)
			case int64:
				record = append(record, strconv.FormatInt(v, 10))
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
