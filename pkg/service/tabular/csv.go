// Package tabular loads bulk message input. Each row pairs an external
// message identifier with raw message content.
package tabular

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrInvalidFormat marks bulk input that does not carry the required columns
var ErrInvalidFormat = errors.New("invalid bulk input format")

// RequiredColumns are the column headers bulk input must contain
var RequiredColumns = []string{"messageId", "message"}

// Row is one bulk input row
type Row struct {
	WireID  string
	Content string
}

// LoadCSV reads bulk rows from CSV input. The header row must contain the
// required columns; extra columns are ignored. Rows with too few fields are
// skipped rather than failing the whole file.
func LoadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidFormat, "failed to read CSV header",
			goerr.V("required_columns", RequiredColumns))
	}

	idIdx, contentIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "messageId":
			idIdx = i
		case "message":
			contentIdx = i
		}
	}
	if idIdx < 0 || contentIdx < 0 {
		return nil, goerr.Wrap(ErrInvalidFormat, "the file must contain the required columns",
			goerr.V("required_columns", RequiredColumns),
			goerr.V("header", header))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidFormat, "failed to read CSV row",
				goerr.V("row", len(rows)+1))
		}
		if idIdx >= len(record) || contentIdx >= len(record) {
			continue
		}
		rows = append(rows, Row{
			WireID:  strings.TrimSpace(record[idIdx]),
			Content: record[contentIdx],
		})
	}

	return rows, nil
}
