package billing

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope keys under which some endpoint revisions wrap their rows.
var envelopeKeys = []string{"usageItems", "data", "records", "items"}

// DecodeReport decodes a usage-report body into rows. The endpoints have
// returned a single JSON object, a top-level array, a wrapped
// {usageItems|data|records:[...]} envelope, and newline-delimited JSON
// records at various points; all are accepted. An object that matches no
// envelope is treated as a single record.
func DecodeReport(body []byte) ([]ReportRow, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var rows []ReportRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decoding report array: %w", err)
		}
		return rows, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		for _, key := range envelopeKeys {
			raw, ok := envelope[key]
			if !ok || len(bytes.TrimSpace(raw)) == 0 || bytes.TrimSpace(raw)[0] != '[' {
				continue
			}
			var rows []ReportRow
			if err := json.Unmarshal(raw, &rows); err != nil {
				return nil, fmt.Errorf("decoding %q envelope: %w", key, err)
			}
			return rows, nil
		}

		var row ReportRow
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, fmt.Errorf("decoding report record: %w", err)
		}
		return []ReportRow{row}, nil
	}

	return decodeLines(trimmed)
}

func decodeLines(body []byte) ([]ReportRow, error) {
	var rows []ReportRow
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var row ReportRow
		if err := json.Unmarshal(text, &row); err != nil {
			return nil, fmt.Errorf("decoding report line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning report body: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("unrecognized report shape")
	}
	return rows, nil
}
