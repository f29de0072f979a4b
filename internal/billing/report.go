package billing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ReportRow is one decoded usage line item. The upstream endpoints have
// gone through several schema revisions that rename fields for the same
// concept, so UnmarshalJSON extracts every spelling we know about and
// keeps the raw top-level key set for classification rules that inspect
// field names directly.
type ReportRow struct {
	Product string
	SKU     string
	Model   string
	Feature string
	IDE     string

	Date   string
	Period *ReportPeriod

	GrossQuantity    *float64
	NetQuantity      *float64
	Quantity         *float64
	DiscountQuantity *float64
	NetAmount        *float64
	GrossAmount      *float64

	ChatCount        *float64
	InteractionCount *float64

	keys []string // lowercased top-level field names
}

// ReportPeriod is the nested year/month/day triple some schema variants
// use instead of a flat date field.
type ReportPeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (r *ReportRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := make(map[string]json.RawMessage, len(raw))
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		lk := strings.ToLower(k)
		fields[lk] = v
		keys = append(keys, lk)
	}

	*r = ReportRow{
		Product: stringField(fields, "product"),
		SKU:     stringField(fields, "sku"),
		Model:   stringField(fields, "model", "modelname"),
		Feature: stringField(fields, "feature", "featurename"),
		IDE:     stringField(fields, "ide", "editor", "editorname"),
		Date:    stringField(fields, "date", "timestamp", "usageat"),
		Period:  periodField(fields, "timeperiod", "period"),

		GrossQuantity:    numberField(fields, "grossquantity", "gross_quantity"),
		NetQuantity:      numberField(fields, "netquantity", "net_quantity"),
		Quantity:         numberField(fields, "quantity"),
		DiscountQuantity: numberField(fields, "discountquantity", "includedquantity", "discount_quantity"),
		NetAmount:        numberField(fields, "netamount", "net_amount"),
		GrossAmount:      numberField(fields, "grossamount", "gross_amount"),

		ChatCount:        numberField(fields, "chatcount", "totalchats", "chats", "chat_count"),
		InteractionCount: numberField(fields, "interactioncount", "interactions", "interaction_count"),

		keys: keys,
	}
	return nil
}

// HasFieldContaining reports whether any raw top-level field name
// contains the given lowercase substring.
func (r ReportRow) HasFieldContaining(substr string) bool {
	for _, k := range r.keys {
		if strings.Contains(k, substr) {
			return true
		}
	}
	return false
}

func stringField(fields map[string]json.RawMessage, names ...string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// numberField returns the first alias that holds a finite number.
// Numeric strings are accepted; malformed values are treated as absent
// rather than failing the row.
func numberField(fields map[string]json.RawMessage, names ...string) *float64 {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			return &f
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return &f
			}
		}
	}
	return nil
}

func periodField(fields map[string]json.RawMessage, names ...string) *ReportPeriod {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var p ReportPeriod
		if err := json.Unmarshal(raw, &p); err == nil && p.Year > 0 {
			return &p
		}
	}
	return nil
}
