package billing

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one normalized usage line: a UTC day key, a breakdown label,
// and the numbers that feed aggregation. Included tracks the
// discounted/included quantity for diagnostic display only; it never
// contributes to used totals.
type Entry struct {
	Day      string
	Label    string
	Quantity float64
	Cost     float64
	Included float64
}

type rowKind int

const (
	kindUnknown rowKind = iota
	kindPremiumRequest
	kindFeatureBreakdown
)

// chatFeatureVocabulary marks feature names whose interaction counts are
// conversational. Counters outside this set (completions, suggestions)
// must not inflate usage.
var chatFeatureVocabulary = []string{"chat", "ask", "agent", "edit"}

const defaultModelLabel = "default"

// Normalize converts one report row into zero or one Entry. Rows that do
// not match a recognized accounting category are filtered, not
// zero-filled. fallback supplies the day key when the row carries no
// usable date of its own.
func Normalize(row ReportRow, fallback MonthlyWindow) (Entry, bool) {
	switch classify(row) {
	case kindPremiumRequest:
		return normalizePremium(row, fallback), true
	case kindFeatureBreakdown:
		return normalizeFeature(row, fallback), true
	default:
		return Entry{}, false
	}
}

func classify(row ReportRow) rowKind {
	if row.Product != "" || row.SKU != "" {
		if isPremiumProduct(row.Product) && isPremiumSKU(row.SKU) {
			return kindPremiumRequest
		}
		return kindUnknown
	}
	if row.Feature != "" || row.ChatCount != nil || row.InteractionCount != nil {
		return kindFeatureBreakdown
	}
	return kindUnknown
}

func isPremiumProduct(product string) bool {
	return strings.Contains(strings.ToLower(product), "copilot")
}

func isPremiumSKU(sku string) bool {
	return strings.Contains(strings.ToLower(sku), "premium request")
}

func normalizePremium(row ReportRow, fallback MonthlyWindow) Entry {
	e := Entry{
		Day:   resolveDay(row, fallback),
		Label: row.Model,
	}
	if e.Label == "" {
		e.Label = defaultModelLabel
	}

	// Quantity prefers gross over net; cost prefers net over gross. The
	// plain "quantity" field is the newest schema's only counter.
	switch {
	case row.GrossQuantity != nil:
		e.Quantity = *row.GrossQuantity
	case row.NetQuantity != nil:
		e.Quantity = *row.NetQuantity
	case row.Quantity != nil:
		e.Quantity = *row.Quantity
	}
	switch {
	case row.NetAmount != nil:
		e.Cost = *row.NetAmount
	case row.GrossAmount != nil:
		e.Cost = *row.GrossAmount
	}
	if row.DiscountQuantity != nil {
		e.Included = *row.DiscountQuantity
	}
	return e
}

func normalizeFeature(row ReportRow, fallback MonthlyWindow) Entry {
	e := Entry{Day: resolveDay(row, fallback)}

	model := row.Model
	if model == "" {
		model = defaultModelLabel
	}
	if row.IDE != "" {
		e.Label = row.IDE + "/" + model
	} else {
		e.Label = model
	}

	switch {
	case row.ChatCount != nil:
		e.Quantity = *row.ChatCount
	case row.InteractionCount != nil && isChatLike(row):
		e.Quantity = *row.InteractionCount
	}
	if row.NetAmount != nil {
		e.Cost = *row.NetAmount
	} else if row.GrossAmount != nil {
		e.Cost = *row.GrossAmount
	}
	return e
}

func isChatLike(row ReportRow) bool {
	feature := strings.ToLower(row.Feature)
	for _, word := range chatFeatureVocabulary {
		if strings.Contains(feature, word) {
			return true
		}
	}
	return row.HasFieldContaining("chat")
}

var dayLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// resolveDay picks the entry's day key: an explicit date-like field wins,
// then the nested year/month/day triple (day defaulting to the 1st), then
// the first day of the month being processed.
func resolveDay(row ReportRow, fallback MonthlyWindow) string {
	if row.Date != "" {
		for _, layout := range dayLayouts {
			if t, err := time.Parse(layout, row.Date); err == nil {
				return t.UTC().Format("2006-01-02")
			}
		}
	}
	if p := row.Period; p != nil && p.Year > 0 && p.Month >= 1 && p.Month <= 12 {
		day := p.Day
		if day < 1 || day > 31 {
			day = 1
		}
		return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, day)
	}
	return fallback.FirstDay()
}
