package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// dateLayouts are tried in order; the first that parses wins
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Mon, Jan 2, 2006",
}

var (
	placeholders = map[string]bool{
		"":                 true,
		"unknown":          true,
		"unknown merchant": true,
		"n/a":              true,
		"na":               true,
		"none":             true,
		"null":             true,
		"-":                true,
	}
	currencyNoise = regexp.MustCompile(`(?i)[$€£¥,\s]|usd|eur|gbp`)
)

// normalize maps raw OCR fields onto the record. Fields that fail coercion stay nil.
func normalize(record *entity.ExpenseRecord, raw *port.RawFields) {
	if id := coerceString(raw.ExpenseID); id != nil {
		record.ExpenseID = *id
	}
	record.Vendor = coerceString(raw.Vendor)
	record.Date = coerceDate(raw.Date)
	record.Amount = coerceAmount(raw.Amount)
	record.Category = coerceString(raw.Category)
	record.Items = coerceItems(raw.Items)

	record.MerchantAddress = coerceString(raw.MerchantAddress)
	record.MerchantPhone = coerceString(raw.MerchantPhone)
	record.Subtotal = coerceNonNegative(raw.Subtotal)
	record.Taxes = coerceNonNegative(raw.Taxes)
	record.Tips = coerceNonNegative(raw.Tips)
	record.SubmittedBy = coerceString(raw.SubmittedBy)
}

func coerceString(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil
	}
	s = strings.Join(strings.Fields(s), " ")
	if placeholders[strings.ToLower(s)] {
		return nil
	}
	return &s
}

func parseNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := currencyNoise.ReplaceAllString(t, "")
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Round(f*100) / 100, true
}

// coerceAmount rejects zero and negative totals; a receipt total of zero means OCR missed it
func coerceAmount(v any) *float64 {
	f, ok := parseNumber(v)
	if !ok || f <= 0 {
		return nil
	}
	return &f
}

func coerceNonNegative(v any) *float64 {
	f, ok := parseNumber(v)
	if !ok || f < 0 {
		return nil
	}
	return &f
}

func coerceDate(v any) *string {
	s := coerceString(v)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	return nil
}

func coerceItems(v any) []string {
	var list []any
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		list = t
	case []string:
		for _, s := range t {
			list = append(list, s)
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			list = append(list, part)
		}
	default:
		return nil
	}

	var items []string
	for _, entry := range list {
		var name *string
		switch e := entry.(type) {
		case map[string]any:
			for _, key := range []string{"name", "description", "item"} {
				if name = coerceString(e[key]); name != nil {
					break
				}
			}
		default:
			name = coerceString(e)
		}
		if name != nil {
			items = append(items, *name)
		}
	}
	return items
}

// defaultExpenseID numbers receipts from one
func defaultExpenseID(index int) string {
	return fmt.Sprintf("RCP%03d", index+1)
}
