// Package receipt turns receipt images into draft activities for manual review.
//
// Scanner output is untrusted. Everything it returns goes through normalization before it reaches a
// caller, and a draft is never persisted without the caller re-submitting it through the regular
// activity validation.
package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billbuddy/internal/money"
)

// ErrScanFailed is wrapped by every scanner failure. Callers fall back to manual entry.
var ErrScanFailed = errors.New("scan failed")

// Scanner extracts a draft from a receipt image.
type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (*Draft, error)
}

// DraftItem is one recognized line item, in minor currency units.
type DraftItem struct {
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	TotalPrice int64  `json:"total_price"`
}

// Draft is a normalized scan result.
type Draft struct {
	Items         []DraftItem `json:"items"`
	Subtotal      int64       `json:"subtotal"`
	Tax           int64       `json:"tax"`
	ServiceCharge int64       `json:"service_charge"`
	Discount      int64       `json:"discount"`
	Total         int64       `json:"total"`
}

// rawItem and rawDraft mirror what a model returns. Every field is optional.
type rawItem struct {
	Name       string   `json:"name"`
	Quantity   *float64 `json:"quantity"`
	UnitPrice  *float64 `json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
}

type rawDraft struct {
	Items         []rawItem `json:"items"`
	Subtotal      *float64  `json:"subtotal"`
	Tax           *float64  `json:"tax"`
	ServiceCharge *float64  `json:"service_charge"`
	Discount      *float64  `json:"discount"`
	Total         *float64  `json:"total"`
}

// Parse decodes model output, tolerating markdown fences and surrounding prose, and normalizes it.
// Prices in the output are in the currency's printed unit and come back in stored units.
func Parse(text, currency string) (*Draft, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrScanFailed)
	}

	var raw rawDraft
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrScanFailed, err)
	}
	return normalize(raw, money.Fraction(currency)), nil
}

// normalize applies the defaults and bounds every draft obeys:
//   - prices are shifted by fraction decimals into stored units and rounded; quantities are counts
//   - items without a name or without any price are dropped
//   - a missing or non-positive quantity becomes 1
//   - a missing total is quantity x unit price; a missing unit price is total / quantity when exact
//   - an item whose total disagrees with quantity x unit price keeps the total and loses the unit price
//   - negative prices drop the item; negative tax or service charge become 0
//   - a negative discount is read as its magnitude, since receipts print discounts as negatives
//   - the subtotal is always recomputed from the items and the discount is capped so the total is
//     never negative
func normalize(raw rawDraft, fraction int32) *Draft {
	price := func(v float64) int64 {
		return decimal.NewFromFloat(v).Shift(fraction).Round(0).IntPart()
	}
	draft := &Draft{Items: []DraftItem{}}

	for _, ri := range raw.Items {
		name := strings.TrimSpace(ri.Name)
		if name == "" || (ri.UnitPrice == nil && ri.TotalPrice == nil) {
			continue
		}

		qty := int64(1)
		if ri.Quantity != nil && *ri.Quantity >= 1 {
			qty = decimal.NewFromFloat(*ri.Quantity).Round(0).IntPart()
		}

		var unit, total int64
		switch {
		case ri.TotalPrice != nil && ri.UnitPrice != nil:
			unit, total = price(*ri.UnitPrice), price(*ri.TotalPrice)
		case ri.TotalPrice != nil:
			total = price(*ri.TotalPrice)
		default:
			unit = price(*ri.UnitPrice)
			total = unit * qty
		}
		if unit < 0 || total < 0 {
			continue
		}
		if unit*qty != total {
			unit = 0
			if total%qty == 0 {
				unit = total / qty
			}
		}

		draft.Items = append(draft.Items, DraftItem{Name: name, Quantity: qty, UnitPrice: unit, TotalPrice: total})
		draft.Subtotal += total
	}

	draft.Tax = nonNegative(raw.Tax, price)
	draft.ServiceCharge = nonNegative(raw.ServiceCharge, price)
	if raw.Discount != nil {
		draft.Discount = price(*raw.Discount)
		if draft.Discount < 0 {
			draft.Discount = -draft.Discount
		}
	}
	if ceiling := draft.Subtotal + draft.Tax + draft.ServiceCharge; draft.Discount > ceiling {
		draft.Discount = ceiling
	}
	draft.Total = draft.Subtotal + draft.Tax + draft.ServiceCharge - draft.Discount
	return draft
}


func nonNegative(v *float64, price func(float64) int64) int64 {
	if v == nil {
		return 0
	}
	if u := price(*v); u > 0 {
		return u
	}
	return 0
}

func cleanJSON(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end >= start {
		return cleaned[start : end+1]
	}
	return cleaned
}
