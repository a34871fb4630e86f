package app

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

/********** alias registries (single source of truth) **********/

// Channel-manager feeds disagree on field names; each logical field keeps a
// list of accepted spellings, tried in order.
var periodAliases = map[string][]string{
	"id":         {"id", "period_id", "periodId", "code"},
	"name":       {"name", "period_name", "title", "label"},
	"start":      {"start_date", "startDate", "from", "valid_from", "begin"},
	"end":        {"end_date", "endDate", "to", "valid_to", "until"},
	"min_nights": {"minimum_nights", "min_nights", "minNights", "min_stay", "minStay"},
	"priority":   {"priority", "rank", "weight"},
	"special":    {"is_special", "special", "isSpecial"},
	"color":      {"color", "colour", "display_color"},
}

var ruleAliases = map[string][]string{
	"id":             {"id", "rule_id", "ruleId"},
	"period":         {"tariff_period_id", "period_id", "periodId", "period.id"},
	"category":       {"accommodation_category_id", "category_id", "categoryId", "room_type", "roomType"},
	"guests":         {"number_of_guests", "guests", "occupancy", "pax"},
	"price_cc":       {"price_credit_card", "priceCreditCard", "price_card", "card_price"},
	"price_pix":      {"price_pix", "pricePix", "pix_price"},
	"discount_type":  {"breakfast_discount_type", "discount_type", "discountType"},
	"discount_value": {"breakfast_discount_value", "discount_value", "discountValue"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func aliasStr(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if v := lookupAny(m, p); v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func aliasInt(m map[string]any, aliases map[string][]string, key string, def int) int {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return def
}

func aliasBool(m map[string]any, aliases map[string][]string, key string) bool {
	for _, p := range aliases[key] {
		if v, ok := lookupAny(m, p).(bool); ok {
			return v
		}
	}
	return false
}

// aliasDecimal accepts JSON numbers and numeric strings. Numbers pass
// through decimal.NewFromFloat, which keeps the shortest exact
// representation, so "200" never turns into 199.99999.
func aliasDecimal(m map[string]any, aliases map[string][]string, key string) decimal.Decimal {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return decimal.NewFromFloat(v)
		case string:
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return decimal.Zero
}

/********** payload -> input mappers **********/

// mapFeedPeriod returns the catalog input plus the feed's own id, which the
// importer needs to fetch that period's rules.
func mapFeedPeriod(p map[string]any) (PeriodInput, string) {
	var color *string
	if c := aliasStr(p, periodAliases, "color"); c != "" {
		color = &c
	}
	in := PeriodInput{
		Name:      aliasStr(p, periodAliases, "name"),
		StartDate: aliasStr(p, periodAliases, "start"),
		EndDate:   aliasStr(p, periodAliases, "end"),
		MinNights: aliasInt(p, periodAliases, "min_nights", 1),
		IsSpecial: aliasBool(p, periodAliases, "special"),
		Priority:  aliasInt(p, periodAliases, "priority", 0),
		Color:     color,
	}
	return in, aliasStr(p, periodAliases, "id")
}

func mapFeedRule(r map[string]any, periodID string) RuleInput {
	return RuleInput{
		TariffPeriodID:  periodID,
		CategoryID:      aliasStr(r, ruleAliases, "category"),
		Guests:          aliasInt(r, ruleAliases, "guests", 0),
		PriceCreditCard: aliasDecimal(r, ruleAliases, "price_cc"),
		PricePix:        aliasDecimal(r, ruleAliases, "price_pix"),
		DiscountType:    aliasStr(r, ruleAliases, "discount_type"),
		DiscountValue:   aliasDecimal(r, ruleAliases, "discount_value"),
	}
}
