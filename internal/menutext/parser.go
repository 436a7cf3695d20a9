// Package menutext turns a pasted menu (one item per line) into menu rows.
package menutext

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrNoItems is returned when no line of the text carries a price.
var ErrNoItems = errors.New("no items found in menu text")

// ParsedMenu is the result of parsing pasted menu text.
type ParsedMenu struct {
	Items    []ParsedItem
	Warnings []string // Lines that failed to parse
}

// ParsedItem is a single menu line, e.g. "招牌排骨飯 80".
type ParsedItem struct {
	RawText string
	Name    string
	Price   decimal.Decimal
}

// Currency markers stripped from price tokens.
var pricePrefixes = []string{"nt$", "$", "＄"}
var priceSuffixes = []string{"元", "塊"}

// Parse reads one item per line. The last price-like token of a line is the
// price; everything before it is the item name. Blank lines and lines
// starting with "#" are ignored.
func Parse(text string) (*ParsedMenu, error) {
	var items []ParsedItem
	var warnings []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		item, err := parseItemLine(line)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped: %s", line))
			continue
		}
		items = append(items, *item)
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}

	return &ParsedMenu{Items: items, Warnings: warnings}, nil
}

// parseItemLine parses "name price", tolerating tabs, commas and a
// currency marker on the price ("燒肉飯\tNT$95", "懷舊排骨飯,90元").
func parseItemLine(line string) (*ParsedItem, error) {
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '，'
	})
	if len(tokens) < 2 {
		return nil, fmt.Errorf("expected name and price: %q", line)
	}

	last := tokens[len(tokens)-1]
	price, ok := parsePrice(last)
	if !ok {
		return nil, fmt.Errorf("no price found in line: %q", line)
	}

	return &ParsedItem{
		RawText: line,
		Name:    strings.Join(tokens[:len(tokens)-1], " "),
		Price:   price,
	}, nil
}

// parsePrice parses "80", "$80", "NT$80" or "80元".
func parsePrice(tok string) (decimal.Decimal, bool) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	for _, p := range pricePrefixes {
		tok = strings.TrimPrefix(tok, p)
	}
	for _, s := range priceSuffixes {
		tok = strings.TrimSuffix(tok, s)
	}
	if tok == "" {
		return decimal.Decimal{}, false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Decimal{}, false
		}
	}

	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
