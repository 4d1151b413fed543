package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement is the result of parsing a pasted bank movement listing.
type Statement struct {
	Fecha       time.Time
	Movimientos []Movimiento
	Warnings    []string // Lines that failed to parse
}

// Movimiento is a single transfer line parsed from the listing.
type Movimiento struct {
	RawText    string
	Referencia string
	Monto      decimal.Decimal
}

var spanishMonths = map[string]time.Month{
	"ene": time.January, "enero": time.January,
	"feb": time.February, "febrero": time.February,
	"mar": time.March, "marzo": time.March,
	"abr": time.April, "abril": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "junio": time.June,
	"jul": time.July, "julio": time.July,
	"ago": time.August, "agosto": time.August,
	"sep": time.September, "septiembre": time.September,
	"oct": time.October, "octubre": time.October,
	"nov": time.November, "noviembre": time.November,
	"dic": time.December, "diciembre": time.December,
}

// ParseStatement parses the text a cashier pastes from the bank app's
// daily movement list. The first non-empty line must be a date ("31 ago"
// or "31/08"); each following line is a movement whose last money-like
// token is the amount and whose remaining tokens are the reference.
func ParseStatement(text string) (*Statement, error) {
	lines := strings.Split(text, "\n")

	var fecha time.Time
	var dateFound bool
	var movimientos []Movimiento
	var warnings []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !dateFound {
			date, ok := parseFechaLine(line)
			if ok {
				fecha = date
				dateFound = true
				continue
			}
			return nil, fmt.Errorf("first line must be a date, got: %q", line)
		}

		mov, err := parseMovimientoLine(line)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped: %s", line))
			continue
		}
		movimientos = append(movimientos, *mov)
	}

	if !dateFound {
		return nil, fmt.Errorf("no date found in statement")
	}
	if len(movimientos) == 0 {
		return nil, fmt.Errorf("no movements found in statement")
	}

	return &Statement{
		Fecha:       fecha,
		Movimientos: movimientos,
		Warnings:    warnings,
	}, nil
}

// parseFechaLine tries to parse a line as a Spanish date ("31 ago") or a
// numeric one ("31/08", "31/08/2026").
func parseFechaLine(line string) (time.Time, bool) {
	line = strings.TrimSpace(strings.ToLower(line))

	if strings.Contains(line, "/") {
		return parseFechaNumerica(line)
	}

	parts := strings.Fields(line)
	if len(parts) != 2 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := spanishMonths[parts[1]]
	if !ok {
		return time.Time{}, false
	}

	return resolveYear(day, month), true
}

func parseFechaNumerica(line string) (time.Time, bool) {
	parts := strings.Split(line, "/")
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	monthNum, err := strconv.Atoi(parts[1])
	if err != nil || monthNum < 1 || monthNum > 12 {
		return time.Time{}, false
	}
	month := time.Month(monthNum)

	if len(parts) == 3 {
		year, err := strconv.Atoi(parts[2])
		if err != nil || year < 2000 {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
	}

	return resolveYear(day, month), true
}

// resolveYear assumes the current year, rolling back one year when the
// date lands more than 30 days in the future (December listings pasted
// in January).
func resolveYear(day int, month time.Month) time.Time {
	now := time.Now()
	parsed := time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if parsed.After(now.AddDate(0, 0, 30)) {
		parsed = time.Date(now.Year()-1, month, day, 0, 0, 0, 0, time.UTC)
	}
	return parsed
}

// parseMovimientoLine parses a movement line ("nequi juan perez 11.500").
// The last token that reads as money is the amount; everything else is
// the reference.
func parseMovimientoLine(line string) (*Movimiento, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty line")
	}

	tokens := strings.Fields(strings.ToLower(line))

	montoIdx := -1
	var monto decimal.Decimal
	for i := len(tokens) - 1; i >= 0; i-- {
		if m, ok := parseMonto(tokens[i]); ok {
			monto = m
			montoIdx = i
			break
		}
	}
	if montoIdx < 0 {
		return nil, fmt.Errorf("no amount found in line: %q", line)
	}

	refTokens := make([]string, 0, len(tokens)-1)
	refTokens = append(refTokens, tokens[:montoIdx]...)
	refTokens = append(refTokens, tokens[montoIdx+1:]...)

	return &Movimiento{
		RawText:    line,
		Referencia: strings.Join(refTokens, " "),
		Monto:      monto,
	}, nil
}

// parseMonto parses amount shortcuts and bank formats: "11.5k" → 11500,
// "25mil" → 25000, "11.500" → 11500, "11.500,50" → 11500.50.
func parseMonto(tok string) (decimal.Decimal, bool) {
	tok = strings.TrimPrefix(strings.ToLower(tok), "$")
	if tok == "" {
		return decimal.Zero, false
	}

	type suffix struct {
		s string
		m int64
	}
	suffixes := []suffix{
		{"mil", 1000},
		{"k", 1000},
	}

	for _, sf := range suffixes {
		if strings.HasSuffix(tok, sf.s) {
			numStr := strings.TrimSuffix(tok, sf.s)
			if numStr == "" {
				continue
			}
			d, err := decimal.NewFromString(numStr)
			if err != nil {
				continue
			}
			return d.Mul(decimal.NewFromInt(sf.m)), true
		}
	}

	// Bank exports write 11.500,00: dots group thousands, the comma is
	// the decimal mark.
	if strings.Contains(tok, ",") {
		tok = strings.ReplaceAll(tok, ".", "")
		tok = strings.Replace(tok, ",", ".", 1)
	} else if thousandsGrouped(tok) {
		tok = strings.ReplaceAll(tok, ".", "")
	}

	d, err := decimal.NewFromString(tok)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// thousandsGrouped reports whether tok looks like "11.500" or
// "1.234.567": digit groups of three separated by dots.
func thousandsGrouped(tok string) bool {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	for _, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
