// Package css extracts font-related declarations from document stylesheets.
// Design documents may carry a style block giving page-wide defaults - only
// font-family, font-size, font-weight and font-style are of interest here,
// everything else is skipped.
package css

import (
	"bytes"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Defaults are page-wide font defaults. Zero values mean "not declared".
type Defaults struct {
	Family string
	Style  string
	Size   float64
}

// Parser parses stylesheet text into font Defaults.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Defaults scans CSS data for rules addressing text nodes ("text", "tspan" or
// the universal selector) and folds their font declarations into page
// defaults. Later rules win, matching cascade order.
func (p *Parser) Defaults(data []byte) Defaults {
	var (
		d          Defaults
		selectors  []string
		bold       bool
		italic     bool
		haveWeight bool
	)

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	applies := func() bool {
		for _, sel := range selectors {
			switch strings.ToLower(sel) {
			case "text", "tspan", "*":
				return true
			}
		}
		return false
	}

	for {
		gt, _, tok := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			if haveWeight {
				d.Style = styleFromFlags(bold, italic)
			}
			return d

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			selectors = selectorNames(tok, parser.Values())

		case css.DeclarationGrammar:
			if !applies() {
				continue
			}
			prop := strings.ToLower(string(tok))
			val := declarationValue(parser.Values())
			switch prop {
			case "font-family":
				if fam := firstFamily(val); len(fam) > 0 {
					d.Family = fam
				}
			case "font-size":
				if size, ok := parseSize(val); ok {
					d.Size = size
				}
			case "font-weight":
				bold = isBoldWeight(val)
				haveWeight = true
			case "font-style":
				italic = strings.EqualFold(val, "italic") || strings.EqualFold(val, "oblique")
				haveWeight = true
			}

		case css.EndRulesetGrammar:
			selectors = nil
		}
	}
}

func styleFromFlags(bold, italic bool) string {
	switch {
	case bold && italic:
		return "Bold Italic"
	case bold:
		return "Bold"
	case italic:
		return "Italic"
	default:
		return "Regular"
	}
}

// selectorNames splits raw selector tokens on commas into trimmed selector
// strings.
func selectorNames(data []byte, tokens []css.Token) []string {
	var buf strings.Builder
	buf.Write(data)
	for _, t := range tokens {
		buf.Write(t.Data)
	}
	parts := strings.Split(buf.String(), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func declarationValue(tokens []css.Token) string {
	var buf strings.Builder
	for _, t := range tokens {
		buf.Write(t.Data)
	}
	return strings.TrimSpace(buf.String())
}

// firstFamily takes the first comma-separated item of a font-family value and
// strips quotes.
func firstFamily(val string) string {
	first, _, _ := strings.Cut(val, ",")
	first = strings.TrimSpace(first)
	first = strings.Trim(first, `"'`)
	return strings.TrimSpace(first)
}

// parseSize understands bare numbers plus px and pt units (1px treated as
// 1pt, document units are abstract).
func parseSize(val string) (float64, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	val = strings.TrimSuffix(val, "px")
	val = strings.TrimSuffix(val, "pt")
	size, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || size <= 0 {
		return 0, false
	}
	return size, true
}

func isBoldWeight(val string) bool {
	if strings.EqualFold(val, "bold") || strings.EqualFold(val, "bolder") {
		return true
	}
	if w, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
		return w >= 600
	}
	return false
}
