// Package scan builds a font usage inventory of the active page: which
// families, styles and sizes are in use, run by run, and which families are
// missing from the local font catalog.
package scan

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"fontwrench/document"
	"fontwrench/fonts"
)

// FontCount is the per-run occurrence count of a family. Mixed nodes
// contribute one count per run, uniform nodes exactly one.
type FontCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

type StyleCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

type SizeCount struct {
	Value float64 `json:"value" yaml:"value"`
	Count int     `json:"count" yaml:"count"`
}

// FamilyDetail is the per-family usage breakdown, styles sorted
// lexicographically and sizes numerically.
type FamilyDetail struct {
	Styles []StyleCount `json:"styles" yaml:"styles"`
	Sizes  []SizeCount  `json:"sizes" yaml:"sizes"`
}

// Result is one scan snapshot. It carries both document usage and, for
// replacement target pickers, the full catalog regardless of usage. It is
// serialized outward and discarded, nothing caches it.
type Result struct {
	Fonts        []string                `json:"fonts" yaml:"fonts"`
	FontCounts   []FontCount             `json:"fontCounts" yaml:"font_counts"`
	MissingFonts []string                `json:"missingFonts" yaml:"missing_fonts"`
	SystemFonts  []string                `json:"systemFonts" yaml:"system_fonts"`
	FontDetails  map[string]FamilyDetail `json:"fontDetails" yaml:"font_details"`
	FamilyStyles map[string][]string     `json:"familyStyles" yaml:"family_styles"`
}

type Scanner struct {
	host document.Host
	log  *zap.Logger
}

func New(host document.Host, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{host: host, log: log.Named("scanner")}
}

type familyUsage struct {
	display string
	count   int
	styles  map[string]*StyleCount // folded style
	sizes   map[float64]int
}

// Scan walks every text node on the active page and aggregates font usage.
// Nodes the host refuses to read are skipped, a scan never aborts because of
// one bad node.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	available, err := s.host.AvailableFonts(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to query font catalog: %w", err)
	}
	catalog := fonts.NewCatalog()
	for _, n := range available {
		catalog.Add(n)
	}

	ids, err := s.host.TextNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to enumerate text nodes: %w", err)
	}

	usage := make(map[string]*familyUsage) // folded family
	for _, id := range ids {
		seg, err := s.host.Segments(id)
		if err != nil {
			s.log.Debug("Skipping unreadable node", zap.String("node", string(id)), zap.Error(err))
			continue
		}
		for _, r := range seg.Runs {
			key := fonts.Fold(r.Font.Family)
			fam, ok := usage[key]
			if !ok {
				fam = &familyUsage{
					display: r.Font.Family,
					styles:  make(map[string]*StyleCount),
					sizes:   make(map[float64]int),
				}
				usage[key] = fam
			}
			fam.count++
			styleKey := fonts.Fold(r.Font.Style)
			if sc, ok := fam.styles[styleKey]; ok {
				sc.Count++
			} else {
				fam.styles[styleKey] = &StyleCount{Value: r.Font.Style, Count: 1}
			}
			fam.sizes[r.Size]++
		}
	}

	res := &Result{
		Fonts:        make([]string, 0, len(usage)),
		FontCounts:   make([]FontCount, 0, len(usage)),
		MissingFonts: make([]string, 0),
		SystemFonts:  catalog.Families(),
		FontDetails:  make(map[string]FamilyDetail, len(usage)),
		FamilyStyles: catalog.StyleNames(),
	}

	for _, fam := range usage {
		res.Fonts = append(res.Fonts, fam.display)
	}
	sort.Strings(res.Fonts)

	for _, display := range res.Fonts {
		fam := usage[fonts.Fold(display)]
		res.FontCounts = append(res.FontCounts, FontCount{Name: display, Count: fam.count})
		if !catalog.HasFamily(display) {
			res.MissingFonts = append(res.MissingFonts, display)
		}

		detail := FamilyDetail{
			Styles: make([]StyleCount, 0, len(fam.styles)),
			Sizes:  make([]SizeCount, 0, len(fam.sizes)),
		}
		for _, sc := range fam.styles {
			detail.Styles = append(detail.Styles, *sc)
		}
		sort.Slice(detail.Styles, func(i, j int) bool { return detail.Styles[i].Value < detail.Styles[j].Value })
		for size, count := range fam.sizes {
			detail.Sizes = append(detail.Sizes, SizeCount{Value: size, Count: count})
		}
		sort.Slice(detail.Sizes, func(i, j int) bool { return detail.Sizes[i].Value < detail.Sizes[j].Value })
		res.FontDetails[display] = detail
	}

	s.log.Debug("Scan complete",
		zap.Int("nodes", len(ids)),
		zap.Int("families", len(res.Fonts)),
		zap.Int("missing", len(res.MissingFonts)))
	return res, nil
}
