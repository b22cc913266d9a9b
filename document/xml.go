package document

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"

	"fontwrench/css"
	"fontwrench/fonts"
)

// Built-in fallbacks for spans that specify nothing and documents without a
// style block.
const (
	DefaultFamily = "Inter"
	DefaultStyle  = "Regular"
	DefaultSize   = 12.0
)

// Document XML format: a <page> root with <text> elements. Font attributes
// (font-family, font-style, font-size) may sit on <text> or on nested <span>
// elements, spans inheriting what they do not override. An optional <style>
// element holds CSS whose text rules give page-wide defaults.
//
//	<page>
//	  <style>text { font-family: Helvetica; font-size: 12 }</style>
//	  <text>
//	    <span font-style="Bold">Heading</span> and tail
//	  </text>
//	</page>

// ReadXML parses a page document into a Memory host. Encoding is detected
// from the XML declaration, old tooling loves to emit non-UTF8 documents.
func ReadXML(r io.Reader) (*Memory, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}
	page := doc.SelectElement("page")
	if page == nil {
		return nil, fmt.Errorf("document has no <page> root element")
	}

	defaults := css.Defaults{}
	if style := page.SelectElement("style"); style != nil {
		defaults = css.NewParser(nil).Defaults([]byte(style.Text()))
	}
	if len(defaults.Family) == 0 {
		defaults.Family = DefaultFamily
	}
	if len(defaults.Style) == 0 {
		defaults.Style = DefaultStyle
	}
	if defaults.Size <= 0 {
		defaults.Size = DefaultSize
	}

	m := NewMemory()
	for _, el := range page.SelectElements("text") {
		text, runs, err := textRuns(el, defaults)
		if err != nil {
			return nil, err
		}
		if len(text) == 0 {
			continue
		}
		if _, err := m.AddNode(text, runs); err != nil {
			return nil, fmt.Errorf("bad <text> element: %w", err)
		}
	}
	return m, nil
}

func textRuns(el *etree.Element, defaults css.Defaults) (string, []Run, error) {
	base := spanAttrs(el, Run{
		Font: fonts.Name{Family: defaults.Family, Style: defaults.Style},
		Size: defaults.Size,
	})

	var (
		text string
		runs []Run
	)
	add := func(s string, proto Run) {
		if len(s) == 0 {
			return
		}
		proto.Start = len(text)
		text += s
		proto.End = len(text)
		runs = append(runs, proto)
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			add(t.Data, base)
		case *etree.Element:
			switch t.Tag {
			case "span":
				add(t.Text(), spanAttrs(t, base))
			default:
				return "", nil, fmt.Errorf("unexpected <%s> inside <text>", t.Tag)
			}
		}
	}
	return text, runs, nil
}

// spanAttrs applies an element's font attributes on top of inherited ones.
func spanAttrs(el *etree.Element, inherited Run) Run {
	out := inherited
	if v := el.SelectAttrValue("font-family", ""); len(v) > 0 {
		out.Font.Family = v
	}
	if v := el.SelectAttrValue("font-style", ""); len(v) > 0 {
		out.Font.Style = v
	}
	if v := el.SelectAttrValue("font-size", ""); len(v) > 0 {
		if size, err := strconv.ParseFloat(v, 64); err == nil && size > 0 {
			out.Size = size
		}
	}
	return out
}

// WriteXML renders the page back into document XML, one <span> per run.
func (m *Memory) WriteXML(w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	page := doc.CreateElement("page")

	for _, id := range m.order {
		n := m.nodes[id]
		el := page.CreateElement("text")
		for _, r := range n.runs {
			span := el.CreateElement("span")
			span.CreateAttr("font-family", r.Font.Family)
			span.CreateAttr("font-style", r.Font.Style)
			span.CreateAttr("font-size", strconv.FormatFloat(r.Size, 'f', -1, 64))
			span.SetText(n.text[r.Start:r.End])
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	return nil
}
