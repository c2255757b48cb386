package dicom

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/odincare/dicomancer/dicomtag"
)

// MaxValueLen is the number of runes a formatted value keeps before it is
// cut and suffixed with an ellipsis.
const MaxValueLen = 120

// MetadataRow is one line of the metadata table.
type MetadataRow struct {
	Tag     string // "(GGGG,EEEE)"
	Alias   string // dictionary keyword or "Unknown"
	VR      string
	Value   string
	Warning string
	// Depth is the sequence nesting level; top-level rows are 0.
	Depth int
}

// FormatTag renders a tag as "(GGGG,EEEE)" in upper-case hex.
func FormatTag(t dicomtag.Tag) string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// MetadataRows flattens the meta group and the body into table rows. Items of
// a sequence follow their sequence row one level deeper, each introduced by
// an Item row.
func MetadataRows(ds *DataSet) []MetadataRow {
	var rows []MetadataRow
	for _, elem := range ds.Meta {
		rows = appendRows(rows, ds, elem, 0)
	}
	for _, elem := range ds.Elements {
		rows = appendRows(rows, ds, elem, 0)
	}
	return rows
}

func appendRows(rows []MetadataRow, ds *DataSet, elem *Element, depth int) []MetadataRow {
	rows = append(rows, MetadataRow{
		Tag:     FormatTag(elem.Tag),
		Alias:   elem.Alias(),
		VR:      elem.VR,
		Value:   FormatValue(elem),
		Warning: elem.Warning,
		Depth:   depth,
	})
	for i, it := range ds.Items(elem) {
		rows = append(rows, MetadataRow{
			Tag:   FormatTag(dicomtag.Item),
			Alias: "Item",
			Value: fmt.Sprintf("Item %d (%s)", i+1, plural(len(it.Elements), "element")),
			Depth: depth + 1,
		})
		for _, sub := range it.Elements {
			rows = appendRows(rows, ds, sub, depth+2)
		}
	}
	return rows
}

// FormatValue renders an element value for display, cut at MaxValueLen runes.
func FormatValue(elem *Element) string {
	var s string
	switch elem.Value.Kind {
	case KindEmpty:
		s = "(empty)"
	case KindSequence:
		s = fmt.Sprintf("Sequence (%s)", plural(len(elem.Value.Items), "item"))
	case KindPixelData:
		s = formatPixelData(elem.Value.Pixel)
	case KindBytes:
		s = fmt.Sprintf("Binary data (%d bytes)", len(elem.Value.Bytes))
	default:
		s = formatScalars(elem)
	}
	return truncate(s, MaxValueLen)
}

func formatPixelData(info *PixelDataInfo) string {
	if info == nil {
		return "(empty)"
	}
	if !info.Encapsulated {
		return fmt.Sprintf("Binary data (%d bytes)", len(info.Native))
	}
	s := "Pixel data (" + plural(len(info.Fragments), "fragment")
	if n := len(info.Offsets); n > 0 {
		if n == 1 {
			s += ", offset table 1 entry"
		} else {
			s += fmt.Sprintf(", offset table %d entries", n)
		}
	}
	return s + ")"
}

// formatScalars joins the values of a textual or numeric element with the
// DICOM backslash delimiter.
func formatScalars(elem *Element) string {
	v := elem.Value
	var parts []string
	switch v.Kind {
	case KindText, KindUID, KindDateTime:
		parts = v.Strings
	case KindInt:
		if v.Strings != nil {
			parts = v.Strings
			break
		}
		for _, n := range v.Ints {
			parts = append(parts, strconv.FormatInt(n, 10))
		}
	case KindUint:
		for _, n := range v.Uints {
			parts = append(parts, strconv.FormatUint(n, 10))
		}
	case KindDecimal:
		if v.Strings != nil {
			parts = v.Strings
			break
		}
		bits := 64
		if elem.VR == "FL" || elem.VR == "OF" {
			bits = 32
		}
		for _, f := range v.Floats {
			parts = append(parts, strconv.FormatFloat(f, 'g', -1, bits))
		}
	case KindTags:
		for _, t := range v.Tags {
			parts = append(parts, FormatTag(t))
		}
	}
	return strings.Join(parts, "\\")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
