package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/odincare/dicomancer/dicomio"
	"github.com/odincare/dicomancer/dicomtag"
	"golang.org/x/text/encoding"
)

// InterpretValue converts the raw bytes of a non-sequence element into a
// typed Value. It never fails: content that does not match the VR yields a
// zero or empty placeholder and a non-empty warning.
func InterpretValue(tag dicomtag.Tag, vr string, raw []byte, bo binary.ByteOrder, cs dicomio.CodingSystem) (Value, string) {
	if len(raw) == 0 {
		return Value{Kind: KindEmpty}, ""
	}
	var w warnings
	var v Value
	switch kind := dicomtag.GetVRKind(tag, vr); kind {
	case dicomtag.VRStringList:
		v = Value{Kind: KindText, Strings: splitValues(decodeText(vr, raw, cs, &w))}
	case dicomtag.VRString:
		s := strings.TrimRight(decodeText(vr, raw, cs, &w), " \x00")
		v = Value{Kind: KindText, Strings: []string{s}}
	case dicomtag.VRIntegerString:
		v = interpretIS(splitValues(string(raw)), &w)
	case dicomtag.VRDecimalString:
		v = interpretDS(splitValues(string(raw)), &w)
	case dicomtag.VRDate:
		v = interpretDateTime(splitValues(string(raw)), dateLayouts, &w)
	case dicomtag.VRTime:
		v = interpretDateTime(splitValues(string(raw)), timeLayouts, &w)
	case dicomtag.VRDateTime:
		v = interpretDateTime(splitValues(string(raw)), dateTimeLayouts, &w)
	case dicomtag.VRUID:
		v = Value{Kind: KindUID, Strings: splitValues(string(raw))}
	case dicomtag.VRUInt16List:
		v = Value{Kind: KindInt}
		for _, b := range chunks(raw, 2, vr, &w) {
			v.Ints = append(v.Ints, int64(bo.Uint16(b)))
		}
	case dicomtag.VRInt16List:
		v = Value{Kind: KindInt}
		for _, b := range chunks(raw, 2, vr, &w) {
			v.Ints = append(v.Ints, int64(int16(bo.Uint16(b))))
		}
	case dicomtag.VRUInt32List:
		v = Value{Kind: KindInt}
		for _, b := range chunks(raw, 4, vr, &w) {
			v.Ints = append(v.Ints, int64(bo.Uint32(b)))
		}
	case dicomtag.VRInt32List:
		v = Value{Kind: KindInt}
		for _, b := range chunks(raw, 4, vr, &w) {
			v.Ints = append(v.Ints, int64(int32(bo.Uint32(b))))
		}
	case dicomtag.VRUInt64List:
		v = Value{Kind: KindUint}
		for _, b := range chunks(raw, 8, vr, &w) {
			v.Uints = append(v.Uints, bo.Uint64(b))
		}
	case dicomtag.VRInt64List:
		v = Value{Kind: KindInt}
		for _, b := range chunks(raw, 8, vr, &w) {
			v.Ints = append(v.Ints, int64(bo.Uint64(b)))
		}
	case dicomtag.VRFloat32List:
		v = Value{Kind: KindDecimal}
		for _, b := range chunks(raw, 4, vr, &w) {
			v.Floats = append(v.Floats, float64(math.Float32frombits(bo.Uint32(b))))
		}
	case dicomtag.VRFloat64List:
		v = Value{Kind: KindDecimal}
		for _, b := range chunks(raw, 8, vr, &w) {
			v.Floats = append(v.Floats, math.Float64frombits(bo.Uint64(b)))
		}
	case dicomtag.VRTagList:
		v = Value{Kind: KindTags}
		for _, b := range chunks(raw, 4, vr, &w) {
			v.Tags = append(v.Tags, dicomtag.Tag{Group: bo.Uint16(b), Element: bo.Uint16(b[2:])})
		}
	case dicomtag.VRBytes:
		v = Value{Kind: KindBytes, Bytes: raw}
	case dicomtag.VRSequence, dicomtag.VRItem, dicomtag.VRPixelData:
		// Structural VRs are decoded by the element reader; reaching here means
		// the payload could not be parsed as such.
		v = Value{Kind: KindBytes, Bytes: raw}
		w.addf("%s payload kept as raw bytes", kind)
	default:
		v = Value{Kind: KindBytes, Bytes: raw}
		w.addf("no interpretation for VR kind %v", kind)
	}
	if v.Len() == 0 {
		// Padding only.
		v = Value{Kind: KindEmpty}
	}
	return v, w.String()
}

type warnings []string

func (w *warnings) addf(format string, args ...interface{}) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func (w warnings) String() string {
	return strings.Join(w, "; ")
}

// chunks splits raw into n-byte pieces. A trailing partial piece is dropped
// with a warning.
func chunks(raw []byte, n int, vr string, w *warnings) [][]byte {
	if rem := len(raw) % n; rem != 0 {
		w.addf("%s length %d is not a multiple of %d", vr, len(raw), n)
		raw = raw[:len(raw)-rem]
	}
	out := make([][]byte, 0, len(raw)/n)
	for i := 0; i < len(raw); i += n {
		out = append(out, raw[i:i+n])
	}
	return out
}

// decodeText converts raw text bytes to UTF-8. PN component groups
// (alphabetic=ideographic=phonetic) each use their own decoder, P3.5 6.2.
func decodeText(vr string, raw []byte, cs dicomio.CodingSystem, w *warnings) string {
	if vr != "PN" {
		s, err := dicomio.DecodeString(cs.Ideographic, raw)
		if err != nil {
			w.addf("character set: %v", err)
		}
		return s
	}
	groups := bytes.SplitN(raw, []byte("="), 3)
	decoders := [...]*encoding.Decoder{cs.Alphabetic, cs.Ideographic, cs.Phonetic}
	parts := make([]string, len(groups))
	for i, g := range groups {
		s, err := dicomio.DecodeString(decoders[i], g)
		if err != nil {
			w.addf("character set: %v", err)
		}
		parts[i] = s
	}
	return strings.Join(parts, "=")
}

// splitValues right-trims padding and splits a multi-valued string on the
// backslash delimiter.
func splitValues(s string) []string {
	s = strings.TrimRight(s, " \x00")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\\")
	for i, p := range parts {
		parts[i] = strings.TrimRight(p, " \x00")
	}
	return parts
}

func interpretIS(parts []string, w *warnings) Value {
	v := Value{Kind: KindInt, Strings: parts, Ints: make([]int64, len(parts))}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			// Some writers emit "1.0" or "+1.".
			f, ferr := strconv.ParseFloat(p, 64)
			if ferr != nil {
				w.addf("IS value %q is not an integer", p)
				continue
			}
			n = int64(f)
			if float64(n) != f {
				w.addf("IS value %q is not an integer", p)
			}
		}
		v.Ints[i] = n
	}
	return v
}

func interpretDS(parts []string, w *warnings) Value {
	v := Value{Kind: KindDecimal, Strings: parts, Floats: make([]float64, len(parts))}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			w.addf("DS value %q is not a number", p)
			continue
		}
		v.Floats[i] = f
	}
	return v
}

var (
	dateLayouts = []string{"20060102", "2006.01.02"}
	// Fractional seconds are accepted after the seconds field without being
	// named in the layout.
	timeLayouts     = []string{"150405", "1504", "15", "15:04:05", "15:04"}
	dateTimeLayouts = []string{
		"20060102150405-0700", "20060102150405", "200601021504", "2006010215",
		"20060102", "200601", "2006",
	}
)

func interpretDateTime(parts []string, layouts []string, w *warnings) Value {
	v := Value{Kind: KindDateTime, Strings: parts, Times: make([]time.Time, len(parts))}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		t, ok := parseWithLayouts(p, layouts)
		if !ok {
			var err error
			if t, err = dateparse.ParseAny(p); err != nil {
				w.addf("cannot parse date/time %q", p)
				continue
			}
		}
		v.Times[i] = t
	}
	return v
}

func parseWithLayouts(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
