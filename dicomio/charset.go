package dicomio

import (
	"strings"

	"github.com/odincare/dicomancer/dicomlog"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// CodingSystem 定义了 []byte 如何被翻译成 utf8 string
type CodingSystem struct {
	// VR="PN" 是唯一可能用到三个decoder的地方, 其他VR只用 Ideographic.
	// See P3.5, 6.2.
	Alphabetic  *encoding.Decoder
	Ideographic *encoding.Decoder
	Phonetic    *encoding.Decoder
}

// CodingSystemType selects one of the three decoders of a CodingSystem.
type CodingSystemType int

const (
	// See CodingSystem for explanations of these coding-system types.
	AlphabeticCodingSystem CodingSystemType = iota
	IdeographicCodingSystem
	PhoneticCodingSystem
)

// ErrUnknownCharacterSet is returned for SpecificCharacterSet defined terms
// that cannot be mapped to a decoder.
var ErrUnknownCharacterSet = errors.New("unknown specific character set")

// defaultRepertoire is used when a data set carries no SpecificCharacterSet.
// ISO-8859-1 is a superset of the ISO-IR 6 default, and maps every byte so the
// result is always valid UTF-8.
var defaultRepertoire encoding.Encoding = charmap.ISO8859_1

// labelByTerm maps SpecificCharacterSet defined terms (PS3.3 C.12.1.1.2) to
// WHATWG charset labels.
var labelByTerm = map[string]string{
	"ISO_IR 100": "iso-ir-100",
	"ISO_IR 101": "iso-ir-101",
	"ISO_IR 109": "iso-ir-109",
	"ISO_IR 110": "iso-ir-110",
	"ISO_IR 144": "iso-ir-144",
	"ISO_IR 127": "iso-ir-127",
	"ISO_IR 126": "iso-ir-126",
	"ISO_IR 138": "iso-ir-138",
	"ISO_IR 148": "iso-ir-148",
	"ISO_IR 13":  "shift-jis",
	"ISO_IR 166": "tis-620",
	"ISO_IR 192": "utf-8",
	"GB18030":    "gb18030",
	"GBK":        "gbk",

	"ISO 2022 IR 6":   "us-ascii",
	"ISO 2022 IR 100": "iso-ir-100",
	"ISO 2022 IR 101": "iso-ir-101",
	"ISO 2022 IR 109": "iso-ir-109",
	"ISO 2022 IR 110": "iso-ir-110",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 13":  "shift-jis",
	"ISO 2022 IR 166": "tis-620",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO 2022 IR 149": "euc-kr",
}

// DefaultCodingSystem returns fresh decoders for the default repertoire.
// encoding.Decoder carries state, so every parse needs its own.
func DefaultCodingSystem() CodingSystem {
	d := defaultRepertoire.NewDecoder()
	return CodingSystem{Alphabetic: d, Ideographic: d, Phonetic: d}
}

func lookupEncoding(term string) (encoding.Encoding, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return defaultRepertoire, nil
	}
	if label, ok := labelByTerm[term]; ok {
		if coding, _ := charset.Lookup(label); coding != nil {
			return coding, nil
		}
	}
	// Some writers put a plain charset name (e.g. "UTF-8") in the element.
	if coding, err := htmlindex.Get(term); err == nil {
		return coding, nil
	}
	return nil, errors.Wrapf(ErrUnknownCharacterSet, "%q", term)
}

// ParseSpecificCharacterSet 将 DICOM 字符集名称 (如 "ISO_IR 100") 转换成 golang decoder.
// Up to three values are honoured, assigned to the alphabetic, ideographic
// and phonetic component groups. An unknown term falls back to the default
// repertoire; the returned error lists it so the caller can flag a warning.
// Cf. P3.2 D.6.2.
func ParseSpecificCharacterSet(terms []string) (CodingSystem, error) {
	var (
		decoders []*encoding.Decoder
		firstErr error
	)
	for _, term := range terms {
		coding, err := lookupEncoding(term)
		if err != nil {
			dicomlog.Warn("unknown character set, assuming ISO-8859-1", dicomlog.Fields{"term": term})
			if firstErr == nil {
				firstErr = err
			}
			coding = defaultRepertoire
		}
		decoders = append(decoders, coding.NewDecoder())
	}
	switch len(decoders) {
	case 0:
		return DefaultCodingSystem(), firstErr
	case 1:
		return CodingSystem{decoders[0], decoders[0], decoders[0]}, firstErr
	case 2:
		return CodingSystem{decoders[0], decoders[1], decoders[1]}, firstErr
	default:
		return CodingSystem{decoders[0], decoders[1], decoders[2]}, firstErr
	}
}
