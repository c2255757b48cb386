package dicom

import (
	"fmt"
	"strings"
	"time"

	"github.com/odincare/dicomancer/dicomtag"
	"github.com/pkg/errors"
)

// UndefinedLength is the length sentinel of sequences, items and encapsulated
// pixel data whose extent is given by delimiters.
const UndefinedLength uint32 = 0xffffffff

// ItemSeqGroup 是 item 和 delimiter 的组号, 它们总是 implicit VR 编码
const ItemSeqGroup = 0xFFFE

// ValueKind 标识 Value 中哪一组字段有效
type ValueKind int

const (
	// KindEmpty is a zero-length value.
	KindEmpty ValueKind = iota
	// KindText stores Strings (AE AS CS LO LT PN SH ST UC UR UT).
	KindText
	// KindInt stores Ints (SS US SL UL SV IS). IS also keeps the raw Strings.
	KindInt
	// KindUint stores Uints (UV).
	KindUint
	// KindDecimal stores Floats (FL FD DS). DS also keeps the raw Strings.
	KindDecimal
	// KindDateTime stores the raw Strings and the parsed Times (DA TM DT).
	KindDateTime
	// KindUID stores Strings with the NUL padding removed (UI).
	KindUID
	// KindBytes stores Bytes (OB OD OF OL OV OW UN and unknown VRs).
	KindBytes
	// KindTags stores Tags (AT).
	KindTags
	// KindSequence stores Items, handles into the owning DataSet's item arena.
	KindSequence
	// KindPixelData stores Pixel.
	KindPixelData
)

var kindNames = [...]string{"Empty", "Text", "Int", "Uint", "Decimal", "DateTime", "UID", "Bytes", "Tags", "Sequence", "PixelData"}

func (k ValueKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
	return kindNames[k]
}

// ItemHandle indexes a sequence item in the arena of the DataSet that owns it.
type ItemHandle int

// PixelDataInfo 是 PixelData element 的值.
// Native pixel data is one contiguous block in Native. Encapsulated pixel data
// keeps the Basic Offset Table and the raw fragments (P3.5 A.4).
type PixelDataInfo struct {
	Encapsulated bool
	Native       []byte
	Offsets      []uint32 // BasicOffsetTable
	Fragments    [][]byte
}

// Value is the decoded payload of an Element. Exactly the fields selected by
// Kind are populated.
type Value struct {
	Kind    ValueKind
	Strings []string
	Ints    []int64
	Uints   []uint64
	Floats  []float64
	Times   []time.Time
	Bytes   []byte
	Tags    []dicomtag.Tag
	Items   []ItemHandle
	Pixel   *PixelDataInfo
}

// Len returns the value multiplicity.
func (v Value) Len() int {
	switch v.Kind {
	case KindText, KindUID, KindDateTime:
		return len(v.Strings)
	case KindInt:
		return len(v.Ints)
	case KindUint:
		return len(v.Uints)
	case KindDecimal:
		return len(v.Floats)
	case KindBytes:
		if len(v.Bytes) == 0 {
			return 0
		}
		return 1
	case KindTags:
		return len(v.Tags)
	case KindSequence:
		return len(v.Items)
	case KindPixelData:
		return 1
	}
	return 0
}

// Element represents a single DICOM element, decoded from a stream. Elements
// are owned by the DataSet they were read into and never change afterwards.
type Element struct {
	// Tag is a pair of <group, element>. See dicomtag for possible values.
	Tag dicomtag.Tag

	// VR defines the encoding of Value in two-letter alphabets, e.g.,
	// "AE", "UL". See P3.5 6.2. It is read from the stream for explicit
	// transfer syntaxes and from the dictionary for implicit ones ("UN" when
	// the dictionary has no entry).
	VR string

	// Length is the declared value length, UndefinedLength for delimited
	// sequences, items and encapsulated pixel data.
	Length uint32

	// UndefinedLength is true if the element is delimited by
	// SequenceDelimitationItem or ItemDelimitationItem.
	UndefinedLength bool

	Value Value

	// Warning is non-empty when the value was unexpected in content and was
	// replaced by a placeholder, or kept as raw bytes.
	Warning string

	// Offset of the element header within the data set body, and the number
	// of bytes it spans including the header and any nested items.
	Offset int64
	Span   int64
}

// Alias returns the dictionary keyword of the element's tag, or "Unknown".
func (e *Element) Alias() string {
	return dicomtag.Alias(e.Tag)
}

// GetString gets a string value from an element.  It returns an error if the
// element contains zero or >1 values, or the value is not a string.
func (e *Element) GetString() (string, error) {
	switch e.Value.Kind {
	case KindText, KindUID, KindDateTime, KindInt, KindDecimal:
		if len(e.Value.Strings) != 1 {
			return "", errors.Errorf("found %d value(s) in GetString (expect 1): %v", len(e.Value.Strings), e)
		}
		return e.Value.Strings[0], nil
	}
	return "", errors.Errorf("string value not found in %v", e)
}

// MustGetString is similar to GetString(), but panics on error.
func (e *Element) MustGetString() string {
	v, err := e.GetString()
	if err != nil {
		panic(err)
	}
	return v
}

// GetStrings 返回 存在element中的string数组，
// 如果 e 的值不是字符串将返回错误
func (e *Element) GetStrings() ([]string, error) {
	switch e.Value.Kind {
	case KindEmpty:
		return nil, nil
	case KindText, KindUID, KindDateTime, KindInt, KindDecimal:
		if e.Value.Strings != nil {
			return e.Value.Strings, nil
		}
	}
	return nil, errors.Errorf("string value not found in %v", e)
}

// GetInts returns the integers stored in the element (SS US SL UL SV IS).
func (e *Element) GetInts() ([]int64, error) {
	switch e.Value.Kind {
	case KindEmpty:
		return nil, nil
	case KindInt:
		return e.Value.Ints, nil
	case KindUint:
		ints := make([]int64, len(e.Value.Uints))
		for i, u := range e.Value.Uints {
			ints[i] = int64(u)
		}
		return ints, nil
	}
	return nil, errors.Errorf("integer value not found in %v", e)
}

// GetInt gets the first integer of an element.
func (e *Element) GetInt() (int64, error) {
	ints, err := e.GetInts()
	if err != nil {
		return 0, err
	}
	if len(ints) == 0 {
		return 0, errors.Errorf("found 0 values in GetInt: %v", e)
	}
	return ints[0], nil
}

// GetUInt16 gets a uint16 value from an element. It returns an error if the
// element has no values, or the first value does not fit in 16 bits.
func (e *Element) GetUInt16() (uint16, error) {
	v, err := e.GetInt()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xffff {
		return 0, errors.Errorf("value %d of %v does not fit uint16", v, e)
	}
	return uint16(v), nil
}

// MustGetUInt16 is similar to GetUInt16, but panics on error.
func (e *Element) MustGetUInt16() uint16 {
	v, err := e.GetUInt16()
	if err != nil {
		panic(err)
	}
	return v
}

// GetUInt32 gets a uint32 value from an element.
func (e *Element) GetUInt32() (uint32, error) {
	v, err := e.GetInt()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xffffffff {
		return 0, errors.Errorf("value %d of %v does not fit uint32", v, e)
	}
	return uint32(v), nil
}

// GetFloats returns the numbers stored in the element. Integer values are
// converted.
func (e *Element) GetFloats() ([]float64, error) {
	switch e.Value.Kind {
	case KindEmpty:
		return nil, nil
	case KindDecimal:
		return e.Value.Floats, nil
	case KindInt, KindUint:
		ints, _ := e.GetInts()
		floats := make([]float64, len(ints))
		for i, v := range ints {
			floats[i] = float64(v)
		}
		return floats, nil
	}
	return nil, errors.Errorf("numeric value not found in %v", e)
}

// GetFloat gets the first number of an element.
func (e *Element) GetFloat() (float64, error) {
	floats, err := e.GetFloats()
	if err != nil {
		return 0, err
	}
	if len(floats) == 0 {
		return 0, errors.Errorf("found 0 values in GetFloat: %v", e)
	}
	return floats[0], nil
}

// GetTimes returns the parsed DA/TM/DT values. Unparseable entries are zero.
func (e *Element) GetTimes() ([]time.Time, error) {
	if e.Value.Kind != KindDateTime {
		return nil, errors.Errorf("date/time value not found in %v", e)
	}
	return e.Value.Times, nil
}

// GetPixelDataInfo returns the pixel payload of a PixelData element.
func (e *Element) GetPixelDataInfo() (*PixelDataInfo, error) {
	if e.Value.Kind != KindPixelData || e.Value.Pixel == nil {
		return nil, errors.Errorf("pixel data not found in %v", e)
	}
	return e.Value.Pixel, nil
}

// Stringer
func (e *Element) String() string {
	sVl := ""
	if e.UndefinedLength {
		sVl = "u"
	}
	var sv string
	switch e.Value.Kind {
	case KindSequence:
		sv = fmt.Sprintf("(#%d items)", len(e.Value.Items))
	case KindPixelData:
		sv = formatPixelData(e.Value.Pixel)
	case KindBytes:
		sv = fmt.Sprintf("(%d bytes)", len(e.Value.Bytes))
	default:
		sv = "[" + formatScalars(e) + "]"
	}
	if len(sv) > 1024 {
		sv = sv[:1024] + "(...)"
	}
	s := fmt.Sprintf(" %s %s %s %s", dicomtag.DebugString(e.Tag), e.VR, sVl, sv)
	if e.Warning != "" {
		s += " !" + e.Warning
	}
	return strings.TrimRight(s, " ")
}
