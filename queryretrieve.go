package dicom

import (
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/pkg/errors"
)

// ParseFilter 把 "Keyword=Pattern" 转换成一个查询 element, 如 "PatientName=Doe*"
// 或 "Rows=512". A tag may be given as "(0010,0020)" instead of a keyword.
func ParseFilter(s string) (*Element, error) {
	i := strings.IndexByte(s, '=')
	if i < 0 {
		return nil, errors.Errorf("filter %q: expect Keyword=Pattern", s)
	}
	name, pattern := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])

	var info dicomtag.TagInfo
	if tag, err := parseTagLiteral(name); err == nil {
		if info, err = dicomtag.Find(tag); err != nil {
			info = dicomtag.TagInfo{Tag: tag, VR: "UN"}
		}
	} else if info, err = dicomtag.FindByName(name); err != nil {
		return nil, errors.Wrapf(err, "filter %q", s)
	}

	f := &Element{Tag: info.Tag, VR: info.VR}
	if pattern == "" {
		f.Value = Value{Kind: KindEmpty}
		return f, nil
	}
	if info.VR == "SQ" && strings.Trim(pattern, "*") != "" {
		return nil, errors.Errorf("filter %q: sequences only take the universal match", s)
	}
	switch dicomtag.GetVRKind(info.Tag, info.VR) {
	case dicomtag.VRUID:
		f.Value = Value{Kind: KindUID, Strings: strings.Split(pattern, "\\")}
	case dicomtag.VRUInt16List, dicomtag.VRUInt32List, dicomtag.VRInt16List, dicomtag.VRInt32List,
		dicomtag.VRInt64List, dicomtag.VRIntegerString:
		n, err := strconv.ParseInt(pattern, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %q", s)
		}
		f.Value = Value{Kind: KindInt, Ints: []int64{n}}
	case dicomtag.VRFloat32List, dicomtag.VRFloat64List, dicomtag.VRDecimalString:
		x, err := strconv.ParseFloat(pattern, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %q", s)
		}
		f.Value = Value{Kind: KindDecimal, Floats: []float64{x}}
	case dicomtag.VRDate, dicomtag.VRTime, dicomtag.VRDateTime:
		f.Value = Value{Kind: KindDateTime, Strings: []string{pattern}}
	default:
		f.Value = Value{Kind: KindText, Strings: []string{pattern}}
	}
	return f, nil
}

func parseTagLiteral(s string) (dicomtag.Tag, error) {
	parts := strings.Split(strings.Trim(s, "()"), ",")
	if len(parts) != 2 || !strings.HasPrefix(s, "(") {
		return dicomtag.Tag{}, errors.Errorf("%q is not a tag literal", s)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 16)
	if err != nil {
		return dicomtag.Tag{}, err
	}
	elem, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 16)
	if err != nil {
		return dicomtag.Tag{}, err
	}
	return dicomtag.Tag{Group: uint16(group), Element: uint16(elem)}, nil
}

// Match reports whether ds satisfies every filter.
func Match(ds *DataSet, filters []*Element) (bool, error) {
	for _, f := range filters {
		ok, _, err := Query(ds, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// 查询检查dataset是否符合QR condition "filter"。
// 如果是，就返回<true, 匹配的element, nil>
// 如果 "filter" 要求一个通用匹配(universal match) i.e. 空查询 empty query value 且 element的filter.Tag不存在，函数返回<true, nil, nil>
// 如果”filter“有误(malformed)，函数返回<false, nil, err reason>
func Query(ds *DataSet, f *Element) (match bool, matchedElement *Element, err error) {
	if f.Value.Len() > 1 && f.Value.Kind != KindUID {
		// 过滤器不能包含多个值 P3.4 C2.2.2.1
		return false, nil, errors.Errorf("multiple values found in filter '%v'", f)
	}
	if f.Tag == dicomtag.QueryRetrieveLevel || f.Tag == dicomtag.SpecificCharacterSet {
		return true, nil, nil
	}

	elem, err := ds.FindElementByTag(f.Tag)
	if err != nil {
		elem = nil
	}
	match, err = queryElement(elem, f)
	if match {
		return true, elem, nil
	}
	return false, nil, err
}

func queryElement(elem *Element, f *Element) (match bool, err error) {
	if isEmptyQuery(f) {
		// 通用匹配
		return true, nil
	}
	if f.VR == "SQ" {
		return querySequence(elem, f)
	}
	if elem == nil {
		return false, nil
	}

	switch f.Value.Kind {
	case KindUID:
		// 判断element是否至少包含一个filter中的uid
		for _, expected := range f.Value.Strings {
			for _, value := range elem.Value.Strings {
				if value == expected {
					return true, nil
				}
			}
		}
		return false, nil
	case KindInt:
		ints, err := elem.GetInts()
		if err != nil {
			return false, err
		}
		for _, v := range ints {
			if v == f.Value.Ints[0] {
				return true, nil
			}
		}
		return false, nil
	case KindDecimal:
		floats, err := elem.GetFloats()
		if err != nil {
			return false, err
		}
		for _, v := range floats {
			if v == f.Value.Floats[0] {
				return true, nil
			}
		}
		return false, nil
	case KindDateTime:
		pattern := f.Value.Strings[0]
		if lo, hi, ok := strings.Cut(pattern, "-"); ok && f.VR != "DT" {
			return matchRange(lo, hi, elem.Value.Strings), nil
		}
		return matchStrings(pattern, elem.Value.Strings)
	case KindText:
		return matchStrings(f.Value.Strings[0], elem.Value.Strings)
	}
	return false, errors.Errorf("unknown filter data: %v", f)
}

// querySequence 只支持通用匹配; item 级别的过滤条件 (P3.4 C.2.2.2.6) 不会被静默接受
func querySequence(elem *Element, f *Element) (match bool, err error) {
	if elem == nil {
		return false, nil
	}
	return false, errors.Errorf("filter %v: sequences only take the universal match", dicomtag.DebugString(f.Tag))
}

// matchRange implements DA/TM range matching, P3.4 C.2.2.2.5. Either bound
// may be empty.
func matchRange(lo, hi string, values []string) bool {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if (lo == "" || v >= lo) && (hi == "" || v <= hi) {
			return true
		}
	}
	return false
}

func matchStrings(pattern string, values []string) (bool, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if g.Match(strings.TrimSpace(v)) {
			return true, nil
		}
	}
	return false, nil
}

func isEmptyQuery(f *Element) bool {
	// "*" 与 空查询一样是通用匹配符 P3.4 C2.2.2.4
	isUniversalGlob := func(s string) bool {
		for i := 0; i < len(s); i++ {
			if s[i] != '*' {
				return false
			}
		}
		return true
	}
	switch f.Value.Kind {
	case KindEmpty:
		return true
	case KindBytes:
		return len(f.Value.Bytes) == 0
	case KindText, KindDateTime:
		return len(f.Value.Strings) == 0 || isUniversalGlob(f.Value.Strings[0])
	}
	return f.Value.Len() == 0
}
