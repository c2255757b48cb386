package dicomtag

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Tag 是一个定义了dicom文件中element 的类型的 <group, element> 元组
// 列表中的标准tags定义在tag_definitions.go, 也可以参考：
// ftp://medical.nema.org/medical/dicom/2011/11_06pu.pdf
type Tag struct {
	// Group 和 Element 是读取16进制对的结果 如 (1000,10008)
	Group   uint16
	Element uint16
}

// Compare 返回 -1/0/1 如果t<other | t==other | t>other，
// tag先由group排序，再由element排序
func (t Tag) Compare(other Tag) int {
	if t.Group < other.Group {
		return -1
	}

	if t.Group > other.Group {
		return 1
	}

	if t.Element < other.Element {
		return -1
	}

	if t.Element > other.Element {
		return 1
	}

	return 0
}

// IsPrivate reports whether the group number belongs to a private
// (vendor-defined) group. Private groups are odd.
func IsPrivate(group uint16) bool {
	return group%2 == 1
}

// String 返回一个如"(0008, 1234)"格式的string
// 0x0008 是 t.Group 0x1234是t.Element
func (t Tag) String() string {
	return fmt.Sprintf("(%04x, %04x)", t.Group, t.Element)
}

// TagInfo 保存了Tag在标准DICOM标准中的detail information
type TagInfo struct {
	Tag Tag
	// Data 编码 如 "UL" "CS"
	VR string
	// 人类可读的Tag别名 如 "CommandDataSetType"
	Name string
	// 基数(Cardinality) (element中期望的值 #)
	VM string
	// Canonical attribute name as printed in PS3.6, e.g. "Patient's Name".
	Description string
}

// MetadataGroup 是 Tag.Group 中 metadata tags的值.
const MetadataGroup = 2

// ErrTagNotFound is returned by Find and FindByName on a dictionary miss.
var ErrTagNotFound = errors.New("tag not found in dictionary")

type dictionary struct {
	byTag  map[Tag]TagInfo
	byName map[string]TagInfo
}

var (
	dictOnce sync.Once
	dict     dictionary
)

// maybeInitTagDict parses the static definitions table exactly once. The
// resulting maps are never written again, so lookups need no locking.
func maybeInitTagDict() {
	dictOnce.Do(func() {
		dict = dictionary{
			byTag:  make(map[Tag]TagInfo, 256),
			byName: make(map[string]TagInfo, 256),
		}
		for lineno, line := range strings.Split(tagDefinitions, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			cols := strings.Split(line, "\t")
			if len(cols) != 5 {
				panic(fmt.Sprintf("dicomtag: malformed definition at line %d: %q", lineno+1, line))
			}
			tag, err := parseTag(cols[0])
			if err != nil {
				panic(fmt.Sprintf("dicomtag: bad tag at line %d: %v", lineno+1, err))
			}
			info := TagInfo{Tag: tag, VR: cols[1], Name: cols[2], VM: cols[3], Description: cols[4]}
			dict.byTag[tag] = info
			dict.byName[info.Name] = info
		}
	})
}

// 找到给与的tag中的信息
// 如果tag不是dicom standard的一部分或已经不再在dicom standard中 会返回错误
func Find(tag Tag) (TagInfo, error) {
	maybeInitTagDict()
	entry, ok := dict.byTag[tag]
	if ok {
		return entry, nil
	}
	// Overlay and curve groups repeat over (60xx) and (50xx); the table
	// only lists the first group of each range.
	if g := tag.Group & 0xff00; (g == 0x6000 || g == 0x5000) && tag.Group%2 == 0 {
		if entry, ok = dict.byTag[Tag{Group: g, Element: tag.Element}]; ok {
			entry.Tag = tag
			return entry, nil
		}
	}
	// (0000-u-ffff,0000)	UL	GenericGroupLength	1	GENERIC
	if tag.Group%2 == 0 && tag.Element == 0x0000 {
		return TagInfo{Tag: tag, VR: "UL", Name: "GenericGroupLength", VM: "1", Description: "Group Length"}, nil
	}
	if IsPrivate(tag.Group) && tag.Element >= 0x0010 && tag.Element <= 0x00ff {
		return TagInfo{Tag: tag, VR: "LO", Name: "PrivateCreator", VM: "1", Description: "Private Creator"}, nil
	}
	return TagInfo{}, errors.Wrapf(ErrTagNotFound, "(0x%04x, 0x%04x)", tag.Group, tag.Element)
}

// MustFind与FindTag相似, 但报错会panic停止程序
func MustFind(tag Tag) TagInfo {
	e, err := Find(tag)
	if err != nil {
		panic(fmt.Sprintf("tag %v not found: %s", tag, err))
	}
	return e
}

// FindByName将传入的name寻找到information。
// 如果tag不是dicom standard中的一个或者不再在dicom standard中，将会返回一个错误
// 例: FindByName("TransferSyntaxUID")
func FindByName(name string) (TagInfo, error) {
	maybeInitTagDict()
	if ent, ok := dict.byName[name]; ok {
		return ent, nil
	}
	return TagInfo{}, errors.Wrapf(ErrTagNotFound, "name %s", name)
}

// Alias returns the dictionary keyword for tag, or "Unknown" when the
// dictionary has no entry for it.
func Alias(tag Tag) string {
	if e, err := Find(tag); err == nil {
		return e.Name
	}
	return "Unknown"
}

// DebugString 返回一个人类可读的tag的诊断字符串，格式如 "(group, element)[name]"
func DebugString(tag Tag) string {
	e, err := Find(tag)
	if err != nil {
		if IsPrivate(tag.Group) {
			return fmt.Sprintf("(%04x,%04x)[private]", tag.Group, tag.Element)
		}
		return fmt.Sprintf("(%04x,%04x)[??]", tag.Group, tag.Element)
	}
	return fmt.Sprintf("(%04x,%04x)[%s]", tag.Group, tag.Element, e.Name)
}

// 将tag分成 group和element 由16进制数表示
func parseTag(tag string) (Tag, error) {
	parts := strings.Split(strings.Trim(tag, "()"), ",")
	if len(parts) != 2 {
		return Tag{}, errors.Errorf("tag %q: expect (group,element)", tag)
	}
	group, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 16)
	if err != nil {
		return Tag{}, err
	}
	elem, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 16)
	if err != nil {
		return Tag{}, err
	}
	return Tag{Group: uint16(group), Element: uint16(elem)}, nil
}
