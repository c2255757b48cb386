package dicomtag

// VRKind 定义了golang 编码的VR
type VRKind int

const (
	// VRStringList means the element stores a backslash-delimited list of strings
	VRStringList VRKind = iota
	// VRString means the element stores a single string (LT, ST, UT, UR);
	// backslashes are content, not delimiters.
	VRString
	// VRIntegerString is IS: decimal integers encoded as text
	VRIntegerString
	// VRDecimalString is DS: decimal numbers encoded as text
	VRDecimalString
	// VRDate means the element stores a date string (DA)
	VRDate
	// VRTime means the element stores a time string (TM)
	VRTime
	// VRDateTime means the element stores a date-time string (DT)
	VRDateTime
	// VRUID means the element stores NUL-padded unique identifiers (UI)
	VRUID
	// VRUInt16List means the element stores a list of uint16s
	VRUInt16List
	// VRUInt32List means the element stores a list of uint32s
	VRUInt32List
	// VRUInt64List means the element stores a list of uint64s
	VRUInt64List
	// VRInt16List means the element stores a list of int16s
	VRInt16List
	// VRInt32List element stores a list of int32s
	VRInt32List
	// VRInt64List element stores a list of int64s
	VRInt64List
	// VRFloat32List element stores a list of float32s
	VRFloat32List
	// VRFloat64List element stores a list of float64s
	VRFloat64List
	// VRTagList element stores a list of Tags
	VRTagList
	// VRBytes means the element stores a []byte
	VRBytes
	// VRSequence means the element stores a list of items
	VRSequence
	// VRItem means the element is an item of a sequence
	VRItem
	// VRPixelData means the element stores a PixelDataInfo
	VRPixelData
)

var vrKindNames = [...]string{
	"StringList", "String", "IntegerString", "DecimalString", "Date", "Time", "DateTime", "UID",
	"UInt16List", "UInt32List", "UInt64List", "Int16List", "Int32List", "Int64List",
	"Float32List", "Float64List", "TagList", "Bytes", "Sequence", "Item", "PixelData",
}

func (k VRKind) String() string {
	if k < 0 || int(k) >= len(vrKindNames) {
		return "VRKind(?)"
	}
	return vrKindNames[k]
}

// GetVRKind 返回 go语言的 value encoding of an element with <tag, vr>.
func GetVRKind(tag Tag, vr string) VRKind {
	if tag == Item {
		return VRItem
	} else if tag == PixelData {
		return VRPixelData
	}
	switch vr {
	case "DA":
		return VRDate
	case "TM":
		return VRTime
	case "DT":
		return VRDateTime
	case "UI":
		return VRUID
	case "IS":
		return VRIntegerString
	case "DS":
		return VRDecimalString
	case "AT":
		return VRTagList
	case "OW", "OB", "OD", "OF", "OL", "OV", "UN":
		return VRBytes
	case "LT", "ST", "UT", "UR":
		return VRString
	case "UL":
		return VRUInt32List
	case "SL":
		return VRInt32List
	case "US":
		return VRUInt16List
	case "SS":
		return VRInt16List
	case "UV":
		return VRUInt64List
	case "SV":
		return VRInt64List
	case "FL":
		return VRFloat32List
	case "FD":
		return VRFloat64List
	case "SQ":
		return VRSequence
	case "AE", "AS", "CS", "LO", "PN", "SH", "UC":
		return VRStringList
	default:
		return VRBytes
	}
}

// IsKnownVR reports whether vr is one of the two-letter codes of PS3.5 6.2.
// "NA" is the pseudo VR used for items and delimiters.
func IsKnownVR(vr string) bool {
	switch vr {
	case "AE", "AS", "AT", "CS", "DA", "DS", "DT", "FL", "FD", "IS", "LO", "LT",
		"OB", "OD", "OF", "OL", "OV", "OW", "PN", "SH", "SL", "SQ", "SS", "ST",
		"SV", "TM", "UC", "UI", "UL", "UN", "UR", "US", "UT", "UV", "NA":
		return true
	}
	return false
}

// HasLongLength reports whether an explicit-VR element header with this VR
// carries two reserved bytes and a 32-bit length (PS3.5 7.1.2) instead of a
// 16-bit length.
func HasLongLength(vr string) bool {
	switch vr {
	case "NA", "OB", "OD", "OF", "OL", "OV", "OW", "SQ", "SV", "UC", "UN", "UR", "UT", "UV":
		return true
	}
	return false
}

// IsBinaryVR reports whether values of vr are opaque byte blobs when shown
// to a person.
func IsBinaryVR(vr string) bool {
	switch vr {
	case "OB", "OD", "OF", "OL", "OV", "OW", "UN":
		return true
	}
	return false
}
