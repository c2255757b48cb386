// Package dicomtest builds synthetic DICOM Part 10 streams for tests: explicit
// and implicit VR, either byte order, deflated bodies, nested sequences and
// native or encapsulated pixel data.
package dicomtest

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/odincare/dicomancer/dicomio"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/odincare/dicomancer/dicomuid"
	"github.com/sirupsen/logrus"
)

const (
	// ImplementationClassUID is written into every generated file meta group.
	ImplementationClassUID = "1.2.826.0.1.3680043.9.7133.1.1"
	// ImplementationVersionName is written into every generated file meta group.
	ImplementationVersionName = "DICOMANCER_1"

	undefinedLength uint32 = 0xffffffff
)

// Elem describes one element to encode.
type Elem struct {
	Tag dicomtag.Tag
	// VR overrides the dictionary VR. Required for tags missing from it.
	VR string
	// Values must match the VR: strings for text VRs, uint16/uint32/int16/
	// int32/float32/float64 (or int) for binary numbers, dicomtag.Tag for AT
	// and a single []byte for OB/OW/UN.
	Values []interface{}
	// Items of an SQ element.
	Items [][]Elem
	// UndefinedLength encodes SQ elements and their items with delimiters.
	UndefinedLength bool
	// Raw, when non-nil, is written verbatim as the value with its own length.
	Raw []byte
	// Offsets and Fragments describe encapsulated pixel data.
	Offsets   []uint32
	Fragments [][]byte
}

// Str is a text element; the values are joined with backslashes.
func Str(tag dicomtag.Tag, values ...string) Elem {
	e := Elem{Tag: tag}
	for _, v := range values {
		e.Values = append(e.Values, v)
	}
	return e
}

// US is an unsigned short element.
func US(tag dicomtag.Tag, values ...uint16) Elem {
	e := Elem{Tag: tag, VR: "US"}
	for _, v := range values {
		e.Values = append(e.Values, v)
	}
	return e
}

// Bytes is an OB/OW/UN element.
func Bytes(tag dicomtag.Tag, vr string, b []byte) Elem {
	return Elem{Tag: tag, VR: vr, Values: []interface{}{b}}
}

// Seq is an SQ element. Each item is a list of elements.
func Seq(tag dicomtag.Tag, undefined bool, items ...[]Elem) Elem {
	return Elem{Tag: tag, VR: "SQ", Items: items, UndefinedLength: undefined}
}

// NativePixels is a defined-length PixelData element.
func NativePixels(vr string, pixels []byte) Elem {
	return Bytes(dicomtag.PixelData, vr, pixels)
}

// EncapsulatedPixels is an undefined-length PixelData element made of a
// Basic Offset Table and fragments.
func EncapsulatedPixels(offsets []uint32, fragments ...[]byte) Elem {
	return Elem{Tag: dicomtag.PixelData, VR: "OB", UndefinedLength: true, Offsets: offsets, Fragments: fragments}
}

// Instance returns the four identifying elements of the hierarchy.
func Instance(patientID, studyUID, seriesUID, sopUID string) []Elem {
	return []Elem{
		Str(dicomtag.SOPInstanceUID, sopUID),
		Str(dicomtag.PatientID, patientID),
		Str(dicomtag.StudyInstanceUID, studyUID),
		Str(dicomtag.SeriesInstanceUID, seriesUID),
	}
}

// ImageGeometry returns the Image Pixel module elements for a single-frame
// image, in tag order.
func ImageGeometry(rows, cols, samplesPerPixel, bitsAllocated uint16, photometric string) []Elem {
	return []Elem{
		US(dicomtag.SamplesPerPixel, samplesPerPixel),
		Str(dicomtag.PhotometricInterpretation, photometric),
		US(dicomtag.Rows, rows),
		US(dicomtag.Columns, cols),
		US(dicomtag.BitsAllocated, bitsAllocated),
		US(dicomtag.BitsStored, bitsAllocated),
		US(dicomtag.HighBit, bitsAllocated-1),
		US(dicomtag.PixelRepresentation, 0),
	}
}

// Builder assembles a Part 10 file: 128 byte preamble, "DICM", the file meta
// group and the body encoded with TransferSyntax.
type Builder struct {
	TransferSyntax string
	SOPClassUID    string
	SOPInstanceUID string
	// OmitGroupLength leaves out (0002,0000).
	OmitGroupLength bool
	Elements        []Elem
}

// New returns a Builder for the given transfer syntax UID.
func New(transferSyntaxUID string, elems ...Elem) *Builder {
	return &Builder{
		TransferSyntax: transferSyntaxUID,
		SOPClassUID:    dicomuid.SecondaryCaptureImageStorage,
		SOPInstanceUID: "1.2.826.0.1.3680043.9.7133.2.1",
		Elements:       elems,
	}
}

// Add appends elements to the body.
func (b *Builder) Add(elems ...Elem) *Builder {
	b.Elements = append(b.Elements, elems...)
	return b
}

// Body returns the encoded body, before deflation.
func (b *Builder) Body() []byte {
	bo, implicit := binary.ByteOrder(binary.LittleEndian), dicomio.ExplicitVR
	if ts, err := dicomio.LookupTransferSyntax(b.TransferSyntax); err == nil {
		bo, implicit = ts.ByteOrder, ts.Implicit
	}
	return EncodeElements(bo, implicit, b.Elements...)
}

// Bytes returns the complete file.
func (b *Builder) Bytes() []byte {
	e := dicomio.NewBytesEncoder(binary.LittleEndian, dicomio.ExplicitVR)
	WriteFileHeader(e, b.metaElements(), b.OmitGroupLength)
	body := b.Body()
	if b.TransferSyntax == dicomuid.DeflatedExplicitVRLittleEndian {
		var buf bytes.Buffer
		zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		dicomio.DoAssert(err == nil, err)
		_, err = zw.Write(body)
		dicomio.DoAssert(err == nil, err)
		dicomio.DoAssert(zw.Close() == nil)
		body = buf.Bytes()
	}
	e.WriteBytes(body)
	return e.Bytes()
}

func (b *Builder) metaElements() []Elem {
	return []Elem{
		Bytes(dicomtag.FileMetaInformationVersion, "OB", []byte{0, 1}),
		Str(dicomtag.MediaStorageSOPClassUID, b.SOPClassUID),
		Str(dicomtag.MediaStorageSOPInstanceUID, b.SOPInstanceUID),
		Str(dicomtag.TransferSyntaxUID, b.TransferSyntax),
		Str(dicomtag.ImplementationClassUID, ImplementationClassUID),
		Str(dicomtag.ImplementationVersionName, ImplementationVersionName),
	}
}

// WriteFileHeader produces a Dicom file header: preamble, magic word and the
// meta elements, always explicit VR little endian.
//
// Consult the following page for the Dicom file header format
// http://dicom.nema.org/dicom/2013/output/chtml/part10/chapter_7.html
func WriteFileHeader(e *dicomio.Encoder, meta []Elem, omitGroupLength bool) {
	e.PushTransferSyntax(binary.LittleEndian, dicomio.ExplicitVR)
	defer e.PopTransferSyntax()

	sub := dicomio.NewBytesEncoder(binary.LittleEndian, dicomio.ExplicitVR)
	for _, el := range meta {
		dicomio.DoAssert(el.Tag.Group == dicomtag.MetadataGroup, el.Tag)
		WriteElement(sub, el)
	}
	metaBytes := sub.Bytes()

	e.WriteZeros(128)
	e.WriteString("DICM")
	if !omitGroupLength {
		WriteElement(e, Elem{Tag: dicomtag.FileMetaInformationGroupLength, VR: "UL", Values: []interface{}{uint32(len(metaBytes))}})
	}
	e.WriteBytes(metaBytes)
}

func writeRawItem(e *dicomio.Encoder, data []byte) {
	encodeElementHeader(e, dicomtag.Item, "NA", uint32(len(data)))
	e.WriteBytes(data)
}

func writeBasicOffsetTable(e *dicomio.Encoder, offsets []uint32) {
	byteOrder, _ := e.TransferSyntax()
	sub := dicomio.NewBytesEncoder(byteOrder, dicomio.ImplicitVR)
	for _, offset := range offsets {
		sub.WriteUInt32(offset)
	}
	writeRawItem(e, sub.Bytes())
}

// EncodeElementHeader writes tag, VR and length under the encoder's
// transfer syntax. Group 0xFFFE is always implicit.
func EncodeElementHeader(e *dicomio.Encoder, tag dicomtag.Tag, vr string, vl uint32) {
	encodeElementHeader(e, tag, vr, vl)
}

func encodeElementHeader(e *dicomio.Encoder, tag dicomtag.Tag, vr string, vl uint32) {
	e.WriteUInt16(tag.Group)
	e.WriteUInt16(tag.Element)

	_, implicit := e.TransferSyntax()
	if tag.Group == 0xFFFE {
		implicit = dicomio.ImplicitVR
	}
	if implicit == dicomio.ImplicitVR {
		e.WriteUInt32(vl)
		return
	}
	dicomio.DoAssert(len(vr) == 2, vr)
	e.WriteString(vr)
	if dicomtag.HasLongLength(vr) {
		e.WriteZeros(2) // 2 bytes for "future use" (0000H)
		e.WriteUInt32(vl)
	} else {
		e.WriteUInt16(uint16(vl))
	}
}

func vrOf(el Elem) string {
	if el.VR != "" {
		return el.VR
	}
	if entry, err := dicomtag.Find(el.Tag); err == nil {
		return entry.VR
	}
	return "UN"
}

// EncodeElements encodes elems back to back with the given transfer syntax.
func EncodeElements(bo binary.ByteOrder, implicit dicomio.IsImplicitVR, elems ...Elem) []byte {
	e := dicomio.NewBytesEncoder(bo, implicit)
	for _, el := range elems {
		WriteElement(e, el)
	}
	return e.Bytes()
}

// WriteElement encodes one data element. Malformed descriptions panic.
func WriteElement(e *dicomio.Encoder, el Elem) {
	vr := vrOf(el)

	if el.Raw != nil {
		encodeElementHeader(e, el.Tag, vr, uint32(len(el.Raw)))
		e.WriteBytes(el.Raw)
		return
	}

	if el.Tag == dicomtag.PixelData && el.UndefinedLength {
		encodeElementHeader(e, el.Tag, vr, undefinedLength)
		writeBasicOffsetTable(e, el.Offsets)
		for _, f := range el.Fragments {
			writeRawItem(e, f)
		}
		encodeElementHeader(e, dicomtag.SequenceDelimitationItem, "", 0)
		return
	}

	if vr == "SQ" || el.Items != nil {
		writeSequence(e, el)
		return
	}

	sub := dicomio.NewBytesEncoder(e.TransferSyntax())
	encodeValues(sub, el, vr)
	data := sub.Bytes()
	encodeElementHeader(e, el.Tag, vr, uint32(len(data)))
	e.WriteBytes(data)
}

func writeSequence(e *dicomio.Encoder, el Elem) {
	writeItems := func(e *dicomio.Encoder) {
		for _, item := range el.Items {
			if el.UndefinedLength {
				encodeElementHeader(e, dicomtag.Item, "NA", undefinedLength)
				for _, sub := range item {
					WriteElement(e, sub)
				}
				encodeElementHeader(e, dicomtag.ItemDelimitationItem, "", 0)
				continue
			}
			sube := dicomio.NewBytesEncoder(e.TransferSyntax())
			for _, sub := range item {
				WriteElement(sube, sub)
			}
			data := sube.Bytes()
			encodeElementHeader(e, dicomtag.Item, "NA", uint32(len(data)))
			e.WriteBytes(data)
		}
	}
	if vr := vrOf(el); vr == "UN" {
		// PS3.5 6.2.2: the items of an undefined-length UN are implicit VR
		// little endian.
		encodeElementHeader(e, el.Tag, vr, undefinedLength)
		e.PushTransferSyntax(binary.LittleEndian, dicomio.ImplicitVR)
		writeItems(e)
		e.PopTransferSyntax()
		encodeElementHeader(e, dicomtag.SequenceDelimitationItem, "", 0)
		return
	}
	if el.UndefinedLength {
		encodeElementHeader(e, el.Tag, "SQ", undefinedLength)
		writeItems(e)
		encodeElementHeader(e, dicomtag.SequenceDelimitationItem, "", 0)
		return
	}
	sube := dicomio.NewBytesEncoder(e.TransferSyntax())
	writeItems(sube)
	data := sube.Bytes()
	encodeElementHeader(e, el.Tag, "SQ", uint32(len(data)))
	e.WriteBytes(data)
}

func encodeValues(e *dicomio.Encoder, el Elem, vr string) {
	bad := func(v interface{}) {
		logrus.Panicf("dicomtest: %v: value %#v does not fit VR %s", dicomtag.DebugString(el.Tag), v, vr)
	}
	switch vr {
	case "US", "UL", "SS", "SL", "UV", "SV":
		for _, v := range el.Values {
			n, ok := toInt64(v)
			if !ok {
				bad(v)
			}
			switch vr {
			case "US":
				e.WriteUInt16(uint16(n))
			case "SS":
				e.WriteInt16(int16(n))
			case "UL":
				e.WriteUInt32(uint32(n))
			case "SL":
				e.WriteInt32(int32(n))
			default:
				e.WriteUInt64(uint64(n))
			}
		}
	case "FL", "FD":
		for _, v := range el.Values {
			var f float64
			switch x := v.(type) {
			case float32:
				f = float64(x)
			case float64:
				f = x
			default:
				bad(v)
			}
			if vr == "FL" {
				e.WriteFloat32(float32(f))
			} else {
				e.WriteFloat64(f)
			}
		}
	case "AT":
		for _, v := range el.Values {
			t, ok := v.(dicomtag.Tag)
			if !ok {
				bad(v)
			}
			e.WriteUInt16(t.Group)
			e.WriteUInt16(t.Element)
		}
	case "OB", "OW", "OD", "OF", "OL", "OV", "UN":
		if len(el.Values) != 1 {
			bad(el.Values)
		}
		b, ok := el.Values[0].([]byte)
		if !ok {
			bad(el.Values[0])
		}
		e.WriteBytes(b)
		if len(b)%2 == 1 {
			e.WriteByte(0)
		}
	default:
		parts := make([]string, len(el.Values))
		for i, v := range el.Values {
			s, ok := v.(string)
			if !ok {
				bad(v)
			}
			parts[i] = s
		}
		s := strings.Join(parts, "\\")
		e.WriteString(s)
		if len(s)%2 == 1 {
			if vr == "UI" {
				e.WriteByte(0)
			} else {
				e.WriteByte(' ')
			}
		}
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

// MustNotPanic runs fn and converts a panic into an error, for fixtures built
// from fuzzer input.
func MustNotPanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dicomtest: %v", r)
		}
	}()
	fn()
	return nil
}
