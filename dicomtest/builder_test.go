package dicomtest

import (
	"encoding/binary"
	"testing"

	"github.com/odincare/dicomancer/dicomio"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/odincare/dicomancer/dicomuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHeader(t *testing.T) {
	data := New(dicomuid.ExplicitVRLittleEndian).Bytes()
	require.True(t, len(data) > 144)
	assert.Equal(t, make([]byte, 128), data[:128])
	assert.Equal(t, "DICM", string(data[128:132]))

	d := dicomio.NewBytesDecoder(data[132:], binary.LittleEndian, dicomio.ExplicitVR)
	assert.Equal(t, dicomtag.FileMetaInformationGroupLength, dicomtag.Tag{Group: d.ReadUInt16(), Element: d.ReadUInt16()})
	assert.Equal(t, "UL", d.ReadString(2))
	assert.Equal(t, uint16(4), d.ReadUInt16())
	groupLength := d.ReadUInt32()
	require.NoError(t, d.Error())
	assert.EqualValues(t, d.Len(), groupLength)
}

func TestElementEncoding(t *testing.T) {
	le := EncodeElements(binary.LittleEndian, dicomio.ExplicitVR, Str(dicomtag.SOPInstanceUID, "1.2.3"))
	assert.Equal(t, []byte{0x08, 0x00, 0x18, 0x00, 'U', 'I', 6, 0, '1', '.', '2', '.', '3', 0}, le)

	be := EncodeElements(binary.BigEndian, dicomio.ExplicitVR, US(dicomtag.Rows, 512))
	assert.Equal(t, []byte{0x00, 0x28, 0x00, 0x10, 'U', 'S', 0, 2, 0x02, 0x00}, be)

	implicit := EncodeElements(binary.LittleEndian, dicomio.ImplicitVR, Str(dicomtag.Modality, "MRI"))
	assert.Equal(t, []byte{0x08, 0x00, 0x60, 0x00, 4, 0, 0, 0, 'M', 'R', 'I', ' '}, implicit)

	ob := EncodeElements(binary.LittleEndian, dicomio.ExplicitVR, Bytes(dicomtag.PixelData, "OB", []byte{7}))
	assert.Equal(t, []byte{0xe0, 0x7f, 0x10, 0x00, 'O', 'B', 0, 0, 2, 0, 0, 0, 7, 0}, ob)
}

func TestSequenceEncoding(t *testing.T) {
	item := []Elem{Str(dicomtag.PatientID, "P1")}
	defined := EncodeElements(binary.LittleEndian, dicomio.ExplicitVR, Seq(dicomtag.ReferencedImageSequence, false, item))
	undefined := EncodeElements(binary.LittleEndian, dicomio.ExplicitVR, Seq(dicomtag.ReferencedImageSequence, true, item))
	// Header 12 + item header 8 + element 10.
	assert.Len(t, defined, 30)
	// Undefined length adds the two 8 byte delimiters.
	assert.Len(t, undefined, 46)

	d := dicomio.NewBytesDecoder(undefined[len(undefined)-8:], binary.LittleEndian, dicomio.ImplicitVR)
	assert.Equal(t, dicomtag.SequenceDelimitationItem, dicomtag.Tag{Group: d.ReadUInt16(), Element: d.ReadUInt16()})
}

func TestMismatchedValuePanics(t *testing.T) {
	assert.Panics(t, func() {
		EncodeElements(binary.LittleEndian, dicomio.ExplicitVR, Elem{Tag: dicomtag.Rows, Values: []interface{}{"512"}})
	})
	assert.Error(t, MustNotPanic(func() {
		EncodeElements(binary.LittleEndian, dicomio.ExplicitVR, Elem{Tag: dicomtag.Rows, Values: []interface{}{"512"}})
	}))
}
