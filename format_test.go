package dicom_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/odincare/dicomancer/dicomtest"
	"github.com/odincare/dicomancer/dicomuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRow(t *testing.T, rows []dicom.MetadataRow, tag string) dicom.MetadataRow {
	t.Helper()
	for _, row := range rows {
		if row.Tag == tag {
			return row
		}
	}
	require.Failf(t, "row not found", "tag %s", tag)
	return dicom.MetadataRow{}
}

func TestMetadataRows(t *testing.T) {
	data := dicomtest.New(dicomuid.JPEGBaseline8Bit,
		dicomtest.Str(dicomtag.AccessionNumber),
		dicomtest.Seq(dicomtag.ReferencedImageSequence, true, []dicomtest.Elem{
			dicomtest.Str(dicomtag.ReferencedSOPClassUID, dicomuid.SecondaryCaptureImageStorage),
			dicomtest.Str(dicomtag.ReferencedSOPInstanceUID, "1.2.3"),
		}),
		dicomtest.Str(dicomtag.StudyDescription, strings.Repeat("é", 200)),
		dicomtest.Str(dicomtag.PatientName, "Doe^John"),
		dicomtest.US(dicomtag.Rows, 2, 3),
		dicomtest.Bytes(dicomtag.Tag{Group: 0x0009, Element: 0x1010}, "OB", make([]byte, 10)),
		dicomtest.EncapsulatedPixels([]uint32{0}, []byte{1, 2}, []byte{3, 4}),
	).Bytes()
	ds := mustRead(t, data, dicom.ReadOptions{})
	rows := dicom.MetadataRows(ds)

	// Meta first.
	assert.Equal(t, "(0002,0000)", rows[0].Tag)
	assert.Equal(t, "FileMetaInformationGroupLength", rows[0].Alias)
	ts := findRow(t, rows, "(0002,0010)")
	assert.Equal(t, "UI", ts.VR)
	assert.Equal(t, dicomuid.JPEGBaseline8Bit, ts.Value)

	assert.Equal(t, "(empty)", findRow(t, rows, "(0008,0050)").Value)

	seq := findRow(t, rows, "(0008,1140)")
	assert.Equal(t, "ReferencedImageSequence", seq.Alias)
	assert.Equal(t, "SQ", seq.VR)
	assert.Equal(t, "Sequence (1 item)", seq.Value)
	assert.Equal(t, 0, seq.Depth)

	item := findRow(t, rows, "(FFFE,E000)")
	assert.Equal(t, "Item", item.Alias)
	assert.Equal(t, "Item 1 (2 elements)", item.Value)
	assert.Equal(t, 1, item.Depth)
	child := findRow(t, rows, "(0008,1155)")
	assert.Equal(t, "1.2.3", child.Value)
	assert.Equal(t, 2, child.Depth)

	long := findRow(t, rows, "(0008,1030)")
	assert.Equal(t, dicom.MaxValueLen+1, utf8.RuneCountInString(long.Value))
	assert.True(t, strings.HasSuffix(long.Value, "…"))

	assert.Equal(t, "Doe^John", findRow(t, rows, "(0010,0010)").Value)
	assert.Equal(t, `2\3`, findRow(t, rows, "(0028,0010)").Value)

	private := findRow(t, rows, "(0009,1010)")
	assert.Equal(t, "Unknown", private.Alias)
	assert.Equal(t, "Binary data (10 bytes)", private.Value)

	assert.Equal(t, "Pixel data (2 fragments, offset table 1 entry)", findRow(t, rows, "(7FE0,0010)").Value)
}

func TestFormatValue(t *testing.T) {
	for _, tc := range []struct {
		elem dicom.Element
		want string
	}{
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindEmpty}}, "(empty)"},
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindSequence}}, "Sequence (0 items)"},
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindSequence, Items: []dicom.ItemHandle{0, 1}}}, "Sequence (2 items)"},
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindBytes, Bytes: []byte{1}}}, "Binary data (1 bytes)"},
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindPixelData, Pixel: &dicom.PixelDataInfo{Native: make([]byte, 16)}}}, "Binary data (16 bytes)"},
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindPixelData, Pixel: &dicom.PixelDataInfo{
			Encapsulated: true, Fragments: [][]byte{{1}},
		}}}, "Pixel data (1 fragment)"},
		{dicom.Element{Value: dicom.Value{Kind: dicom.KindPixelData, Pixel: &dicom.PixelDataInfo{
			Encapsulated: true, Offsets: []uint32{0, 10, 20}, Fragments: [][]byte{{1}, {2}, {3}},
		}}}, "Pixel data (3 fragments, offset table 3 entries)"},
		{dicom.Element{VR: "FL", Value: dicom.Value{Kind: dicom.KindDecimal, Floats: []float64{float64(float32(0.1))}}}, "0.1"},
		{dicom.Element{VR: "DS", Value: dicom.Value{Kind: dicom.KindDecimal, Strings: []string{"1.50"}, Floats: []float64{1.5}}}, "1.50"},
		{dicom.Element{VR: "SS", Value: dicom.Value{Kind: dicom.KindInt, Ints: []int64{-1, 2}}}, `-1\2`},
		{dicom.Element{VR: "AT", Value: dicom.Value{Kind: dicom.KindTags, Tags: []dicomtag.Tag{dicomtag.PixelData}}}, "(7FE0,0010)"},
	} {
		assert.Equal(t, tc.want, dicom.FormatValue(&tc.elem))
	}
}
