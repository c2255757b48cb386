package dicomtag_test

import (
	"testing"

	"github.com/odincare/dicomancer/dicomtag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	elem, err := dicomtag.Find(dicomtag.Tag{Group: 32736, Element: 16})
	require.NoError(t, err)
	assert.Equal(t, "PixelData", elem.Name)
	assert.Equal(t, "OW", elem.VR)

	elem, err = dicomtag.Find(dicomtag.Tag{Group: 0x0018, Element: 0x0000})
	require.NoError(t, err)
	assert.Equal(t, "GenericGroupLength", elem.Name)

	elem, err = dicomtag.Find(dicomtag.Tag{Group: 0x0009, Element: 0x0010})
	require.NoError(t, err)
	assert.Equal(t, "PrivateCreator", elem.Name)

	_, err = dicomtag.Find(dicomtag.Tag{Group: 0x0009, Element: 0x1010})
	assert.Error(t, err)
	assert.Equal(t, "Unknown", dicomtag.Alias(dicomtag.Tag{Group: 0x0009, Element: 0x1010}))
}

func TestFindByName(t *testing.T) {
	elem, err := dicomtag.FindByName("TransferSyntaxUID")
	require.NoError(t, err)
	assert.Equal(t, dicomtag.TransferSyntaxUID, elem.Tag)
	assert.Equal(t, "UI", elem.VR)

	_, err = dicomtag.FindByName("NoSuchThing")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, dicomtag.PatientName.Compare(dicomtag.PatientID))
	assert.Equal(t, 1, dicomtag.PixelData.Compare(dicomtag.Rows))
	assert.Equal(t, 0, dicomtag.Rows.Compare(dicomtag.Rows))
	assert.True(t, dicomtag.IsPrivate(0x0009))
	assert.False(t, dicomtag.IsPrivate(0x0010))
}

func TestVRKind(t *testing.T) {
	assert.Equal(t, dicomtag.VRStringList, dicomtag.GetVRKind(dicomtag.PatientName, "PN"))
	assert.Equal(t, dicomtag.VRDate, dicomtag.GetVRKind(dicomtag.StudyDate, "DA"))
	assert.Equal(t, dicomtag.VRSequence, dicomtag.GetVRKind(dicomtag.ReferencedImageSequence, "SQ"))
	assert.True(t, dicomtag.HasLongLength("OB"))
	assert.False(t, dicomtag.HasLongLength("US"))
	assert.False(t, dicomtag.IsKnownVR("\x10\x00"))
}
