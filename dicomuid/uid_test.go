package dicomuid_test

import (
	"testing"

	"github.com/odincare/dicomancer/dicomuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	info, err := dicomuid.Lookup(dicomuid.RLELossless)
	require.NoError(t, err)
	assert.Equal(t, "RLE Lossless", info.Name)
	assert.Equal(t, dicomuid.TypeTransferSyntax, info.Type)

	info, err = dicomuid.Lookup(dicomuid.CTImageStorage)
	require.NoError(t, err)
	assert.Equal(t, dicomuid.TypeSOPClass, info.Type)

	_, err = dicomuid.Lookup("1.2.3")
	assert.True(t, errors.Is(err, dicomuid.ErrUnknownUID))
}

func TestUIDString(t *testing.T) {
	assert.Equal(t, "Explicit VR Big Endian", dicomuid.UIDString(dicomuid.ExplicitVRBigEndian))
	assert.Equal(t, "1.2.3", dicomuid.UIDString("1.2.3"))
}
