package dicomio_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/odincare/dicomancer/dicomio"
	"github.com/odincare/dicomancer/dicomuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasic(t *testing.T) {
	e := dicomio.NewBytesEncoder(binary.BigEndian, dicomio.UnknownVR)
	e.WriteByte(10)
	e.WriteByte(11)
	e.WriteUInt16(0x123)
	e.WriteUInt32(0x234)
	e.WriteInt32(-7)
	e.WriteInt16(-3)
	e.WriteUInt64(1 << 40)
	e.WriteFloat32(0.5)
	e.WriteFloat64(2.5)
	e.WriteZeros(12)
	e.WriteString("abcde")
	require.NoError(t, e.Error())

	d := dicomio.NewBytesDecoder(e.Bytes(), binary.BigEndian, dicomio.UnknownVR)
	assert.EqualValues(t, 10, d.ReadByte())
	assert.EqualValues(t, 11, d.ReadByte())
	assert.EqualValues(t, 0x123, d.ReadUInt16())
	assert.EqualValues(t, 0x234, d.ReadUInt32())
	assert.EqualValues(t, -7, d.ReadInt32())
	assert.EqualValues(t, -3, d.ReadInt16())
	assert.EqualValues(t, int64(1)<<40, d.ReadInt64())
	assert.Equal(t, float32(0.5), d.ReadFloat32())
	assert.Equal(t, 2.5, d.ReadFloat64())
	d.Skip(12)
	assert.Equal(t, "abcde", d.ReadString(5))
	require.True(t, d.EOF())
	require.NoError(t, d.Finish())
}

func TestTruncatedReadIsSticky(t *testing.T) {
	d := dicomio.NewBytesDecoder([]byte{1, 2, 3}, binary.LittleEndian, dicomio.ExplicitVR)
	assert.EqualValues(t, 0x0201, d.ReadUInt16())
	assert.EqualValues(t, 0, d.ReadUInt32())
	require.Error(t, d.Error())
	assert.True(t, errors.Is(d.Error(), dicomio.ErrTruncatedStream))
	// The cursor never moves past what was available.
	assert.EqualValues(t, 2, d.BytesRead())
	assert.Nil(t, d.ReadBytes(1))
}

func TestPeekAndReset(t *testing.T) {
	d := dicomio.NewBytesDecoder([]byte{1, 2, 3, 4}, binary.LittleEndian, dicomio.ExplicitVR)
	assert.Equal(t, []byte{1, 2}, d.Peek(2))
	assert.Nil(t, d.Peek(5))
	assert.EqualValues(t, 0, d.BytesRead())

	mark := d.Bookmark()
	d.Skip(3)
	d.ReadUInt16()
	require.Error(t, d.Error())
	d.Reset(mark)
	require.NoError(t, d.Error())
	assert.EqualValues(t, 4, d.Len())
	assert.EqualValues(t, 0x04030201, d.ReadUInt32())
}

func TestLimits(t *testing.T) {
	d := dicomio.NewBytesDecoder([]byte{1, 2, 3, 4, 5, 6}, binary.LittleEndian, dicomio.ExplicitVR)
	d.PushLimit(4)
	assert.EqualValues(t, 1, d.ReadByte())
	d.ReadUInt32() // crosses the inner limit
	require.Error(t, d.Error())
	d.PopLimit()
	require.Error(t, d.Error(), "inner error is kept after PopLimit")
	assert.EqualValues(t, 4, d.BytesRead(), "PopLimit skips to the limit boundary")

	d = dicomio.NewBytesDecoder([]byte{1, 2}, binary.LittleEndian, dicomio.ExplicitVR)
	d.PushLimit(10)
	d.PopLimit()
	assert.True(t, errors.Is(d.Error(), dicomio.ErrTruncatedStream))
}

func TestPartialData(t *testing.T) {
	e := dicomio.NewBytesEncoder(binary.BigEndian, dicomio.UnknownVR)
	e.WriteByte(10)
	d := dicomio.NewBytesDecoder(e.Bytes(), binary.BigEndian, dicomio.UnknownVR)
	d.ReadUInt32()
	require.Error(t, d.Finish())
}

func TestJunkAtEnd(t *testing.T) {
	d := dicomio.NewBytesDecoder([]byte{1, 2, 3}, binary.LittleEndian, dicomio.ExplicitVR)
	d.ReadUInt16()
	require.Error(t, d.Finish())
}

func TestTransferSyntaxStack(t *testing.T) {
	d := dicomio.NewBytesDecoderWithTransferSyntax([]byte{0, 1, 0, 1}, dicomuid.ImplicitVRLittleEndian)
	bo, implicit := d.TransferSyntax()
	assert.Equal(t, binary.LittleEndian, bo)
	assert.Equal(t, dicomio.ImplicitVR, implicit)
	d.PushTransferSyntax(binary.BigEndian, dicomio.ExplicitVR)
	assert.EqualValues(t, 1, d.ReadUInt16())
	d.PopTransferSyntax()
	assert.EqualValues(t, 0x100, d.ReadUInt16())
}

func TestLookupTransferSyntax(t *testing.T) {
	ts, err := dicomio.LookupTransferSyntax(dicomuid.ExplicitVRBigEndian + "\x00")
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, ts.ByteOrder)
	assert.Equal(t, dicomio.ExplicitVR, ts.Implicit)
	assert.False(t, ts.Encapsulated)

	ts, err = dicomio.LookupTransferSyntax(dicomuid.RLELossless)
	require.NoError(t, err)
	assert.True(t, ts.Encapsulated)
	assert.Equal(t, "RLE Lossless", ts.Name())

	ts, err = dicomio.LookupTransferSyntax(dicomuid.DeflatedExplicitVRLittleEndian)
	require.NoError(t, err)
	assert.True(t, ts.Deflated)

	_, err = dicomio.LookupTransferSyntax("1.2.3.4")
	assert.True(t, errors.Is(err, dicomio.ErrUnsupportedTransferSyntax))

	d := dicomio.NewBytesDecoderWithTransferSyntax(nil, "1.2.3.4")
	assert.True(t, errors.Is(d.Error(), dicomio.ErrUnsupportedTransferSyntax))
}
