package dicomio

import (
	"encoding/binary"
	"strings"

	"github.com/odincare/dicomancer/dicomuid"
	"github.com/pkg/errors"
)

// ErrUnsupportedTransferSyntax is returned for transfer syntax UIDs missing
// from the supported table. The decoder never guesses an encoding.
var ErrUnsupportedTransferSyntax = errors.New("unsupported transfer syntax")

// TransferSyntax 描述了文件body的编码方式
type TransferSyntax struct {
	UID       string
	ByteOrder binary.ByteOrder
	Implicit  IsImplicitVR
	// Deflated bodies are zlib "deflate" streams wrapping explicit VR little endian.
	Deflated bool
	// Encapsulated pixel data is split into fragments and compressed with the
	// codec named by UID.
	Encapsulated bool
}

// Name returns the PS3.6 name of the transfer syntax, or its UID.
func (ts TransferSyntax) Name() string {
	return dicomuid.UIDString(ts.UID)
}

func native(uid string, bo binary.ByteOrder, implicit IsImplicitVR) TransferSyntax {
	return TransferSyntax{UID: uid, ByteOrder: bo, Implicit: implicit}
}

func encapsulated(uid string) TransferSyntax {
	return TransferSyntax{UID: uid, ByteOrder: binary.LittleEndian, Implicit: ExplicitVR, Encapsulated: true}
}

var transferSyntaxes = map[string]TransferSyntax{
	dicomuid.ImplicitVRLittleEndian: native(dicomuid.ImplicitVRLittleEndian, binary.LittleEndian, ImplicitVR),
	dicomuid.ExplicitVRLittleEndian: native(dicomuid.ExplicitVRLittleEndian, binary.LittleEndian, ExplicitVR),
	dicomuid.ExplicitVRBigEndian:    native(dicomuid.ExplicitVRBigEndian, binary.BigEndian, ExplicitVR),
	dicomuid.DeflatedExplicitVRLittleEndian: {
		UID:       dicomuid.DeflatedExplicitVRLittleEndian,
		ByteOrder: binary.LittleEndian,
		Implicit:  ExplicitVR,
		Deflated:  true,
	},
	dicomuid.JPEGBaseline8Bit:   encapsulated(dicomuid.JPEGBaseline8Bit),
	dicomuid.JPEGExtended12Bit:  encapsulated(dicomuid.JPEGExtended12Bit),
	dicomuid.JPEGLossless:       encapsulated(dicomuid.JPEGLossless),
	dicomuid.JPEGLosslessSV1:    encapsulated(dicomuid.JPEGLosslessSV1),
	dicomuid.JPEGLSLossless:     encapsulated(dicomuid.JPEGLSLossless),
	dicomuid.JPEGLSNearLossless: encapsulated(dicomuid.JPEGLSNearLossless),
	dicomuid.JPEG2000Lossless:   encapsulated(dicomuid.JPEG2000Lossless),
	dicomuid.JPEG2000:           encapsulated(dicomuid.JPEG2000),
	dicomuid.RLELossless:        encapsulated(dicomuid.RLELossless),
}

// StandardTransferSyntaxes is the list of native (uncompressed) transfer syntaxes
var StandardTransferSyntaxes = []string{
	dicomuid.ImplicitVRLittleEndian,
	dicomuid.ExplicitVRLittleEndian,
	dicomuid.ExplicitVRBigEndian,
	dicomuid.DeflatedExplicitVRLittleEndian,
}

// TrimUID strips the NUL and space padding UI values carry on disk.
func TrimUID(uid string) string {
	return strings.TrimRight(uid, "\x00 ")
}

// LookupTransferSyntax maps a Transfer Syntax UID to its table entry.
func LookupTransferSyntax(uid string) (TransferSyntax, error) {
	uid = TrimUID(uid)
	ts, ok := transferSyntaxes[uid]
	if !ok {
		return TransferSyntax{}, errors.Wrapf(ErrUnsupportedTransferSyntax, "%q", uid)
	}
	return ts, nil
}

// ParseTransferSyntaxUID parses a transfer syntax uid and returns its byteorder
// and implicitVR/explicitVR type. e.g.
// 1.2.840.10008.1.2 returns (LittleEndian, ImplicitVR),
// 1.2.840.10008.1.2.4.50 returns (LittleEndian, ExplicitVR).
func ParseTransferSyntaxUID(uid string) (byteorder binary.ByteOrder, implicit IsImplicitVR, err error) {
	ts, err := LookupTransferSyntax(uid)
	if err != nil {
		return nil, UnknownVR, err
	}
	return ts.ByteOrder, ts.Implicit, nil
}
