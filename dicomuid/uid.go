// Package dicomuid lists the well-known UIDs of PS3.6 Annex A that this
// module needs to recognise: transfer syntaxes and a few storage SOP classes.
package dicomuid

import (
	"github.com/pkg/errors"
)

// UIDType 标识一个UID代表的是什么
type UIDType string

const (
	TypeTransferSyntax UIDType = "Transfer Syntax"
	TypeSOPClass       UIDType = "SOP Class"
)

// Transfer syntax UIDs.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
	JPEGBaseline8Bit               = "1.2.840.10008.1.2.4.50"
	JPEGExtended12Bit              = "1.2.840.10008.1.2.4.51"
	JPEGLossless                   = "1.2.840.10008.1.2.4.57"
	JPEGLosslessSV1                = "1.2.840.10008.1.2.4.70"
	JPEGLSLossless                 = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLossless             = "1.2.840.10008.1.2.4.81"
	JPEG2000Lossless               = "1.2.840.10008.1.2.4.90"
	JPEG2000                       = "1.2.840.10008.1.2.4.91"
	RLELossless                    = "1.2.840.10008.1.2.5"
)

// Storage SOP class UIDs.
const (
	CTImageStorage                  = "1.2.840.10008.5.1.4.1.1.2"
	MRImageStorage                  = "1.2.840.10008.5.1.4.1.1.4"
	SecondaryCaptureImageStorage    = "1.2.840.10008.5.1.4.1.1.7"
	UltrasoundImageStorage          = "1.2.840.10008.5.1.4.1.1.6.1"
	DigitalXRayImageStorage         = "1.2.840.10008.5.1.4.1.1.1.1"
	ComputedRadiographyImageStorage = "1.2.840.10008.5.1.4.1.1.1"
	BasicTextSRStorage              = "1.2.840.10008.5.1.4.1.1.88.11"
	EncapsulatedPDFStorage          = "1.2.840.10008.5.1.4.1.1.104.1"
	VerificationSOPClass            = "1.2.840.10008.1.1"
)

// UIDInfo describes one well-known UID.
type UIDInfo struct {
	UID  string
	Name string
	Type UIDType
}

// ErrUnknownUID is returned by Lookup for UIDs missing from the table.
var ErrUnknownUID = errors.New("unknown UID")

var uidDict = map[string]UIDInfo{}

func add(uid, name string, t UIDType) {
	uidDict[uid] = UIDInfo{UID: uid, Name: name, Type: t}
}

func init() {
	add(ImplicitVRLittleEndian, "Implicit VR Little Endian", TypeTransferSyntax)
	add(ExplicitVRLittleEndian, "Explicit VR Little Endian", TypeTransferSyntax)
	add(DeflatedExplicitVRLittleEndian, "Deflated Explicit VR Little Endian", TypeTransferSyntax)
	add(ExplicitVRBigEndian, "Explicit VR Big Endian", TypeTransferSyntax)
	add(JPEGBaseline8Bit, "JPEG Baseline (Process 1)", TypeTransferSyntax)
	add(JPEGExtended12Bit, "JPEG Extended (Process 2 & 4)", TypeTransferSyntax)
	add(JPEGLossless, "JPEG Lossless, Non-Hierarchical (Process 14)", TypeTransferSyntax)
	add(JPEGLosslessSV1, "JPEG Lossless, Non-Hierarchical, First-Order Prediction", TypeTransferSyntax)
	add(JPEGLSLossless, "JPEG-LS Lossless Image Compression", TypeTransferSyntax)
	add(JPEGLSNearLossless, "JPEG-LS Lossy (Near-Lossless) Image Compression", TypeTransferSyntax)
	add(JPEG2000Lossless, "JPEG 2000 Image Compression (Lossless Only)", TypeTransferSyntax)
	add(JPEG2000, "JPEG 2000 Image Compression", TypeTransferSyntax)
	add(RLELossless, "RLE Lossless", TypeTransferSyntax)

	add(CTImageStorage, "CT Image Storage", TypeSOPClass)
	add(MRImageStorage, "MR Image Storage", TypeSOPClass)
	add(SecondaryCaptureImageStorage, "Secondary Capture Image Storage", TypeSOPClass)
	add(UltrasoundImageStorage, "Ultrasound Image Storage", TypeSOPClass)
	add(DigitalXRayImageStorage, "Digital X-Ray Image Storage - For Presentation", TypeSOPClass)
	add(ComputedRadiographyImageStorage, "Computed Radiography Image Storage", TypeSOPClass)
	add(BasicTextSRStorage, "Basic Text SR Storage", TypeSOPClass)
	add(EncapsulatedPDFStorage, "Encapsulated PDF Storage", TypeSOPClass)
	add(VerificationSOPClass, "Verification SOP Class", TypeSOPClass)
}

// Lookup finds information about the given UID.
func Lookup(uid string) (UIDInfo, error) {
	e, ok := uidDict[uid]
	if !ok {
		return UIDInfo{}, errors.Wrapf(ErrUnknownUID, "%q", uid)
	}
	return e, nil
}

// UIDString returns a human-readable name for uid, or uid itself when it is
// not in the table.
func UIDString(uid string) string {
	if e, err := Lookup(uid); err == nil {
		return e.Name
	}
	return uid
}
