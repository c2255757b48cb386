package dicom_test

import (
	"io/fs"
	"testing"

	dicom "github.com/odincare/dicomancer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.Wrap(dicom.ErrNotADicomFile, "x"), "not a DICOM file"},
		{errors.Wrap(dicom.ErrUnsupportedTransferSyntax, `"1.2.3"`), "unsupported transfer syntax"},
		{dicom.ErrNoPixelData, "no image"},
		{errors.Wrap(dicom.ErrIncompleteImageMetadata, "Rows"), "incomplete image metadata"},
		{dicom.ErrUnsupportedPixelCodec, "unsupported codec"},
		{&fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, "permission denied"},
		{&dicom.PartialParseError{Offset: 10, Cause: dicom.ErrMaxNestingExceeded}, "partially parsed: sequences nested too deeply"},
		{errors.Wrap(errors.New("boom"), "context"), "boom"},
	} {
		assert.Equal(t, tc.want, dicom.Reason(tc.err))
	}
}

func TestPartialParseError(t *testing.T) {
	cause := errors.Wrap(dicom.ErrTruncatedStream, "PixelData")
	var err error = &dicom.PartialParseError{Offset: 42, Cause: cause}
	assert.True(t, errors.Is(err, dicom.ErrPartialParse))
	assert.True(t, errors.Is(err, dicom.ErrTruncatedStream))
	assert.False(t, errors.Is(err, dicom.ErrNotADicomFile))
	assert.Contains(t, err.Error(), "offset 42")
}
