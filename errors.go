package dicom

import (
	"fmt"
	"os"

	"github.com/odincare/dicomancer/dicomio"
	"github.com/pkg/errors"
)

var (
	// ErrNotADicomFile 前言或"DICM"标记不存在
	ErrNotADicomFile = errors.New("not a DICOM file")
	// ErrUnsupportedTransferSyntax is returned for transfer syntaxes outside the supported table.
	ErrUnsupportedTransferSyntax = dicomio.ErrUnsupportedTransferSyntax
	// ErrTruncatedStream is returned when an element asks for more bytes than remain.
	ErrTruncatedStream = dicomio.ErrTruncatedStream
	// ErrMaxNestingExceeded is returned when sequences nest deeper than ReadOptions.MaxNestingDepth.
	ErrMaxNestingExceeded = errors.New("maximum sequence nesting depth exceeded")
	// ErrPartialParse marks a data set whose tail could not be decoded.
	ErrPartialParse = errors.New("partial parse")
	// ErrNotFound is returned by lookups that miss.
	ErrNotFound = errors.New("element not found")

	// ErrNoPixelData is returned when the data set has no PixelData element.
	ErrNoPixelData = errors.New("no pixel data")
	// ErrIncompleteImageMetadata is returned when geometry attributes are missing.
	ErrIncompleteImageMetadata = errors.New("incomplete image metadata")
	// ErrUnsupportedPixelCodec is returned for encapsulated pixel data without a decoder.
	ErrUnsupportedPixelCodec = errors.New("unsupported pixel codec")
)

// PartialParseError is returned together with a usable DataSet when decoding
// had to stop before the end of the stream. errors.Is matches both
// ErrPartialParse and the underlying cause.
type PartialParseError struct {
	// Offset of the element that could not be decoded, relative to the start
	// of the data set body.
	Offset int64
	Cause  error
}

func (e *PartialParseError) Error() string {
	return fmt.Sprintf("partial parse at offset %d: %v", e.Offset, e.Cause)
}

func (e *PartialParseError) Unwrap() error { return e.Cause }

func (e *PartialParseError) Is(target error) bool { return target == ErrPartialParse }

// Reason 返回文件列表中显示的简短诊断字符串
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var partial *PartialParseError
	if errors.As(err, &partial) {
		return "partially parsed: " + Reason(partial.Cause)
	}
	switch {
	case errors.Is(err, ErrNotADicomFile):
		return "not a DICOM file"
	case errors.Is(err, ErrUnsupportedTransferSyntax):
		return "unsupported transfer syntax"
	case errors.Is(err, ErrMaxNestingExceeded):
		return "sequences nested too deeply"
	case errors.Is(err, ErrTruncatedStream):
		return "truncated file"
	case errors.Is(err, ErrNoPixelData):
		return "no image"
	case errors.Is(err, ErrIncompleteImageMetadata):
		return "incomplete image metadata"
	case errors.Is(err, ErrUnsupportedPixelCodec):
		return "unsupported codec"
	case errors.Is(err, os.ErrNotExist):
		return "file not found"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	}
	return errors.Cause(err).Error()
}
