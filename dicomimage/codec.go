package dicomimage

import (
	"sync"

	"github.com/odincare/dicomancer/dicomuid"
)

// Codec decompresses the fragments of one encapsulated frame. It returns the
// native little endian frame and its geometry, which may differ from the
// input (a JPEG codec hands back RGB for YCbCr input).
type Codec interface {
	Decode(data []byte, g Geometry) ([]byte, Geometry, error)
}

var (
	codecMu sync.RWMutex
	codecs  = map[string]Codec{
		dicomuid.RLELossless:       rleCodec{},
		dicomuid.JPEGBaseline8Bit:  jpegCodec{},
		dicomuid.JPEGExtended12Bit: jpegCodec{},
	}
)

// RegisterCodec installs c for a transfer syntax UID, replacing any codec
// registered before.
func RegisterCodec(transferSyntaxUID string, c Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	codecs[transferSyntaxUID] = c
}

// LookupCodec returns the codec for a transfer syntax UID.
func LookupCodec(transferSyntaxUID string) (Codec, bool) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	c, ok := codecs[transferSyntaxUID]
	return c, ok
}
