package dicomimage

import (
	dicom "github.com/odincare/dicomancer"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/pkg/errors"
)

// Palette is a PALETTE COLOR lookup table reduced to 8 bits per entry,
// PS3.3 C.7.6.3.1.5.
type Palette struct {
	// First is the sample value mapped to entry 0.
	First            int
	Red, Green, Blue []uint8
}

// Lookup maps a sample to RGB. Samples outside the table clamp to its ends.
func (p *Palette) Lookup(sample int64) (r, g, b uint8) {
	i := sample - int64(p.First)
	return entry(p.Red, i), entry(p.Green, i), entry(p.Blue, i)
}

// entry 按通道单独截断, 空表返回 0
func entry(lut []uint8, i int64) uint8 {
	if len(lut) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= int64(len(lut)) {
		i = int64(len(lut)) - 1
	}
	return lut[i]
}

// ReadPalette reads the three LUT descriptors and data elements of ds.
func ReadPalette(ds *dicom.DataSet) (*Palette, error) {
	p := &Palette{}
	channels := []struct {
		descriptor, data dicomtag.Tag
		dst              *[]uint8
	}{
		{dicomtag.RedPaletteColorLookupTableDescriptor, dicomtag.RedPaletteColorLookupTableData, &p.Red},
		{dicomtag.GreenPaletteColorLookupTableDescriptor, dicomtag.GreenPaletteColorLookupTableData, &p.Green},
		{dicomtag.BluePaletteColorLookupTableDescriptor, dicomtag.BluePaletteColorLookupTableData, &p.Blue},
	}
	bo := ds.TransferSyntax.ByteOrder
	var redEntries int
	for i, ch := range channels {
		descElem, err := ds.FindElementByTag(ch.descriptor)
		if err != nil {
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "missing %s", dicomtag.Alias(ch.descriptor))
		}
		desc, err := descElem.GetInts()
		if err != nil || len(desc) != 3 {
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "malformed %s", dicomtag.Alias(ch.descriptor))
		}
		// Entry count 0 means 65536; the first mapped value may be stored
		// as US or SS.
		entries := int(uint16(desc[0]))
		if entries == 0 {
			entries = 1 << 16
		}
		// All three tables must index the same sample range.
		if i == 0 {
			redEntries, p.First = entries, int(desc[1])
		} else if entries != redEntries || int(desc[1]) != p.First {
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "%s describes %d entries from %d, red has %d from %d",
				dicomtag.Alias(ch.descriptor), entries, desc[1], redEntries, p.First)
		}
		bits := int(desc[2])

		dataElem, err := ds.FindElementByTag(ch.data)
		if err != nil {
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "missing %s", dicomtag.Alias(ch.data))
		}
		raw := dataElem.Value.Bytes
		lut := make([]uint8, entries)
		switch {
		case bits <= 8 && len(raw) >= 2*entries:
			// 8 bit entries padded to 16 bit words.
			for j := range lut {
				lut[j] = uint8(bo.Uint16(raw[2*j:]))
			}
		case bits <= 8 && len(raw) >= entries:
			copy(lut, raw)
		case len(raw) >= 2*entries:
			for j := range lut {
				lut[j] = uint8(bo.Uint16(raw[2*j:]) >> 8)
			}
		default:
			return nil, errors.Wrapf(dicom.ErrIncompleteImageMetadata, "%s holds %d bytes for %d entries",
				dicomtag.Alias(ch.data), len(raw), entries)
		}
		*ch.dst = lut
	}
	return p, nil
}
