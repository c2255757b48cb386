package dicom

import (
	"strings"

	"github.com/odincare/dicomancer/dicomio"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/pkg/errors"
)

// Item is one entry of a sequence: a nested, ordered list of elements.
type Item struct {
	Elements        []*Element
	UndefinedLength bool
	Offset          int64
	Span            int64
}

// DataSet is the loss-free in-memory form of one parsed file. It is built by
// ReadDataSet and never mutated afterwards, so concurrent reads are safe.
type DataSet struct {
	// Meta holds the File Meta Information elements (Tag.Group==2).
	Meta []*Element
	// Elements holds the top-level body elements in stream order.
	Elements []*Element
	// TransferSyntax governs the body. Meta is always explicit VR little endian.
	TransferSyntax dicomio.TransferSyntax

	// items is the arena every sequence Value indexes into.
	items []Item
	byTag map[dicomtag.Tag]*Element
}

func newDataSet() *DataSet {
	return &DataSet{byTag: make(map[dicomtag.Tag]*Element)}
}

func (ds *DataSet) newItem(it Item) ItemHandle {
	ds.items = append(ds.items, it)
	return ItemHandle(len(ds.items) - 1)
}

func (ds *DataSet) addMeta(elem *Element) {
	ds.Meta = append(ds.Meta, elem)
	ds.index(elem)
}

func (ds *DataSet) add(elem *Element) {
	ds.Elements = append(ds.Elements, elem)
	ds.index(elem)
}

// index keeps the first occurrence of a tag.
func (ds *DataSet) index(elem *Element) {
	if _, ok := ds.byTag[elem.Tag]; !ok {
		ds.byTag[elem.Tag] = elem
	}
}

// Item returns the arena entry for h.
func (ds *DataSet) Item(h ItemHandle) (*Item, error) {
	if h < 0 || int(h) >= len(ds.items) {
		return nil, errors.Wrapf(ErrNotFound, "item handle %d", h)
	}
	return &ds.items[h], nil
}

// Items returns the items of a sequence element, in stream order.
func (ds *DataSet) Items(elem *Element) []*Item {
	if elem.Value.Kind != KindSequence {
		return nil
	}
	items := make([]*Item, 0, len(elem.Value.Items))
	for _, h := range elem.Value.Items {
		if it, err := ds.Item(h); err == nil {
			items = append(items, it)
		}
	}
	return items
}

// ItemCount is the number of sequence items across all nesting levels.
func (ds *DataSet) ItemCount() int {
	return len(ds.items)
}

// FindElementByTag finds an element from the dataset given its tag, such as
// Tag{0x0010, 0x0010}. Meta elements are searched too.
func (ds *DataSet) FindElementByTag(tag dicomtag.Tag) (*Element, error) {
	if elem, ok := ds.byTag[tag]; ok {
		return elem, nil
	}
	return nil, errors.Wrap(ErrNotFound, dicomtag.DebugString(tag))
}

// FindElementByName 寻找指定name的element, 如“PatientName”
func (ds *DataSet) FindElementByName(name string) (*Element, error) {
	t, err := dicomtag.FindByName(name)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "no dictionary entry named %q", name)
	}
	elem, err := ds.FindElementByTag(t.Tag)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "could not find element named %q in dicom file", name)
	}
	return elem, nil
}

// Text returns the first value of a string-valued element, trimmed, or
// false when the element is absent, empty or not textual.
func (ds *DataSet) Text(tag dicomtag.Tag) (string, bool) {
	elem, err := ds.FindElementByTag(tag)
	if err != nil {
		return "", false
	}
	values, err := elem.GetStrings()
	if err != nil || len(values) == 0 {
		return "", false
	}
	s := strings.TrimSpace(values[0])
	return s, s != ""
}

// FindElementByTag finds an element with the given Element.Tag in
// "elements" If not found, returns an error.
func FindElementByTag(elems []*Element, tag dicomtag.Tag) (*Element, error) {
	for _, elem := range elems {
		if elem.Tag == tag {
			return elem, nil
		}
	}
	return nil, errors.Wrap(ErrNotFound, dicomtag.DebugString(tag))
}

// FindElementByName finds an element with the given dictionary name in
// "elements". If not found, return an error.
func FindElementByName(elems []*Element, name string) (*Element, error) {
	t, err := dicomtag.FindByName(name)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "no dictionary entry named %q", name)
	}
	return FindElementByTag(elems, t.Tag)
}
