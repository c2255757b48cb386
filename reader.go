package dicom

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/odincare/dicomancer/dicomio"
	"github.com/odincare/dicomancer/dicomlog"
	"github.com/odincare/dicomancer/dicomtag"
	"github.com/pkg/errors"
)

// ReadOptions定义DataSets和Element的读取格式
type ReadOptions struct {
	// DropPixelData会让ReadDataSet在PixelData(bulk image)处停止读取
	DropPixelData bool

	// ReturnTags 是一系列tag白名单. nil 表示返回所有tag
	ReturnTags []dicomtag.Tag

	// StopAtTag 使程序在遇到 tag >= StopAtTag 的顶层element时停止读取
	StopAtTag *dicomtag.Tag

	// MaxNestingDepth bounds sequence nesting. Zero means DefaultMaxNestingDepth.
	MaxNestingDepth int
}

// DefaultMaxNestingDepth is the sequence nesting bound used when
// ReadOptions.MaxNestingDepth is zero.
const DefaultMaxNestingDepth = 64

// errStopReading 让 caller 停止读取input, 由 DropPixelData 和 StopAtTag 触发
var errStopReading = errors.New("stop reading")

type reader struct {
	d        *dicomio.Decoder
	ds       *DataSet
	opts     ReadOptions
	maxDepth int
}

func newReader(d *dicomio.Decoder, ds *DataSet, opts ReadOptions) *reader {
	maxDepth := opts.MaxNestingDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}
	return &reader{d: d, ds: ds, opts: opts, maxDepth: maxDepth}
}

// ReadDataSet parses a complete DICOM Part 10 file held in memory.
//
// File-level failures (ErrNotADicomFile, ErrUnsupportedTransferSyntax, a
// truncated meta group) return a nil DataSet. When the body can only be
// decoded up to some point, the elements read so far are returned together
// with a *PartialParseError.
func ReadDataSet(data []byte, options ReadOptions) (*DataSet, error) {
	ds := newDataSet()
	d := dicomio.NewBytesDecoder(data, binary.LittleEndian, dicomio.ExplicitVR)
	meta := parseFileHeader(newReader(d, ds, ReadOptions{}))
	if err := d.Error(); err != nil {
		return nil, err
	}
	for _, elem := range meta {
		ds.addMeta(elem)
	}

	ts, err := transferSyntaxOf(ds)
	if err != nil {
		return nil, err
	}
	ds.TransferSyntax = ts
	dicomlog.Event(dicomlog.LevelDebug, "dicom: file meta parsed", dicomlog.Fields{
		"transfer_syntax": ts.Name(),
		"meta_elements":   len(meta),
		"body_offset":     d.BytesRead(),
	})

	body := data[d.BytesRead():]
	var inflateErr error
	if ts.Deflated {
		body, inflateErr = inflate(body)
	}

	r := newReader(dicomio.NewBytesDecoder(body, ts.ByteOrder, ts.Implicit), ds, options)
	err = r.readBody()
	if err == nil && inflateErr != nil {
		err = &PartialParseError{Offset: int64(len(body)), Cause: inflateErr}
	}
	logParsed(ds, err)
	return ds, err
}

// ReadDataSetFromReader reads in to the end and parses the result.
func ReadDataSetFromReader(in io.Reader, options ReadOptions) (*DataSet, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return ReadDataSet(data, options)
}

// ReadDataSetFromFile 读取文件内容到 DataSet. 是一层ReadDataSet的包装
// 如果读取失败，会返回一个非空dataset和一个非空error，当出现错误时
// dataset会包含一部分可以读取的文件，error里会包含读取时的第一个错误
func ReadDataSetFromFile(path string, options ReadOptions) (*DataSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ReadDataSet(data, options)
}

func logParsed(ds *DataSet, err error) {
	warned := 0
	for _, elem := range ds.Elements {
		if elem.Warning != "" {
			warned++
			dicomlog.Event(dicomlog.LevelDebug, "dicom: element warning", dicomlog.Fields{
				"tag": dicomtag.DebugString(elem.Tag), "offset": elem.Offset, "warning": elem.Warning,
			})
		}
	}
	fields := dicomlog.Fields{
		"elements":        len(ds.Elements),
		"items":           ds.ItemCount(),
		"transfer_syntax": ds.TransferSyntax.Name(),
	}
	if warned > 0 {
		fields["warnings"] = warned
	}
	if err != nil {
		fields["error"] = err.Error()
		dicomlog.Warn("dicom: data set partially parsed", fields)
		return
	}
	dicomlog.Event(dicomlog.LevelInfo, "dicom: data set parsed", fields)
}

func inflate(body []byte) ([]byte, error) {
	zr := flate.NewReader(bytes.NewReader(body))
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return out, errors.Wrapf(ErrTruncatedStream, "inflating deflated body: %v", err)
	}
	return out, nil
}

func transferSyntaxOf(ds *DataSet) (dicomio.TransferSyntax, error) {
	elem, err := FindElementByTag(ds.Meta, dicomtag.TransferSyntaxUID)
	if err != nil {
		return dicomio.TransferSyntax{}, errors.Wrap(ErrUnsupportedTransferSyntax, "TransferSyntaxUID missing from file meta")
	}
	uid, err := elem.GetString()
	if err != nil {
		return dicomio.TransferSyntax{}, errors.Wrap(ErrUnsupportedTransferSyntax, err.Error())
	}
	return dicomio.LookupTransferSyntax(uid)
}

// ParseFileHeader从Dicom文件读取DICOM头和元数据(element的tag group == 2的)
// 报错会通过d.Error()传入
func ParseFileHeader(d *dicomio.Decoder) []*Element {
	return parseFileHeader(newReader(d, newDataSet(), ReadOptions{}))
}

func parseFileHeader(r *reader) []*Element {
	d := r.d
	d.PushTransferSyntax(binary.LittleEndian, dicomio.ExplicitVR)
	defer d.PopTransferSyntax()

	// 128 byte 前言 + "DICM"
	if magic := d.Peek(132); magic == nil || string(magic[128:]) != "DICM" {
		d.SetError(errors.Wrap(ErrNotADicomFile, "keyword 'DICM' not found in the header"))
		return nil
	}
	d.Skip(132)

	var metaElems []*Element
	readMeta := func() bool {
		elem, err := r.readElement(0)
		if err != nil {
			d.SetError(err)
			return false
		}
		if elem.Tag.Group != dicomtag.MetadataGroup {
			d.SetErrorf("non-meta element %s in file meta group", dicomtag.DebugString(elem.Tag))
			return false
		}
		metaElems = append(metaElems, elem)
		dicomlog.Vprintf(dicomlog.LevelTrace, "dicom.ParseFileHeader: Meta element: %v, pos %v", elem, d.BytesRead())
		return true
	}

	if peekTag(d, binary.LittleEndian) == dicomtag.FileMetaInformationGroupLength {
		// (0002, 0000) MetaElementGroupLength
		if !readMeta() {
			return nil
		}
		metaLength, err := metaElems[0].GetUInt32()
		if err != nil {
			d.SetErrorf("failed to read uint32 in MetaElementGroupLength: %v", err)
			return nil
		}
		if int64(metaLength) > d.Len() {
			d.SetError(errors.Wrapf(ErrTruncatedStream, "meta group length %d exceeds the %d remaining bytes", metaLength, d.Len()))
			return nil
		}
		d.PushLimit(int64(metaLength))
		for !d.EOF() && readMeta() {
		}
		d.PopLimit()
	} else {
		// Some writers omit the group length; the group ends at the first
		// non-meta tag.
		for d.Peek(4) != nil && peekTag(d, binary.LittleEndian).Group == dicomtag.MetadataGroup {
			if !readMeta() {
				break
			}
		}
	}
	if d.Error() == nil && len(metaElems) == 0 {
		d.SetError(errors.Wrap(ErrTruncatedStream, "no file meta elements"))
	}
	return metaElems
}

func peekTag(d *dicomio.Decoder, bo binary.ByteOrder) dicomtag.Tag {
	b := d.Peek(4)
	if b == nil {
		return dicomtag.Tag{}
	}
	return dicomtag.Tag{Group: bo.Uint16(b), Element: bo.Uint16(b[2:])}
}

func (r *reader) readBody() error {
	d := r.d
	for !d.EOF() {
		start := d.BytesRead()
		elem, err := r.readElement(0)
		if err == errStopReading {
			return nil
		}
		if elem != nil && r.wanted(elem.Tag) {
			r.ds.add(elem)
		}
		if err != nil {
			return &PartialParseError{Offset: start, Cause: err}
		}
		// 避免无限循环
		dicomio.DoAssert(d.BytesRead() > start, "no progress at offset ", start)
	}
	return nil
}

func (r *reader) wanted(tag dicomtag.Tag) bool {
	if r.opts.ReturnTags == nil {
		return true
	}
	for _, t := range r.opts.ReturnTags {
		if t == tag {
			return true
		}
	}
	return false
}

// readElement 读取一个DICOM data element.
//
// - 返回 (elem, nil) 读取成功, elem.Warning 可能非空
//
// - 返回 (nil, errStopReading) 如果 DropPixelData 或 StopAtTag 生效
//
// - 返回 (elem or nil, err) 如果读取无法继续; elem 保存了已读取的部分
func (r *reader) readElement(depth int) (*Element, error) {
	d := r.d
	start := d.Bookmark()
	tag := readTag(d)
	if err := d.Error(); err != nil {
		return nil, err
	}
	if depth == 0 {
		if tag == dicomtag.PixelData && r.opts.DropPixelData {
			return nil, errStopReading
		}
		if r.opts.StopAtTag != nil && tag.Compare(*r.opts.StopAtTag) >= 0 {
			return nil, errStopReading
		}
	}

	// 组为0xFFFE 的 elements组总是被编码为Implicit VR
	// DICOM 标准 PS3.5 - Section 7.5: "Nesting of Data Sets"
	var (
		vr      string
		vl      uint32
		warning string
	)
	_, implicit := d.TransferSyntax()
	switch {
	case tag.Group == ItemSeqGroup:
		vr, vl = "NA", d.ReadUInt32()
	case implicit == dicomio.ImplicitVR:
		vr, vl = readImplicit(d, tag)
	default:
		vr, vl, warning = readExplicit(d, tag)
	}
	if err := d.Error(); err != nil {
		return nil, err
	}

	elem := &Element{
		Tag:             tag,
		VR:              vr,
		Length:          vl,
		UndefinedLength: vl == UndefinedLength,
		Warning:         warning,
		Offset:          start,
	}
	if vl != UndefinedLength && vl%2 != 0 {
		elem.addWarning(fmt.Sprintf("odd length %d", vl))
	}

	var err error
	switch {
	case tag == dicomtag.PixelData && vl == UndefinedLength:
		err = r.readEncapsulatedPixelData(elem)
	case tag == dicomtag.PixelData:
		var raw []byte
		raw, err = r.readPayload(elem)
		elem.Value = Value{Kind: KindPixelData, Pixel: &PixelDataInfo{Native: raw}}
	case vr == "SQ" || (vr == "UN" && vl == UndefinedLength):
		err = r.readSequence(elem, depth)
	case tag == dicomtag.Item:
		elem.addWarning("item outside a sequence")
		err = r.readSequence(elem, depth)
	case tag == dicomtag.ItemDelimitationItem || tag == dicomtag.SequenceDelimitationItem:
		if depth == 0 {
			elem.addWarning("delimiter outside a sequence")
		}
		elem.Value = Value{Kind: KindEmpty}
	case vl == UndefinedLength:
		err = errors.Errorf("undefined length disallowed for VR=%s, tag %s", vr, dicomtag.DebugString(tag))
	default:
		var raw []byte
		raw, err = r.readPayload(elem)
		var w string
		elem.Value, w = InterpretValue(tag, vr, raw, d.ByteOrder(), d.CodingSystem())
		elem.addWarning(w)
		if tag == dicomtag.SpecificCharacterSet && err == nil {
			r.applyCharacterSet(elem)
		}
	}
	elem.Span = d.BytesRead() - start
	return elem, err
}

func (e *Element) addWarning(w string) {
	if w == "" {
		return
	}
	if e.Warning != "" {
		e.Warning += "; "
	}
	e.Warning += w
}

// readPayload reads the declared value bytes. When fewer remain, it keeps what
// is available and reports truncation.
func (r *reader) readPayload(elem *Element) ([]byte, error) {
	d := r.d
	if avail := d.Len(); int64(elem.Length) > avail {
		raw := d.ReadBytes(int(avail))
		elem.addWarning(fmt.Sprintf("value truncated: declared %d bytes, %d available", elem.Length, avail))
		return raw, errors.Wrapf(ErrTruncatedStream, "%s declares %d bytes, %d available",
			dicomtag.DebugString(elem.Tag), elem.Length, avail)
	}
	return d.ReadBytes(int(elem.Length)), nil
}

// applyCharacterSet 将剩余文件(或当前item)设为新的 []byte -> string decoder.
// SpecificCharacterSet 也许会出现在一个SQ item中, 其作用范围仅限于该item.
func (r *reader) applyCharacterSet(elem *Element) {
	names, _ := elem.GetStrings()
	cs, err := dicomio.ParseSpecificCharacterSet(names)
	if err != nil {
		elem.addWarning(err.Error())
	}
	r.d.SetCodingSystem(cs)
}

// readSequence decodes the items of a sequence, or of a stray item, into the
// arena.
//
// Format:
//
//	Sequence := ItemSet* SequenceDelimitationItem (undefined length)
//	Sequence := ItemSet*VL                         (defined length)
//	ItemSet := Item Any* ItemDelimitationItem (when Item.VL is undefined) or
//	           Item Any*N                     (when Item.VL has a defined value)
func (r *reader) readSequence(elem *Element, depth int) error {
	d := r.d
	if depth+1 > r.maxDepth {
		return errors.Wrapf(ErrMaxNestingExceeded, "%s at depth %d", dicomtag.DebugString(elem.Tag), depth+1)
	}
	if elem.VR == "UN" {
		// PS3.5 6.2.2: UN with undefined length is an implicit VR little
		// endian sequence.
		elem.VR = "SQ"
		elem.addWarning("UN with undefined length decoded as sequence")
		d.PushTransferSyntax(binary.LittleEndian, dicomio.ImplicitVR)
		defer d.PopTransferSyntax()
	}
	elem.Value = Value{Kind: KindSequence}

	if elem.Tag == dicomtag.Item {
		// A stray item: its own body is the single entry.
		d.Reset(elem.Offset)
		h, _, err := r.readItem(depth + 1)
		if err != nil {
			return err
		}
		elem.Value.Items = append(elem.Value.Items, h)
		return nil
	}

	if elem.UndefinedLength {
		for {
			if d.EOF() {
				return errors.Wrapf(ErrTruncatedStream, "sequence %s not terminated", dicomtag.DebugString(elem.Tag))
			}
			h, end, err := r.readItem(depth + 1)
			if err != nil {
				return err
			}
			if end {
				return nil
			}
			elem.Value.Items = append(elem.Value.Items, h)
		}
	}

	if int64(elem.Length) > d.Len() {
		raw, err := r.readPayload(elem)
		elem.Value = Value{Kind: KindBytes, Bytes: raw}
		return err
	}
	valueStart := d.Bookmark()
	arenaMark := len(r.ds.items)
	var failure error
	d.PushLimit(int64(elem.Length))
	for !d.EOF() {
		h, end, err := r.readItem(depth + 1)
		if err != nil {
			failure = err
			break
		}
		if !end {
			elem.Value.Items = append(elem.Value.Items, h)
		}
	}
	d.PopLimit()
	if failure == nil {
		return nil
	}
	if errors.Is(failure, ErrMaxNestingExceeded) {
		return failure
	}
	// The declared length still tells where the next element starts: keep
	// the payload as raw bytes and resynchronise there.
	r.ds.items = r.ds.items[:arenaMark]
	d.Reset(valueStart)
	elem.Value = Value{Kind: KindBytes, Bytes: d.ReadBytes(int(elem.Length))}
	elem.addWarning("sequence could not be decoded: " + failure.Error())
	return d.Error()
}

// readItem reads one item of a sequence. It returns end=true on
// SequenceDelimitationItem.
func (r *reader) readItem(depth int) (h ItemHandle, end bool, err error) {
	d := r.d
	start := d.Bookmark()
	tag := readTag(d)
	vl := d.ReadUInt32()
	if err := d.Error(); err != nil {
		return -1, false, err
	}
	if tag == dicomtag.SequenceDelimitationItem {
		if vl != 0 {
			dicomlog.Vprintf(dicomlog.LevelDebug, "dicom: SequenceDelimitationItem's VL != 0: %v", vl)
		}
		return -1, true, nil
	}
	if tag != dicomtag.Item {
		return -1, false, errors.Errorf("found non-Item element %s in sequence", dicomtag.DebugString(tag))
	}

	// 字符集在item结束后恢复
	saved := d.CodingSystem()
	defer d.SetCodingSystem(saved)

	it := Item{UndefinedLength: vl == UndefinedLength, Offset: start}
	if vl == UndefinedLength {
		// Format: Item Any* ItemDelimitationItem
		for {
			if d.EOF() {
				return -1, false, errors.Wrap(ErrTruncatedStream, "item not terminated")
			}
			elem, err := r.readElement(depth)
			if elem != nil && elem.Tag == dicomtag.ItemDelimitationItem && err == nil {
				break
			}
			if elem != nil {
				it.Elements = append(it.Elements, elem)
			}
			if err != nil {
				return -1, false, err
			}
		}
	} else {
		if int64(vl) > d.Len() {
			return -1, false, errors.Wrapf(ErrTruncatedStream, "item declares %d bytes, %d available", vl, d.Len())
		}
		// Sequence of arbitrary elements, for the total of "vl" bytes.
		d.PushLimit(int64(vl))
		for !d.EOF() {
			elem, err := r.readElement(depth)
			if err != nil {
				d.PopLimit()
				return -1, false, err
			}
			if elem.Tag != dicomtag.ItemDelimitationItem {
				it.Elements = append(it.Elements, elem)
			}
		}
		d.PopLimit()
	}
	it.Span = d.BytesRead() - start
	return r.ds.newItem(it), false, nil
}

// readEncapsulatedPixelData reads P3.5 A.4 encapsulated pixel data:
//
//	Item(BasicOffsetTable) Item(Fragment0) ... Item(FragmentM) SequenceDelimitationItem
//
// Item(BasicOffsetTable) encodes one uint32 per frame: the byte offset of the
// frame's first fragment, relative to the first fragment item.
func (r *reader) readEncapsulatedPixelData(elem *Element) error {
	d := r.d
	info := &PixelDataInfo{Encapsulated: true}
	elem.Value = Value{Kind: KindPixelData, Pixel: info}

	offsets, err := readBasicOffsetTable(d)
	if err != nil {
		return err
	}
	info.Offsets = offsets
	for {
		if d.EOF() {
			return errors.Wrap(ErrTruncatedStream, "pixel data not terminated")
		}
		chunk, end, err := readRawItem(d)
		if err != nil {
			return err
		}
		if end {
			return nil
		}
		info.Fragments = append(info.Fragments, chunk)
	}
}

// readRawItem 读取一个Item object的数据，w/o 读取它们进DataElement.
// 它是用来读取 pixel data的
func readRawItem(d *dicomio.Decoder) ([]byte, bool, error) {
	tag := readTag(d)
	vl := d.ReadUInt32()
	if err := d.Error(); err != nil {
		return nil, false, err
	}
	if tag == dicomtag.SequenceDelimitationItem {
		return nil, true, nil
	}
	if tag != dicomtag.Item {
		return nil, false, errors.Errorf("expect Item in pixel data but found tag %s", dicomtag.DebugString(tag))
	}
	if vl == UndefinedLength {
		return nil, false, errors.New("expect defined-length item in pixel data")
	}
	if int64(vl) > d.Len() {
		return nil, false, errors.Wrapf(ErrTruncatedStream, "pixel data item declares %d bytes, %d available", vl, d.Len())
	}
	return d.ReadBytes(int(vl)), false, nil
}

// 读取 basic offset table。 这是PixelData内的第一个 embedded 对象
// P3.5 A.4 有更好的示例
func readBasicOffsetTable(d *dicomio.Decoder) ([]uint32, error) {
	data, end, err := readRawItem(d)
	if err != nil {
		return nil, err
	}
	if end {
		return nil, errors.New("basic offset table not found")
	}
	// item的值是uint32的序列
	sub := dicomio.NewBytesDecoder(data, d.ByteOrder(), dicomio.ImplicitVR)
	var offsets []uint32
	for sub.Len() >= 4 {
		offsets = append(offsets, sub.ReadUInt32())
	}
	return offsets, nil
}

func readTag(d *dicomio.Decoder) dicomtag.Tag {
	group := d.ReadUInt16()
	element := d.ReadUInt16()
	return dicomtag.Tag{Group: group, Element: element}
}

// 从DICOM字典中读取VR，VL是32比特无符号数字
func readImplicit(d *dicomio.Decoder, tag dicomtag.Tag) (string, uint32) {
	vr := "UN"
	if entry, err := dicomtag.Find(tag); err == nil {
		vr = entry.VR
	}
	return vr, d.ReadUInt32()
}

// VR由下两个连续的bytes代表, VL的宽度根据VR的值. PS3.5 7.1.2
// A VR that is not a known code means the writer switched to implicit
// encoding; the header is re-read that way.
func readExplicit(d *dicomio.Decoder, tag dicomtag.Tag) (vr string, vl uint32, warning string) {
	mark := d.Bookmark()
	raw := d.ReadBytes(2)
	if d.Error() != nil {
		return "", 0, ""
	}
	vr = string(raw)
	if !dicomtag.IsKnownVR(vr) {
		d.Reset(mark)
		vr, vl = readImplicit(d, tag)
		return vr, vl, fmt.Sprintf("invalid explicit VR %q, header read as implicit", raw)
	}
	if dicomtag.HasLongLength(vr) {
		d.Skip(2) // 忽略两个保留bytes (0000H)
		vl = d.ReadUInt32()
	} else {
		vl = uint32(d.ReadUInt16())
	}
	return vr, vl, ""
}
