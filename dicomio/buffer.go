// Package dicomio provides utility functions for encoding and decoding
// low-level DICOM data types, such as integers and strings.
package dicomio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
)

// ErrTruncatedStream is the root cause of every read that asks for more
// bytes than remain before the current limit.
var ErrTruncatedStream = errors.New("truncated stream")

// IsImplicitVR defines whether a 2-character VR tag is emitted with each
// data element.
type IsImplicitVR int

const (
	// ImplicitVR 编码一个没有VR tag的data element
	// 从dicom standard静态页面(dicomtag) 来读取 tag->VR的对应
	ImplicitVR IsImplicitVR = iota

	// ExplicitVR 保存了2比特VR value inline w/ a data element
	ExplicitVR

	// UnknownVR is to be used when you never encode or decode DataElement.
	UnknownVR
)

type transferSyntaxStackEntry struct {
	byteorder binary.ByteOrder
	implicit  IsImplicitVR
}

type stackEntry struct {
	limit int64
	err   error
}

// Decoder用来解码low-level的dicom data 类型（types）.
// It is a cursor over an in-memory buffer: reads are bounds checked, never
// go past the buffer end, and only move forward except through Reset.
type Decoder struct {
	buf       []byte
	err       error
	byteorder binary.ByteOrder

	// “implicit”不是由decoder内部使用，是让decoder的使用者可以看见当前的transfer syntax
	implicit IsImplicitVR

	// 可以读进的最大偏移
	limit int64

	// 当前偏移
	pos int64

	// 将dicom文件的原始数据解码为utf-8. Cf p3.5 6.1.2.1
	codingSystem CodingSystem

	// 旧transfer syntax栈，由{push, pop}TransferSyntax使用
	oldTransferSyntaxes []transferSyntaxStackEntry
	// 旧limit栈，由{push, pop}Limit使用, limits以降序存储
	stateStack []stackEntry
}

// NewBytesDecoder 创建一个decoder来读取 data.
func NewBytesDecoder(data []byte, byteorder binary.ByteOrder, implicit IsImplicitVR) *Decoder {
	return &Decoder{
		buf:          data,
		byteorder:    byteorder,
		implicit:     implicit,
		limit:        int64(len(data)),
		codingSystem: DefaultCodingSystem(),
	}
}

// NewBytesDecoderWithTransferSyntax与NewBytesDecoder相似，
// 但需要一个transfer syntax UID 而不是一对<byteorder, IsImplicitVR>
func NewBytesDecoderWithTransferSyntax(data []byte, transferSyntaxUID string) *Decoder {
	endian, implicit, err := ParseTransferSyntaxUID(transferSyntaxUID)
	if err == nil {
		return NewBytesDecoder(data, endian, implicit)
	}
	d := NewBytesDecoder(data, binary.LittleEndian, ExplicitVR)
	d.SetError(err)
	return d
}

// SetError 将之后Error() 或 Finish() call的错误设为已上报（reported）
// 要求: err != nil
func (d *Decoder) SetError(err error) {
	if err != nil && d.err == nil {
		d.err = errors.WithMessagef(err, "file offset %d", d.pos)
	}
}

// SetErrorf 与 SetError相似，但需要一个可打印的string
func (d *Decoder) SetErrorf(format string, args ...interface{}) {
	d.SetError(fmt.Errorf(format, args...))
}

// TransferSyntax 返回目前的transfer syntax
func (d *Decoder) TransferSyntax() (byteorder binary.ByteOrder, implicit IsImplicitVR) {
	return d.byteorder, d.implicit
}

// ByteOrder returns the byte order currently in effect.
func (d *Decoder) ByteOrder() binary.ByteOrder {
	return d.byteorder
}

// PushTransferSyntax() 暂时改变编码格式
// PopTransferSyntax() 恢复旧的编码格式
func (d *Decoder) PushTransferSyntax(byteorder binary.ByteOrder, implicit IsImplicitVR) {
	d.oldTransferSyntaxes = append(d.oldTransferSyntaxes, transferSyntaxStackEntry{d.byteorder, d.implicit})
	d.byteorder = byteorder
	d.implicit = implicit
}

// PopTransferSyntax 在最后一次调用PushTransferSyntax前恢复编码方式
func (d *Decoder) PopTransferSyntax() {
	e := d.oldTransferSyntaxes[len(d.oldTransferSyntaxes)-1]
	d.byteorder = e.byteorder
	d.implicit = e.implicit
	d.oldTransferSyntaxes = d.oldTransferSyntaxes[:len(d.oldTransferSyntaxes)-1]
}

// SetCodingSystem overrides the default (ISO-8859-1) decoder used when
// converting a []byte to a string.
func (d *Decoder) SetCodingSystem(cs CodingSystem) {
	d.codingSystem = cs
}

// CodingSystem returns the coding system currently in effect.
func (d *Decoder) CodingSystem() CodingSystem {
	return d.codingSystem
}

// PushLimit 暂时重写缓冲尾(end of buffer)和清除d.err
// PopLimit 会恢复旧的limit和error
//
// 注意：新的limit必须比当前的limit小
func (d *Decoder) PushLimit(bytes int64) {
	newLimit := d.pos + bytes
	if bytes < 0 || newLimit > d.limit {
		d.SetError(errors.Wrapf(ErrTruncatedStream, "trying to read %d bytes beyond buffer end", newLimit-d.limit))
		newLimit = d.pos
	}
	d.stateStack = append(d.stateStack, stackEntry{limit: d.limit, err: d.err})
	d.limit = newLimit
	d.err = nil
}

// PopLimit 恢复由PushLimit覆盖的limit
func (d *Decoder) PopLimit() {
	if d.pos < d.limit {
		// d.pos < d.limit iff parse error happened and the caller didn't fully
		// consume the input. Skip over the unparsable part so decoding resumes
		// at the boundary the declared length promised.
		d.pos = d.limit
	}
	last := len(d.stateStack) - 1
	d.limit = d.stateStack[last].limit
	if d.stateStack[last].err != nil {
		d.err = d.stateStack[last].err
	}
	d.stateStack = d.stateStack[:last]
}

// Error returns an error encountered so far.
func (d *Decoder) Error() error { return d.err }

// Finish()必须在使用decoder之后用
// 会返回在运行decoder中遇到的任何错误
// 如果有data无法被处理 也会返回一个错误
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if !d.EOF() {
		return errors.Errorf("decoder found %d bytes of junk at offset %d", d.Len(), d.pos)
	}
	return nil
}

// EOF 检查是否没有可读数据了
func (d *Decoder) EOF() bool {
	return d.err != nil || d.pos >= d.limit
}

// BytesRead returns the current offset into the buffer.
func (d *Decoder) BytesRead() int64 { return d.pos }

// Len 返回 当前limit之前剩余的bytes数
func (d *Decoder) Len() int64 {
	if d.pos >= d.limit {
		return 0
	}
	return d.limit - d.pos
}

// Bookmark returns the current offset for a later Reset.
func (d *Decoder) Bookmark() int64 { return d.pos }

// Reset moves the cursor back to a bookmark taken inside the current limit
// and clears the error, so the caller can retry decoding from there.
func (d *Decoder) Reset(mark int64) {
	DoAssert(mark >= 0 && mark <= d.pos, "reset to ", mark, " from ", d.pos)
	d.pos = mark
	d.err = nil
}

// take returns the next n bytes and advances, or sets a truncation error.
func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.Len() < int64(n) {
		d.SetError(errors.Wrapf(ErrTruncatedStream, "requested %d, available %d", n, d.Len()))
		return nil
	}
	v := d.buf[d.pos : d.pos+int64(n) : d.pos+int64(n)]
	d.pos += int64(n)
	return v
}

// Peek returns the next n bytes without advancing, or nil if fewer remain.
func (d *Decoder) Peek(n int) []byte {
	if d.err != nil || n < 0 || d.Len() < int64(n) {
		return nil
	}
	return d.buf[d.pos : d.pos+int64(n) : d.pos+int64(n)]
}

// ReadByte reads a single byte from the buffer. On EOF, it returns a junk
// value, and sets an error to be returned by Error() or Finish().
func (d *Decoder) ReadByte() (v byte) {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *Decoder) ReadUInt16() (v uint16) {
	if b := d.take(2); b != nil {
		v = d.byteorder.Uint16(b)
	}
	return v
}

func (d *Decoder) ReadInt16() (v int16) {
	return int16(d.ReadUInt16())
}

func (d *Decoder) ReadUInt32() (v uint32) {
	if b := d.take(4); b != nil {
		v = d.byteorder.Uint32(b)
	}
	return v
}

func (d *Decoder) ReadInt32() (v int32) {
	return int32(d.ReadUInt32())
}

func (d *Decoder) ReadUInt64() (v uint64) {
	if b := d.take(8); b != nil {
		v = d.byteorder.Uint64(b)
	}
	return v
}

func (d *Decoder) ReadInt64() (v int64) {
	return int64(d.ReadUInt64())
}

func (d *Decoder) ReadFloat32() (v float32) {
	return math.Float32frombits(d.ReadUInt32())
}

func (d *Decoder) ReadFloat64() (v float64) {
	return math.Float64frombits(d.ReadUInt64())
}

// DecodeString converts raw bytes with the given decoder. A nil decoder
// treats the bytes as UTF-8.
func DecodeString(sd *encoding.Decoder, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if sd == nil {
		return string(raw), nil
	}
	out, err := sd.Bytes(raw)
	if err != nil {
		return string(raw), err
	}
	return string(out), nil
}

func internalReadString(d *Decoder, sd *encoding.Decoder, length int) string {
	raw := d.ReadBytes(length)
	s, err := DecodeString(sd, raw)
	if err != nil {
		d.SetError(err)
	}
	return s
}

// ReadStringWithCodingSystem reads length bytes and decodes them with one of
// the three decoders of the current coding system.
func (d *Decoder) ReadStringWithCodingSystem(csType CodingSystemType, length int) string {
	var sd *encoding.Decoder
	switch csType {
	case AlphabeticCodingSystem:
		sd = d.codingSystem.Alphabetic
	case IdeographicCodingSystem:
		sd = d.codingSystem.Ideographic
	case PhoneticCodingSystem:
		sd = d.codingSystem.Phonetic
	default:
		panic(csType)
	}
	return internalReadString(d, sd, length)
}

// ReadString reads length bytes using the ideographic decoder.
func (d *Decoder) ReadString(length int) string {
	return internalReadString(d, d.codingSystem.Ideographic, length)
}

// ReadBytes returns the next length bytes. The slice aliases the decoder's
// buffer and has its capacity capped, so appending to it never clobbers
// following data.
func (d *Decoder) ReadBytes(length int) []byte {
	return d.take(length)
}

// Skip advances length bytes.
func (d *Decoder) Skip(length int) {
	d.take(length)
}

// Encoder is a helper class for encoding low-level DICOM data types. It
// writes into an in-memory buffer retrieved with Bytes.
type Encoder struct {
	err error

	out *bytes.Buffer

	byteorder binary.ByteOrder

	// implicit不是内部方法 而是给user查看当前是implicit的transfer syntax
	implicit IsImplicitVR

	// Stack of old transfer syntaxes. {Push, Pop} TransferSyntax使用.
	oldTransferSyntaxes []transferSyntaxStackEntry
}

// NewBytesEncoder创建一个新的encoder，数据会写入缓冲区
// 可以通过Bytes（）来获取
func NewBytesEncoder(byteorder binary.ByteOrder, implicit IsImplicitVR) *Encoder {
	return &Encoder{
		out:       &bytes.Buffer{},
		byteorder: byteorder,
		implicit:  implicit,
	}
}

// NewBytesEncoderWithTransferSyntax 与NewBytesEncoder相似，但需要一个transfer syntax UID
func NewBytesEncoderWithTransferSyntax(transferSyntaxUID string) *Encoder {
	endian, implicit, err := ParseTransferSyntaxUID(transferSyntaxUID)
	if err == nil {
		return NewBytesEncoder(endian, implicit)
	}
	e := NewBytesEncoder(binary.LittleEndian, ExplicitVR)
	e.SetError(err)
	return e
}

// TransferSyntax returns the current transfer syntax
func (e *Encoder) TransferSyntax() (binary.ByteOrder, IsImplicitVR) {
	return e.byteorder, e.implicit
}

// PushTransferSyntax() 暂时改变编码格式
// PopTransferSyntax() 来恢复
func (e *Encoder) PushTransferSyntax(byteorder binary.ByteOrder, implicit IsImplicitVR) {
	e.oldTransferSyntaxes = append(e.oldTransferSyntaxes,
		transferSyntaxStackEntry{e.byteorder, e.implicit})
	e.byteorder = byteorder
	e.implicit = implicit
}

// PopTransferSyntax 与PushTransferSyntax对应
func (e *Encoder) PopTransferSyntax() {
	ts := e.oldTransferSyntaxes[len(e.oldTransferSyntaxes)-1]
	e.byteorder = ts.byteorder
	e.implicit = ts.implicit
	e.oldTransferSyntaxes = e.oldTransferSyntaxes[:len(e.oldTransferSyntaxes)-1]
}

// SetError sets the error to be reported by future Error() calls.
func (e *Encoder) SetError(err error) {
	if err != nil && e.err == nil {
		e.err = err
	}
}

// SetErrorf is similar to SetError, but takes a printf format string
func (e *Encoder) SetErrorf(format string, args ...interface{}) {
	e.SetError(fmt.Errorf(format, args...))
}

// Error 返回一个由SetError设置的error，如果SetError没有被使用，则返回nil
func (e *Encoder) Error() error {
	return e.err
}

// Bytes returns the encoded data
//
// 须知: e.Error() == nil
func (e *Encoder) Bytes() []byte {
	DoAssert(len(e.oldTransferSyntaxes) == 0)
	if e.err != nil {
		logrus.Panic(e.err)
	}
	return e.out.Bytes()
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return e.out.Len()
}

func (e *Encoder) WriteByte(v byte) {
	e.out.WriteByte(v)
}

func (e *Encoder) WriteUInt16(v uint16) {
	var b [2]byte
	e.byteorder.PutUint16(b[:], v)
	e.out.Write(b[:])
}

func (e *Encoder) WriteUInt32(v uint32) {
	var b [4]byte
	e.byteorder.PutUint32(b[:], v)
	e.out.Write(b[:])
}

func (e *Encoder) WriteUInt64(v uint64) {
	var b [8]byte
	e.byteorder.PutUint64(b[:], v)
	e.out.Write(b[:])
}

func (e *Encoder) WriteInt16(v int16) {
	e.WriteUInt16(uint16(v))
}

func (e *Encoder) WriteInt32(v int32) {
	e.WriteUInt32(uint32(v))
}

func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUInt32(math.Float32bits(v))
}

func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUInt64(math.Float64bits(v))
}

// WriteString writes the string, without any length prefix or padding.
func (e *Encoder) WriteString(v string) {
	e.out.WriteString(v)
}

// WriteZeros encodes an array of zero bytes.
func (e *Encoder) WriteZeros(n int) {
	e.out.Write(make([]byte, n))
}

// WriteBytes copies the given data to output.
func (e *Encoder) WriteBytes(v []byte) {
	e.out.Write(v)
}

// DoAssert panics through logrus when condition is false.
func DoAssert(condition bool, values ...interface{}) {
	if !condition {
		var s string
		for _, value := range values {
			s += fmt.Sprintf("%v", value)
		}
		logrus.Panic(s)
	}
}
