package storageview

import (
	"bufio"
	"encoding/binary"
	"io"
	"unsafe"

	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/metainfo"
)

// ElementSize returns the fixed per-element byte width for v's TypeID, or
// -1 for String (variable-width, see the length-prefixed encoding used by
// WriteTo/ReadFrom below).
func (v View) ElementSize() int {
	switch v.Type {
	case metainfo.Boolean:
		return 1
	case metainfo.Int32, metainfo.Float32:
		return 4
	case metainfo.Int64, metainfo.Float64:
		return 8
	case metainfo.String:
		return -1
	default:
		return 0
	}
}

// rawBytes returns a zero-copy []byte view over the fixed-width backing
// slice segment [offset, offset+length), in the machine's native byte
// order. This is the only use of unsafe in the package: every fixed-width
// Go slice type here has a stable, documented in-memory layout.
func (v View) rawBytes(offset, length int64) []byte {
	switch v.Type {
	case metainfo.Boolean:
		s := v.boolData[offset : offset+length]
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s))
	case metainfo.Int32:
		s := v.i32Data[offset : offset+length]
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	case metainfo.Int64:
		s := v.i64Data[offset : offset+length]
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	case metainfo.Float32:
		s := v.f32Data[offset : offset+length]
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	case metainfo.Float64:
		s := v.f64Data[offset : offset+length]
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	default:
		return nil
	}
}

// WriteTo streams v's elements, in logical order, to w. Numeric
// views use VisitRuns to issue one write per coalesced contiguous span;
// String views are length-prefixed per element so the stream is
// self-delimiting and round-trips byte-for-byte.
func (v View) WriteTo(w io.Writer) (int64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	var written int64
	var writeErr error

	if v.Type == metainfo.String {
		var lenBuf [binary.MaxVarintLen64]byte
		v.visit(func(offset int64) {
			if writeErr != nil {
				return
			}
			s := v.strData[offset]
			n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
			if _, err := bw.Write(lenBuf[:n]); err != nil {
				writeErr = err
				return
			}
			if _, err := bw.WriteString(s); err != nil {
				writeErr = err
				return
			}
			written += int64(n) + int64(len(s))
		})
	} else {
		v.VisitRuns(func(r run) {
			if writeErr != nil {
				return
			}
			chunk := v.rawBytes(r.Offset, r.Len)
			n, err := bw.Write(chunk)
			written += int64(n)
			if err != nil {
				writeErr = err
			}
		})
	}
	if writeErr != nil {
		return written, errs.Wrap(errs.ArchiveIOError, "writing storage view", writeErr)
	}
	if err := bw.Flush(); err != nil {
		return written, errs.Wrap(errs.ArchiveIOError, "flushing storage view", err)
	}
	return written, nil
}

// ReadFrom fills v's elements, in logical order, from r. It is the
// inverse of WriteTo and expects the exact stream WriteTo would have
// produced for a view with the same TypeID and dims.
func (v View) ReadFrom(r io.Reader) (int64, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	br := bufio.NewReader(r)
	var readN int64
	var readErr error

	if v.Type == metainfo.String {
		v.visit(func(offset int64) {
			if readErr != nil {
				return
			}
			n, err := binary.ReadUvarint(br)
			if err != nil {
				readErr = err
				return
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(br, buf); err != nil {
				readErr = err
				return
			}
			v.strData[offset] = string(buf)
			readN += int64(len(buf))
		})
	} else {
		v.VisitRuns(func(r run) {
			if readErr != nil {
				return
			}
			dst := v.rawBytes(r.Offset, r.Len)
			n, err := io.ReadFull(br, dst)
			readN += int64(n)
			if err != nil {
				readErr = err
			}
		})
	}
	if readErr != nil {
		return readN, errs.Wrap(errs.ArchiveIOError, "reading storage view", readErr)
	}
	return readN, nil
}
