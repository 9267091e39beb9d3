// Package classfile decodes the JVM class file binary format (JVMS §4)
// far enough to recover the facts Shamash-ASM's extractor needs: the
// constant pool, class/interface/field/method declarations, and the
// bytecode instruction stream of each method's Code attribute.
//
// It intentionally does not implement everything JVMS §4 describes:
// generic signatures, StackMapTable, and most debug attributes are
// skipped once their length is known. Only the fields the extractor
// consumes are decoded; everything else is read past, not parsed.
package classfile

import (
	"encoding/binary"
	"fmt"
)

// reader is a forward-only cursor over class file bytes. Every read
// advances the cursor; an out-of-bounds read returns an error instead
// of panicking so a truncated class file degrades to ErrTruncated.
type reader struct {
	data []byte
	pos  int
}

// ErrTruncated is returned (wrapped) when a class file ends before its
// declared structure is fully read.
var ErrTruncated = fmt.Errorf("classfile: truncated")

func (r *reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return ErrTruncated
	}
	return nil
}

func (r *reader) u1() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u2() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u4() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("classfile: negative length %d", n)
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int) error {
	_, err := r.bytes(n)
	return err
}
