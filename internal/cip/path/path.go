// Package path builds CIP request paths (EPATH): the Class/Instance/
// Attribute/Element logical segments and the ANSI Extended Symbol
// segment used for Micro800 tag addressing.
package path

import (
	"encoding/binary"
	"fmt"
)

// Segment type bytes, as they appear on the wire.
const (
	SegmentClass8     byte = 0x20
	SegmentClass16    byte = 0x21
	SegmentInstance8  byte = 0x24
	SegmentInstance16 byte = 0x25
	SegmentAttribute8 byte = 0x30
	SegmentAttribute16 byte = 0x31
	SegmentElement8   byte = 0x28
	SegmentElement16  byte = 0x29
	SegmentSymbol     byte = 0x91
)

// MaxWords is the largest path length the single-byte path_size_words
// field of a CIP request can describe.
const MaxWords = 255

// Builder accumulates path bytes and reports their length in 16-bit
// words, padding to an even byte length as it goes.
type Builder struct {
	buf []byte
}

// New returns an empty path builder.
func New() *Builder {
	return &Builder{}
}

func logical8or16(b *Builder, seg8, seg16 byte, value uint32) {
	if value <= 0xFF {
		b.buf = append(b.buf, seg8, byte(value))
		return
	}
	word := make([]byte, 2)
	binary.LittleEndian.PutUint16(word, uint16(value))
	b.buf = append(b.buf, seg16, 0x00)
	b.buf = append(b.buf, word...)
}

// Class appends a Class logical segment, 8-bit or 16-bit depending on
// whether the class ID fits in a byte.
func (b *Builder) Class(id uint32) *Builder {
	logical8or16(b, SegmentClass8, SegmentClass16, id)
	return b
}

// Instance appends an Instance logical segment.
func (b *Builder) Instance(id uint32) *Builder {
	logical8or16(b, SegmentInstance8, SegmentInstance16, id)
	return b
}

// Attribute appends an Attribute logical segment.
func (b *Builder) Attribute(id uint32) *Builder {
	logical8or16(b, SegmentAttribute8, SegmentAttribute16, id)
	return b
}

// Element appends an element-index logical segment, used for array
// subscripts on symbolic tag paths.
func (b *Builder) Element(index uint32) *Builder {
	logical8or16(b, SegmentElement8, SegmentElement16, index)
	return b
}

// Symbol appends an ANSI Extended Symbol segment for one dotted
// component of a tag name: 0x91, a length byte, the name bytes, and a
// trailing pad byte if the name length is odd.
func (b *Builder) Symbol(name string) *Builder {
	b.buf = append(b.buf, SegmentSymbol, byte(len(name)))
	b.buf = append(b.buf, []byte(name)...)
	if len(name)%2 != 0 {
		b.buf = append(b.buf, 0x00)
	}
	return b
}

// Bytes returns the accumulated path bytes, padded with a trailing zero
// if the total length is odd so the byte length is always even.
func (b *Builder) Bytes() []byte {
	if len(b.buf)%2 != 0 {
		return append(append([]byte{}, b.buf...), 0x00)
	}
	return append([]byte{}, b.buf...)
}

// Words returns the path length in 16-bit words, as required by the
// single-byte path_size_words field of a CIP request, and an error if
// the padded path exceeds the 255-word limit that field can express.
func (b *Builder) Words() (uint8, error) {
	words := len(b.Bytes()) / 2
	if words > MaxWords {
		return 0, fmt.Errorf("path: %d words exceeds the %d-word CIP path limit", words, MaxWords)
	}
	return uint8(words), nil
}

// InstanceAttribute builds the common class/instance[/attribute] path
// used by Assembly and Motoman facades: a Class and Instance segment,
// plus an Attribute segment when attr is non-nil.
func InstanceAttribute(class, instance uint32, attr *uint32) ([]byte, uint8, error) {
	b := New().Class(class).Instance(instance)
	if attr != nil {
		b.Attribute(*attr)
	}
	words, err := b.Words()
	if err != nil {
		return nil, 0, err
	}
	return b.Bytes(), words, nil
}

// Symbolic builds a tag path from its dotted/bracketed textual form.
// Dotted components become successive 0x91 Extended Symbol segments;
// each bracketed index becomes an element segment. Parsing is
// case-sensitive and never alters the component text.
func Symbolic(tagName string) ([]byte, uint8, error) {
	segs, err := ParseTagName(tagName)
	if err != nil {
		return nil, 0, err
	}
	b := New()
	for _, s := range segs {
		if s.IsElement {
			b.Element(s.Index)
		} else {
			b.Symbol(s.Name)
		}
	}
	words, err := b.Words()
	if err != nil {
		return nil, 0, err
	}
	return b.Bytes(), words, nil
}
