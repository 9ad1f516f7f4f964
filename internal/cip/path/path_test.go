package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassSegmentWidthSwitch(t *testing.T) {
	b := New().Class(0x00FF)
	assert.Equal(t, []byte{SegmentClass8, 0xFF}, b.Bytes())

	b = New().Class(0x0100)
	assert.Equal(t, []byte{SegmentClass16, 0x00, 0x00, 0x01}, b.Bytes())
}

func TestInstanceAttributeWordAccounting(t *testing.T) {
	bytes, words, err := InstanceAttribute(0x04, 100, attrPtr(3))
	require.NoError(t, err)
	assert.True(t, len(bytes)%2 == 0)
	assert.Equal(t, uint8(len(bytes)/2), words)
}

func attrPtr(v uint32) *uint32 { return &v }

func TestSymbolPadsOddLength(t *testing.T) {
	b := New().Symbol("Counter") // 7 chars, odd
	got := b.Bytes()
	want := []byte{SegmentSymbol, 7, 'C', 'o', 'u', 'n', 't', 'e', 'r', 0x00}
	assert.Equal(t, want, got)
}

func TestSymbolEvenLengthNoPad(t *testing.T) {
	b := New().Symbol("Tag1") // 4 chars, even
	got := b.Bytes()
	want := []byte{SegmentSymbol, 4, 'T', 'a', 'g', '1'}
	assert.Equal(t, want, got)
}

func TestParseTagNameDottedAndBracketed(t *testing.T) {
	segs, err := ParseTagName("Program.Counters[3].Value")
	require.NoError(t, err)
	require.Len(t, segs, 4)
	assert.Equal(t, Segment{Name: "Program"}, segs[0])
	assert.Equal(t, Segment{Name: "Counters"}, segs[1])
	assert.Equal(t, Segment{IsElement: true, Index: 3}, segs[2])
	assert.Equal(t, Segment{Name: "Value"}, segs[3])
}

func TestParseTagNameCaseSensitive(t *testing.T) {
	segs, err := ParseTagName("myTag")
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "myTag", segs[0].Name)
}

func TestParseTagNameErrors(t *testing.T) {
	_, err := ParseTagName("")
	assert.Error(t, err)

	_, err = ParseTagName("Foo..Bar")
	assert.Error(t, err)

	_, err = ParseTagName("[5]")
	assert.Error(t, err)

	_, err = ParseTagName("Foo[5")
	assert.Error(t, err)

	_, err = ParseTagName("Foo[abc]")
	assert.Error(t, err)
}

func TestSymbolicPathRoundTrip(t *testing.T) {
	bytes, words, err := Symbolic("Counter")
	require.NoError(t, err)
	assert.Equal(t, uint8(len(bytes)/2), words)
	assert.Equal(t, []byte{SegmentSymbol, 7, 'C', 'o', 'u', 'n', 't', 'e', 'r', 0x00}, bytes)
}

func TestSymbolicPathWithArrayIndex(t *testing.T) {
	bytes, _, err := Symbolic("MyArray[5]")
	require.NoError(t, err)
	assert.Contains(t, string(bytes[:9]), "MyArray")
	assert.Equal(t, SegmentElement8, bytes[len(bytes)-2])
	assert.Equal(t, byte(5), bytes[len(bytes)-1])
}

func TestWordsExceedsLimit(t *testing.T) {
	b := New()
	for i := 0; i < 130; i++ {
		b.Symbol("AB")
	}
	_, err := b.Words()
	assert.Error(t, err)
}
