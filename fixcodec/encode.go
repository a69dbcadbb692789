package fixcodec

import (
	"strconv"
	"strings"
)

// Builder assembles a FIX message body as an ordered sequence of tag=value
// records, then produces the wire-correct bytes (header + body + checksum
// trailer) on Build. Builder is the encode-side counterpart to the
// zero-copy decode Message — it never reads from a Message, only writes.
type Builder struct {
	beginString string
	fields      []builderField
}

type builderField struct {
	tag   int
	value string
}

// NewBuilder starts a message for the given BeginString (e.g. "FIX.4.4").
func NewBuilder(beginString string) *Builder {
	return &Builder{beginString: beginString, fields: make([]builderField, 0, 16)}
}

// Set appends tag=value to the body in call order. Tag 8 (BeginString), 9
// (BodyLength) and 10 (Checksum) are reserved — Set panics if given those,
// since Build computes them.
func (b *Builder) Set(tag int, value string) *Builder {
	if tag == 8 || tag == 9 || tag == 10 {
		panic("fixcodec: tags 8/9/10 are computed by Build, not set directly")
	}
	b.fields = append(b.fields, builderField{tag, value})
	return b
}

// SetInt is a convenience wrapper over Set for integer fields.
func (b *Builder) SetInt(tag int, value int64) *Builder {
	return b.Set(tag, strconv.FormatInt(value, 10))
}

// Build assembles the final wire bytes: "8=<begin>\x019=<bodylen>\x01" +
// body + "10=<checksum>\x01", with SOH as the only delimiter emitted
// regardless of what Decode was willing to accept.
func (b *Builder) Build() []byte {
	var body strings.Builder
	for _, f := range b.fields {
		body.WriteString(strconv.Itoa(f.tag))
		body.WriteByte('=')
		body.WriteString(f.value)
		body.WriteByte(SOH)
	}
	bodyBytes := body.String()

	var head strings.Builder
	head.WriteString("8=")
	head.WriteString(b.beginString)
	head.WriteByte(SOH)
	head.WriteString("9=")
	head.WriteString(strconv.Itoa(len(bodyBytes)))
	head.WriteByte(SOH)

	preTrailer := head.String() + bodyBytes
	checksum := Checksum([]byte(preTrailer))

	var out strings.Builder
	out.Grow(len(preTrailer) + 8)
	out.WriteString(preTrailer)
	out.WriteString("10=")
	out.WriteString(checksum)
	out.WriteByte(SOH)
	return []byte(out.String())
}
