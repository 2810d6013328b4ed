// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package prototxt reads and writes protobuf text-format documents as
// generic field trees.
//
// The trainer's model and solver configs are protobuf text format, but
// the layer definitions use a custom Caffe fork whose descriptors have
// no Go bindings. Rather than pin generated code to one fork, this
// package parses a document into an ordered field tree, lets callers
// edit the handful of fields the driver cares about, and serializes
// everything else back untouched.
//
// Supported syntax is what the trainer's configs actually use: scalar
// fields `name: value` (numbers, booleans, enum identifiers, quoted
// strings), message fields `name { ... }` with optional colon, repeated
// fields by repetition, and '#' comments.
package prototxt

import (
	"fmt"
	"strconv"
	"strings"
)

// Message is an ordered list of fields. Field order and repetition are
// preserved exactly so an unmodified document round-trips.
type Message struct {
	Fields []*Field
}

// Field is a single `name: value` or `name { ... }` entry.
// Exactly one of Value or Msg is set.
type Field struct {
	Name string

	// Value holds the raw scalar literal, e.g. `100`, `true`, `SGD`,
	// or `"some/path"` including quotes.
	Value string

	// Msg holds the nested message body for message fields.
	Msg *Message
}

// =============================================================================
// Parsing
// =============================================================================

// Parse parses a text-format document into a Message.
func Parse(input string) (*Message, error) {
	p := &parser{input: input}
	msg, err := p.parseFields(false)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

type parser struct {
	input string
	pos   int
	line  int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("prototxt line %d: %s", p.line+1, fmt.Sprintf(format, args...))
}

// skipSpace advances over whitespace and '#' comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == ',':
			p.pos++
		case c == '#':
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '.' || c == '-' || c == '+'
}

// parseFields parses fields until EOF, or until '}' when nested.
func (p *parser) parseFields(nested bool) (*Message, error) {
	msg := &Message{}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			if nested {
				return nil, p.errorf("unexpected end of input, missing '}'")
			}
			return msg, nil
		}
		if p.input[p.pos] == '}' {
			if !nested {
				return nil, p.errorf("unexpected '}'")
			}
			p.pos++
			return msg, nil
		}

		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		msg.Fields = append(msg.Fields, field)
	}
}

func (p *parser) parseField() (*Field, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, p.errorf("expected field name, got %q", p.input[p.pos])
	}
	name := p.input[start:p.pos]

	p.skipSpace()
	hasColon := false
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		hasColon = true
		p.pos++
		p.skipSpace()
	}
	if p.pos >= len(p.input) {
		return nil, p.errorf("field %q has no value", name)
	}

	if p.input[p.pos] == '{' {
		p.pos++
		body, err := p.parseFields(true)
		if err != nil {
			return nil, err
		}
		return &Field{Name: name, Msg: body}, nil
	}
	if !hasColon {
		return nil, p.errorf("field %q missing ':' before scalar value", name)
	}

	value, err := p.parseScalar(name)
	if err != nil {
		return nil, err
	}
	return &Field{Name: name, Value: value}, nil
}

func (p *parser) parseScalar(name string) (string, error) {
	c := p.input[p.pos]
	if c == '"' || c == '\'' {
		quote := c
		start := p.pos
		p.pos++
		for p.pos < len(p.input) {
			switch p.input[p.pos] {
			case '\\':
				p.pos += 2
			case quote:
				p.pos++
				return p.input[start:p.pos], nil
			case '\n':
				return "", p.errorf("unterminated string in field %q", name)
			default:
				p.pos++
			}
		}
		return "", p.errorf("unterminated string in field %q", name)
	}

	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("field %q has an empty value", name)
	}
	return p.input[start:p.pos], nil
}

// =============================================================================
// Serialization
// =============================================================================

// String renders the message in canonical text format with two-space
// indentation.
func (m *Message) String() string {
	var b strings.Builder
	m.write(&b, 0)
	return b.String()
}

func (m *Message) write(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range m.Fields {
		if f.Msg != nil {
			fmt.Fprintf(b, "%s%s {\n", indent, f.Name)
			f.Msg.write(b, depth+1)
			fmt.Fprintf(b, "%s}\n", indent)
		} else {
			fmt.Fprintf(b, "%s%s: %s\n", indent, f.Name, f.Value)
		}
	}
}

// =============================================================================
// Copying
// =============================================================================

// Clone returns a deep copy of the message. Mutating the copy never
// affects the original, so one parsed prototype can seed many variants.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := &Message{Fields: make([]*Field, len(m.Fields))}
	for i, f := range m.Fields {
		out.Fields[i] = &Field{Name: f.Name, Value: f.Value, Msg: f.Msg.Clone()}
	}
	return out
}

// =============================================================================
// Accessors
// =============================================================================

// Get returns all fields with the given name, in document order.
func (m *Message) Get(name string) []*Field {
	var fields []*Field
	for _, f := range m.Fields {
		if f.Name == name {
			fields = append(fields, f)
		}
	}
	return fields
}

// First returns the first field with the given name, or nil.
func (m *Message) First(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Child returns the nested message of the first message field with the
// given name, or nil.
func (m *Message) Child(name string) *Message {
	f := m.First(name)
	if f == nil {
		return nil
	}
	return f.Msg
}

// Str returns the unquoted string value of the first field with the
// given name.
func (m *Message) Str(name string) (string, bool) {
	f := m.First(name)
	if f == nil || f.Msg != nil {
		return "", false
	}
	return unquote(f.Value), true
}

// Int returns the integer value of the first field with the given name.
func (m *Message) Int(name string) (int64, bool) {
	f := m.First(name)
	if f == nil || f.Msg != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(f.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Float returns the float value of the first field with the given name.
func (m *Message) Float(name string) (float64, bool) {
	f := m.First(name)
	if f == nil || f.Msg != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(f.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Bool returns the boolean value of the first field with the given name.
func (m *Message) Bool(name string) (bool, bool) {
	f := m.First(name)
	if f == nil || f.Msg != nil {
		return false, false
	}
	switch f.Value {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// =============================================================================
// Mutation
// =============================================================================

// setScalar replaces the first field with the given name, or appends a
// new field if none exists.
func (m *Message) setScalar(name, raw string) {
	if f := m.First(name); f != nil {
		f.Value = raw
		f.Msg = nil
		return
	}
	m.Fields = append(m.Fields, &Field{Name: name, Value: raw})
}

// SetStr sets a string field, quoting the value.
func (m *Message) SetStr(name, value string) {
	m.setScalar(name, quote(value))
}

// SetInt sets an integer field.
func (m *Message) SetInt(name string, value int64) {
	m.setScalar(name, strconv.FormatInt(value, 10))
}

// SetBool sets a boolean field.
func (m *Message) SetBool(name string, value bool) {
	m.setScalar(name, strconv.FormatBool(value))
}

// Remove deletes every field for which pred returns true and reports
// how many were removed.
func (m *Message) Remove(pred func(*Field) bool) int {
	kept := m.Fields[:0]
	removed := 0
	for _, f := range m.Fields {
		if pred(f) {
			removed++
		} else {
			kept = append(kept, f)
		}
	}
	m.Fields = kept
	return removed
}

// =============================================================================
// String Literals
// =============================================================================

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	q := raw[0]
	if q != '"' && q != '\'' || raw[len(raw)-1] != q {
		return raw
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
