// Package hl7 provides a lightweight ordered document tree for HL7 v2 XML
// messages, together with indexed element addresses and a namespace-tolerant
// path resolver. The tree preserves element order and repeat cardinalities
// exactly as parsed; mutation is limited to overwriting the text of existing
// elements, so a cloned document always keeps the structure of its source.
package hl7

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Element is a single node in an HL7 v2 XML document. Children are owned
// top-down; the parent link is a non-owning back-reference used only to
// compute an element's address.
type Element struct {
	Name     string // local name, e.g. "MSH.10"
	Space    string // namespace URI, usually the document default
	Attr     []xml.Attr
	Text     string // character data; meaningful for leaf elements only
	Children []*Element

	parent *Element
}

// Document is a parsed HL7 v2 XML message or template.
type Document struct {
	Root      *Element
	Namespace string // default namespace URI detected from the root element
}

// Parse reads an HL7 v2 XML document into a Document. Inter-element
// whitespace in branch elements is insignificant and dropped; leaf text is
// stored trimmed. Comments and processing instructions are ignored.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element
	var text bytes.Buffer
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hl7: parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Space: t.Name.Space}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue // namespace declarations are carried by Space
				}
				el.Attr = append(el.Attr, a)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("hl7: parse: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				el.parent = parent
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(el.Children) == 0 {
				el.Text = strings.TrimSpace(text.String())
			}
			text.Reset()
		}
	}
	if root == nil {
		return nil, errors.New("hl7: parse: no root element")
	}
	return &Document{Root: root, Namespace: root.Space}, nil
}

// ParseFile parses the HL7 v2 XML document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hl7: %w", err)
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("hl7: parse %s: %w", path, err)
	}
	return doc, nil
}

// Clone returns a deep copy of the document with parent links rebuilt.
// Mutating the clone never affects the source.
func (d *Document) Clone() *Document {
	return &Document{Root: d.Root.clone(nil), Namespace: d.Namespace}
}

func (e *Element) clone(parent *Element) *Element {
	c := &Element{Name: e.Name, Space: e.Space, Text: e.Text, parent: parent}
	if len(e.Attr) > 0 {
		c.Attr = append([]xml.Attr(nil), e.Attr...)
	}
	for _, child := range e.Children {
		c.Children = append(c.Children, child.clone(c))
	}
	return c
}

// Bytes serializes the document with an XML declaration, two-space
// indentation and the default namespace declared on the root element only.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	d.write(&b, true)
	return b.Bytes()
}

// CanonicalHash returns the hex-encoded SHA-256 digest of a canonical
// rendering of the document: no indentation and trimmed text, so two
// documents differing only in insignificant formatting hash identically.
func (d *Document) CanonicalHash() string {
	var b bytes.Buffer
	d.write(&b, false)
	sum := sha256.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:])
}

func (d *Document) write(b *bytes.Buffer, pretty bool) {
	writeElement(b, d.Root, d.Namespace, 0, pretty)
	if pretty {
		b.WriteByte('\n')
	}
}

func writeElement(b *bytes.Buffer, e *Element, rootNS string, depth int, pretty bool) {
	if pretty && depth > 0 {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth))
	}
	b.WriteByte('<')
	b.WriteString(e.Name)
	if depth == 0 && rootNS != "" {
		b.WriteString(` xmlns="`)
		escape(b, rootNS)
		b.WriteByte('"')
	}
	for _, a := range e.Attr {
		b.WriteByte(' ')
		if a.Name.Space != "" {
			b.WriteString(a.Name.Space)
			b.WriteByte(':')
		}
		b.WriteString(a.Name.Local)
		b.WriteString(`="`)
		escape(b, a.Value)
		b.WriteByte('"')
	}
	if len(e.Children) == 0 && e.Text == "" {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	if len(e.Children) == 0 {
		escape(b, e.Text)
	} else {
		for _, c := range e.Children {
			writeElement(b, c, rootNS, depth+1, pretty)
		}
		if pretty {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("  ", depth))
		}
	}
	b.WriteString("</")
	b.WriteString(e.Name)
	b.WriteByte('>')
}

func escape(b *bytes.Buffer, s string) {
	xml.EscapeText(b, []byte(s)) // only errors on a failing writer
}

// Address returns the fully disambiguated path of the element from the
// document root, each segment a local name with a 1-based ordinal among
// same-tag siblings, e.g. /REF_I12[1]/MSH[1]/MSH.10[1].
func (e *Element) Address() string {
	var parts []string
	for cur := e; cur != nil; cur = cur.parent {
		idx := 1
		if p := cur.parent; p != nil {
			for _, sib := range p.Children {
				if sib == cur {
					break
				}
				if sib.Name == cur.Name {
					idx++
				}
			}
		}
		parts = append(parts, fmt.Sprintf("%s[%d]", cur.Name, idx))
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String()
}

// AddressSet returns the address of every element in the document.
func (d *Document) AddressSet() map[string]bool {
	set := make(map[string]bool)
	d.Root.Walk(func(e *Element) {
		set[e.Address()] = true
	})
	return set
}

// TopLevelOrder returns the ordered local names of the root's children.
func (d *Document) TopLevelOrder() []string {
	order := make([]string, 0, len(d.Root.Children))
	for _, c := range d.Root.Children {
		order = append(order, c.Name)
	}
	return order
}

// Walk calls fn for e and every descendant, in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

func (e *Element) root() *Element {
	cur := e
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Text returns the trimmed text of el, tolerating nil.
func Text(el *Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text)
}

// SetText overwrites el's text. A nil el is a tolerated no-op, so callers
// can chain a path lookup that may have missed.
func SetText(el *Element, s string) {
	if el != nil {
		el.Text = s
	}
}
