package hl7

import (
	"fmt"
	"strings"
)

// A Path is a compiled tag-path expression. Expressions use the subset of
// location-path syntax needed to address HL7 v2 XML messages:
//
//	/REF_I12/MSH/MSH.10    absolute, from the document root
//	./PRD.2/XPN.1          relative, children of the context element
//	.//OBX                 relative, any descendant
//	//DG1                  absolute, any descendant of the root
//
// Segments may carry a namespace prefix (hl7:MSH); matching is by local
// name, with a qualified segment additionally required to sit in the
// document's default namespace. A lookup that matches nothing returns no
// result rather than an error: a miss is a signal to try a secondary path
// or skip the field.
type Path struct {
	expr     string
	absolute bool
	segs     []segment
}

type segment struct {
	name      string
	qualified bool // carried a namespace prefix in the expression
	deep      bool // descendant axis ("//")
}

// ParsePath compiles a tag-path expression.
func ParsePath(expr string) (*Path, error) {
	s := strings.TrimSpace(expr)
	if s == "" || s == "." {
		return nil, fmt.Errorf("hl7: empty path expression %q", expr)
	}
	relative := false
	if strings.HasPrefix(s, ".") {
		relative = true
		s = s[1:]
		if s == "" {
			return nil, fmt.Errorf("hl7: empty path expression %q", expr)
		}
	}
	p := &Path{expr: expr, absolute: !relative && strings.HasPrefix(s, "/")}
	deep := false
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	for s != "" {
		// consume "/" or "//"
		s = s[1:]
		if strings.HasPrefix(s, "/") {
			deep = true
			s = s[1:]
		}
		end := strings.IndexByte(s, '/')
		var name string
		if end < 0 {
			name, s = s, ""
		} else {
			name, s = s[:end], s[end:]
		}
		if name == "" {
			return nil, fmt.Errorf("hl7: empty segment in path %q", expr)
		}
		seg := segment{name: name, deep: deep}
		if i := strings.IndexByte(name, ':'); i >= 0 {
			seg.name = name[i+1:]
			seg.qualified = true
			if seg.name == "" {
				return nil, fmt.Errorf("hl7: empty segment in path %q", expr)
			}
		}
		p.segs = append(p.segs, seg)
		deep = false
	}
	return p, nil
}

// MustPath is ParsePath for literal expressions; it panics on a bad one.
func MustPath(expr string) *Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original expression.
func (p *Path) String() string { return p.expr }

// First resolves the path against ctx and returns the first match in
// document order, or nil.
func (p *Path) First(ctx *Element) *Element {
	matches := p.resolve(ctx, true)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// All resolves the path against ctx and returns every match in document
// order.
func (p *Path) All(ctx *Element) []*Element {
	return p.resolve(ctx, false)
}

func (p *Path) resolve(ctx *Element, firstOnly bool) []*Element {
	if ctx == nil {
		return nil
	}
	ns := ctx.root().Space
	var cur []*Element
	seg := p.segs[0]
	if p.absolute {
		root := ctx.root()
		if seg.deep {
			cur = collectDescendantsOrSelf(root, seg, ns)
		} else if seg.match(root, ns) {
			cur = []*Element{root}
		}
	} else {
		if seg.deep {
			cur = collectDescendants(ctx, seg, ns)
		} else {
			cur = matchChildren(ctx, seg, ns)
		}
	}
	for _, seg := range p.segs[1:] {
		var next []*Element
		for _, n := range cur {
			if seg.deep {
				next = append(next, collectDescendants(n, seg, ns)...)
			} else {
				next = append(next, matchChildren(n, seg, ns)...)
			}
		}
		cur = dedupe(next)
	}
	if firstOnly && len(cur) > 1 {
		cur = cur[:1]
	}
	return cur
}

func (s segment) match(e *Element, ns string) bool {
	if e.Name != s.name {
		return false
	}
	if s.qualified && ns != "" && e.Space != "" && e.Space != ns {
		return false
	}
	return true
}

func matchChildren(e *Element, s segment, ns string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if s.match(c, ns) {
			out = append(out, c)
		}
	}
	return out
}

func collectDescendants(e *Element, s segment, ns string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		out = append(out, collectDescendantsOrSelf(c, s, ns)...)
	}
	return out
}

func collectDescendantsOrSelf(e *Element, s segment, ns string) []*Element {
	var out []*Element
	e.Walk(func(n *Element) {
		if s.match(n, ns) {
			out = append(out, n)
		}
	})
	return out
}

func dedupe(els []*Element) []*Element {
	if len(els) < 2 {
		return els
	}
	seen := make(map[*Element]bool, len(els))
	out := els[:0]
	for _, e := range els {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// First is a convenience for resolving a literal path expression against e.
// The expression must be well-formed; a lookup miss returns nil.
func (e *Element) First(expr string) *Element {
	return MustPath(expr).First(e)
}

// All is a convenience for resolving a literal path expression against e.
func (e *Element) All(expr string) []*Element {
	return MustPath(expr).All(e)
}
