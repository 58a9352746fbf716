// Package xmltree provides namespace-agnostic navigation over a parsed XML
// document with strict cardinality checks. It backs the ZAL import pipeline,
// which walks government-published registry files whose elements carry a
// default namespace but are addressed by local name only.
package xmltree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var (
	// ErrElementNotFound is returned when a path resolves to zero elements.
	ErrElementNotFound = errors.New("element not found")
	// ErrAmbiguousElement is returned when a unique lookup matches more than
	// one element.
	ErrAmbiguousElement = errors.New("element occurs more than once")
	// ErrChildNotFound is returned when an element has no child elements.
	ErrChildNotFound = errors.New("child element not found")
	// ErrEmptyText is returned when a resolved element carries no text.
	ErrEmptyText = errors.New("element contains no text")
)

// Traverser walks descendants of a single root element. Paths are of the
// form "A/B/C": nested child elements matched by local name, ignoring any
// namespace prefix. A Traverser performs no mutation and is safe for
// concurrent use.
type Traverser struct {
	root *etree.Element
}

// New returns a Traverser rooted at the given element.
func New(root *etree.Element) *Traverser {
	return &Traverser{root: root}
}

// Parse reads an XML document and returns a Traverser rooted at its
// document element.
func Parse(data []byte) (*Traverser, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse xml: %w", ErrElementNotFound)
	}
	return New(root), nil
}

// RootName returns the local name of the root element, namespace stripped.
func (t *Traverser) RootName() string {
	return t.root.Tag
}

// FirstChild returns the first child element of root, or of the default
// root when root is nil.
func (t *Traverser) FirstChild(root *etree.Element) (*etree.Element, error) {
	el := t.orRoot(root)
	children := el.ChildElements()
	if len(children) == 0 {
		return nil, fmt.Errorf("parent %q: %w", el.Tag, ErrChildNotFound)
	}
	return children[0], nil
}

// Unique resolves path to exactly one element.
func (t *Traverser) Unique(path string, root *etree.Element) (*etree.Element, error) {
	matches, err := t.All(path, root)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("path %q: %w", path, ErrAmbiguousElement)
	}
	return matches[0], nil
}

// Text resolves path to exactly one element and returns its text content.
func (t *Traverser) Text(path string, root *etree.Element) (string, error) {
	el, err := t.Unique(path, root)
	if err != nil {
		return "", err
	}
	text := el.Text()
	if text == "" {
		return "", fmt.Errorf("path %q: %w", path, ErrEmptyText)
	}
	return text, nil
}

// All resolves path to every matching descendant in document order. An
// empty match set is an error; callers wanting zero-or-more semantics must
// check for ErrElementNotFound explicitly.
func (t *Traverser) All(path string, root *etree.Element) ([]*etree.Element, error) {
	segments := strings.Split(path, "/")
	matches := collect(t.orRoot(root), segments)
	if len(matches) == 0 {
		return nil, fmt.Errorf("path %q: %w", path, ErrElementNotFound)
	}
	return matches, nil
}

func (t *Traverser) orRoot(root *etree.Element) *etree.Element {
	if root != nil {
		return root
	}
	return t.root
}

func collect(el *etree.Element, segments []string) []*etree.Element {
	if len(segments) == 0 {
		return []*etree.Element{el}
	}
	var matches []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == segments[0] {
			matches = append(matches, collect(child, segments[1:])...)
		}
	}
	return matches
}
