package model

import (
	"fmt"
	"sort"
)

// LabelEncoder maps class names to dense integer indices and back. Classes
// are sorted, so the encoding is stable across runs for the same class set.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// FitLabelEncoder builds an encoder over all distinct classes in y.
func FitLabelEncoder(y []string) *LabelEncoder {
	seen := make(map[string]struct{})
	for _, c := range y {
		seen[c] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	e := &LabelEncoder{Classes: classes}
	e.buildIndex()
	return e
}

// Encode maps one class name to its index.
func (e *LabelEncoder) Encode(class string) (int, error) {
	if e.index == nil {
		e.buildIndex()
	}
	i, ok := e.index[class]
	if !ok {
		return 0, fmt.Errorf("unknown class %q", class)
	}
	return i, nil
}

// EncodeAll maps a label sequence to indices.
func (e *LabelEncoder) EncodeAll(y []string) ([]int, error) {
	out := make([]int, len(y))
	for i, c := range y {
		idx, err := e.Encode(c)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Decode maps an index back to its class name.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range [0, %d)", i, len(e.Classes))
	}
	return e.Classes[i], nil
}

// buildIndex rebuilds the name->index map, needed after JSON decoding which
// only restores the exported class list.
func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.index[c] = i
	}
}
