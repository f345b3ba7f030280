package tags

import (
	"strings"
	"unicode/utf8"
)

// Key is an editing key the capsule editor reacts to.
type Key int

const (
	KeySpace Key = iota
	KeyEnter
	KeyBackspace
)

// Editor is the capsule-style tag input. Typed text accumulates in a pending
// buffer and is committed as a token on space, enter or blur.
type Editor struct {
	tokens  List
	pending string
}

// NewEditor starts an editor preloaded with existing tags.
func NewEditor(initial List) *Editor {
	return &Editor{tokens: initial.Clone()}
}

// Tokens returns the committed tags.
func (e *Editor) Tokens() List {
	return e.tokens.Clone()
}

// Pending returns the uncommitted input text.
func (e *Editor) Pending() string {
	return e.pending
}

// Type appends text to the pending buffer. Whitespace commits the buffer.
// It reports whether the committed token set changed.
func (e *Editor) Type(text string) bool {
	changed := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' {
			changed = e.commit() || changed
			continue
		}
		e.pending += string(r)
	}
	return changed
}

// Press handles an editing key and reports whether the token set changed.
func (e *Editor) Press(k Key) bool {
	switch k {
	case KeySpace, KeyEnter:
		return e.commit()
	case KeyBackspace:
		if e.pending != "" {
			_, size := utf8.DecodeLastRuneInString(e.pending)
			e.pending = e.pending[:len(e.pending)-size]
			return false
		}
		if len(e.tokens) == 0 {
			return false
		}
		e.tokens = e.tokens[:len(e.tokens)-1]
		return true
	}
	return false
}

// Blur commits any pending text.
func (e *Editor) Blur() bool {
	return e.commit()
}

// Remove deletes a committed tag.
func (e *Editor) Remove(tag string) bool {
	if !e.tokens.Has(tag) {
		return false
	}
	e.tokens = e.tokens.Without(tag)
	return true
}

func (e *Editor) commit() bool {
	tok := strings.TrimSpace(e.pending)
	e.pending = ""
	if tok == "" || e.tokens.Has(tok) {
		return false
	}
	e.tokens = e.tokens.With(tok)
	return true
}
