// Package language holds the table of language codes accepted by the
// translation endpoint and the rules for validating a source/target pair.
package language

import (
	"errors"
	"fmt"
	"sort"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto asks the service to detect the source language. It is never a valid target.
const Auto = "auto"

var (
	// ErrInvalidLanguageCode matches any *InvalidCodeError.
	ErrInvalidLanguageCode = errors.New("invalid language code")
	// ErrAutoTargetNotAllowed is returned when the target language is Auto.
	ErrAutoTargetNotAllowed = errors.New("output language cannot be set to auto")
)

// InvalidCodeError reports a code that is not a member of the table.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("not a valid language code: %q", e.Code)
}

func (e *InvalidCodeError) Is(target error) bool {
	return target == ErrInvalidLanguageCode
}

// Table is an immutable set of language codes. Auto is always a member.
type Table struct {
	codes map[string]struct{}
}

// NewTable builds a table from codes. Duplicates are ignored.
func NewTable(codes ...string) *Table {
	t := &Table{codes: make(map[string]struct{}, len(codes)+1)}
	t.codes[Auto] = struct{}{}
	for _, c := range codes {
		t.codes[c] = struct{}{}
	}
	return t
}

// Contains reports whether code is a member of the table.
func (t *Table) Contains(code string) bool {
	_, ok := t.codes[code]
	return ok
}

// Codes returns all members, Auto included, sorted.
func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.codes))
	for c := range t.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ValidatePair checks a source/target pair. The target check comes first so
// that an Auto target is reported as ErrAutoTargetNotAllowed even when the
// source is also invalid.
func (t *Table) ValidatePair(from, to string) error {
	if to == Auto {
		return ErrAutoTargetNotAllowed
	}
	if !t.Contains(from) {
		return &InvalidCodeError{Code: from}
	}
	if !t.Contains(to) {
		return &InvalidCodeError{Code: to}
	}
	return nil
}

// Name returns the English display name for code, or the code itself when
// it cannot be parsed as a BCP 47 tag.
func Name(code string) string {
	if code == Auto {
		return "Detect language"
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}
