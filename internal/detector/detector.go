// Package detector guesses the language of a text locally so the source
// language can be sent explicitly instead of relying on remote detection.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/ddgtran/internal/language"
)

// serviceCodes maps detector codes to the translation service's codes where
// the two disagree.
var serviceCodes = map[string]string{
	"zh": "zh-Hans",
	"tl": "fil",
	"mn": "mn-Cyrl",
	"sr": "sr-Cyrl",
}

type Detector struct {
	detector  lingua.LanguageDetector
	supported map[string]struct{}
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	supported := make(map[string]struct{})
	for _, lang := range lingua.AllLanguages() {
		supported[strings.ToLower(lang.IsoCode639_1().String())] = struct{}{}
	}

	return &Detector{detector: detector, supported: supported}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Supports reports whether the detector can recognise the language with the
// given lower-case ISO 639-1 code.
func (d *Detector) Supports(iso string) bool {
	_, ok := d.supported[iso]
	return ok
}

// SourceFor returns the service code of the detected language when table
// accepts it, otherwise language.Auto.
func (d *Detector) SourceFor(text string, table *language.Table) string {
	code, ok := d.DetectISO(text)
	if !ok {
		return language.Auto
	}
	code = ServiceCode(code)
	if !table.Contains(code) {
		return language.Auto
	}
	return code
}

// ServiceCode translates a detector ISO code to the translation service's
// code for the same language.
func ServiceCode(iso string) string {
	if code, ok := serviceCodes[iso]; ok {
		return code
	}
	return iso
}
