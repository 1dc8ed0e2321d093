// Package validator checks that a translation came back in the requested
// target language.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/ddgtran/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// detectorCodes maps service codes whose base code is not the ISO 639-1 code
// the detector reports.
var detectorCodes = map[string]string{
	"fil": "tl",
	"prs": "fa",
	"yue": "zh",
	"lzh": "zh",
	"kmr": "ku",
}

var (
	ErrEmptyTranslation = errors.New("translation is empty")
	ErrWrongLanguage    = errors.New("translation is not in the target language")
)

// Validator wraps a detector; building one is expensive, so reuse it.
type Validator struct {
	det *detector.Detector
}

func New(det *detector.Detector) *Validator {
	if det == nil {
		det = detector.New()
	}
	return &Validator{det: det}
}

// Check returns nil when translated appears to be written in targetLang.
// Region and script suffixes of the target code ("zh-Hans", "pt-PT") are
// ignored. Short texts, targets the detector does not know and texts whose
// language cannot be determined pass.
func (v *Validator) Check(translated, targetLang string) error {
	text := strings.TrimSpace(translated)
	if text == "" {
		return ErrEmptyTranslation
	}

	base := baseCode(targetLang)
	if alias, ok := detectorCodes[base]; ok {
		base = alias
	}
	if base == "" || !v.det.Supports(base) || len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}

	if detected != base {
		return fmt.Errorf("%w: expected %s but detected %s", ErrWrongLanguage, targetLang, detected)
	}
	return nil
}

func baseCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code
}
