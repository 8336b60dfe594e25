// Package detector identifies the natural language of the source material so
// the logic draft can be requested in the same language.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Languages the detector chooses between. A small set keeps the model
// footprint low and covers the material users paste in practice.
var Languages = []lingua.Language{
	lingua.Chinese,
	lingua.English,
	lingua.Japanese,
	lingua.Korean,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Russian,
}

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector. Building is expensive; reuse the instance.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(Languages...).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// LanguageName returns an English display name such as "Chinese".
func (d *Detector) LanguageName(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	// cases.Caser is stateful, so one is built per call.
	return cases.Title(language.English).String(strings.ToLower(lang.String())), true
}
