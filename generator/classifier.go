package generator

import (
	"fmt"
	"strings"
)

// Verdict is the outcome of classifying a refinement reply.
type Verdict int

const (
	Incidental Verdict = iota
	FullReplacement
)

func (v Verdict) String() string {
	if v == FullReplacement {
		return "full_replacement"
	}
	return "incidental"
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Classifier decides whether a reply replaces the letter. Implementations
// must be pure functions of the reply text.
type Classifier interface {
	Classify(reply string) Verdict
}

// SalutationClassifier treats any reply containing the salutation phrase as
// a full replacement, even when the phrase only appears in a quoted excerpt.
type SalutationClassifier struct{}

func (SalutationClassifier) Classify(reply string) Verdict {
	if strings.Contains(reply, SalutationPhrase) {
		return FullReplacement
	}
	return Incidental
}

// StructuralClassifier additionally requires the opening, every transition
// and the sign-off.
type StructuralClassifier struct{}

var structuralLiterals = []string{
	SalutationPhrase,
	OpeningLiteral,
	FirstTransition,
	SecondTransition,
	"\n" + SummaryTransition + " ",
	SignOff,
}

func (StructuralClassifier) Classify(reply string) Verdict {
	for _, lit := range structuralLiterals {
		if !strings.Contains(reply, lit) {
			return Incidental
		}
	}
	return FullReplacement
}

// ClassifierByName maps a config value to a Classifier. Empty means salutation.
func ClassifierByName(name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "salutation":
		return SalutationClassifier{}, nil
	case "structural":
		return StructuralClassifier{}, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", name)
	}
}
