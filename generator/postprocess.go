package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// codeFenceRe matches a payload wrapped in a ```json fence.
var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ValidateInput normalises both fields to NFC and rejects blank ones.
func ValidateInput(in GenerationInput) (GenerationInput, error) {
	out := GenerationInput{
		SubjectContext: normalize(in.SubjectContext),
		SourceMaterial: normalize(in.SourceMaterial),
	}
	if out.SubjectContext == "" {
		return GenerationInput{}, fmt.Errorf("%w: subject context is required", ErrValidation)
	}
	if out.SourceMaterial == "" {
		return GenerationInput{}, fmt.Errorf("%w: source material is required", ErrValidation)
	}
	return out, nil
}

func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// DecodeDocument 校验模型返回的 JSON，字段缺失或类型不符时直接拒绝，不做猜测。
func DecodeDocument(raw string) (Document, error) {
	payload := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(payload); len(m) == 2 {
		payload = m[1]
	}
	if payload == "" {
		return Document{}, fmt.Errorf("%w: model returned empty payload", ErrGenerationFailure)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return Document{}, fmt.Errorf("%w: payload is not a JSON object: %v", ErrGenerationFailure, err)
	}

	var doc Document
	targets := []struct {
		name string
		dst  *string
	}{
		{fieldLogicDraft, &doc.LogicDraft},
		{fieldPrimaryText, &doc.PrimaryText},
		{fieldCritique, &doc.Critique},
	}
	for _, t := range targets {
		v, ok := fields[t.name]
		if !ok {
			return Document{}, fmt.Errorf("%w: field %s missing", ErrGenerationFailure, t.name)
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Document{}, fmt.Errorf("%w: field %s is not a string", ErrGenerationFailure, t.name)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return Document{}, fmt.Errorf("%w: field %s is empty", ErrGenerationFailure, t.name)
		}
		*t.dst = s
	}
	return doc, nil
}
