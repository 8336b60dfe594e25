package generator

import (
	"context"
	"encoding/json"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// Structured requests get a complete Document; chat turns asking for a
// rewrite get a full letter, everything else gets a short answer.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if prompt.Schema != nil {
		recommender := lineValue(prompt.User, recommenderLabel)
		doc := Document{
			LogicDraft:  "项目一 → 遇到的困难 → 解决方法 → 体现的品质；项目二 → 新的挑战 → 解决方法 → 体现的品质。",
			PrimaryText: mockLetter(recommender),
			Critique:    "The material describes two projects but gives few measurable outcomes.",
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	if strings.Contains(strings.ToLower(prompt.User), "rewrite") {
		return mockLetter(""), nil
	}
	return "Here is a suggestion: keep the current structure and tighten the second paragraph.", nil
}

func (m MockLLM) OpenChat(system string, temperature float64) ChatChannel {
	return newHistoryChat(m, system, temperature)
}

func mockLetter(recommender string) string {
	if recommender == "" {
		recommender = "The Recommender"
	}
	var sb strings.Builder
	sb.WriteString(Salutation + "\n\n")
	sb.WriteString(OpeningLiteral + " this student for graduate study.\n\n")
	sb.WriteString(FirstTransition + " the student built a distributed cache, met a subtle race condition, isolated it with careful tracing and showed real persistence.\n\n")
	sb.WriteString(SecondTransition + " the student led a group project under a tight deadline, resolved conflicting designs and showed clear leadership.\n\n")
	sb.WriteString(SummaryTransition + " this persistence and leadership, I recommend the student without reservation.\n\n")
	sb.WriteString(SignOff + "\n" + recommender)
	return sb.String()
}

// lineValue returns the text after label, either on the same line or on the
// next non-blank line when the label stands alone.
func lineValue(text, label string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		v, ok := strings.CutPrefix(strings.TrimSpace(line), label)
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		for _, next := range lines[i+1:] {
			if next = strings.TrimSpace(next); next != "" {
				return next
			}
		}
		return ""
	}
	return ""
}
