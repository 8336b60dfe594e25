package generator

import "time"

// GenerationInput 是生成推荐信所需的原始材料。
type GenerationInput struct {
	// SubjectContext describes the recommender (name, title, department).
	SubjectContext string `json:"subject_context"`
	// SourceMaterial holds the raw notes about the student, usually in Chinese.
	SourceMaterial string `json:"source_material"`
}

// Document is the canonical three-field letter artifact.
type Document struct {
	LogicDraft  string `json:"logicDraft"`
	PrimaryText string `json:"primaryText"`
	Critique    string `json:"critique"`
}

// Speaker identifies who produced a transcript turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn 记录一次对话消息，按插入顺序展示。
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
