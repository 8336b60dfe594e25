package generator

import (
	"fmt"
	"strings"
)

// Literals every generated letter is instructed to contain.
const (
	SalutationPhrase  = "To Whom It May Concern"
	Salutation        = SalutationPhrase + ","
	OpeningLiteral    = "It is with great enthusiasm that I recommend"
	FirstTransition   = "On the one hand,"
	SecondTransition  = "On the other hand,"
	SummaryTransition = "Given"
	SignOff           = "Yours truly,"

	ParagraphWords = 125
	LetterWords    = 350

	DefaultTemperature = 0.7
)

const (
	recommenderLabel = "Recommender information:"
	materialLabel    = "Source material:"

	fallbackLanguage = "the same language as the source material"
)

// Document field names as they appear on the wire.
const (
	fieldLogicDraft  = "logicDraft"
	fieldPrimaryText = "primaryText"
	fieldCritique    = "critique"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System      string
	User        string
	History     []Message
	Schema      *ResponseSchema
	Temperature float64
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

// ResponseSchema constrains decoding to a JSON object.
type ResponseSchema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// DocumentSchema returns the three-field schema used for generation.
func DocumentSchema() *ResponseSchema {
	return &ResponseSchema{
		Name:        "recommendation_letter",
		Description: "Logic draft, English recommendation letter and critique of the input material.",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				fieldLogicDraft: map[string]any{
					"type":        "string",
					"description": "A draft of the logic flow, written in the language of the source material, explaining how the projects led to challenges and demonstrated qualities.",
				},
				fieldPrimaryText: map[string]any{
					"type":        "string",
					"description": fmt.Sprintf("The full English recommendation letter (~%d words).", LetterWords),
				},
				fieldCritique: map[string]any{
					"type":        "string",
					"description": "A critique of the input material, checking for logical gaps or grammatical nuances to be aware of.",
				},
			},
			"required":             []string{fieldLogicDraft, fieldPrimaryText, fieldCritique},
			"additionalProperties": false,
		},
	}
}

// BuildGenerationPrompt 生成首稿提示词。
func BuildGenerationPrompt(in GenerationInput, logicLanguage string, temperature float64) Prompt {
	if logicLanguage == "" {
		logicLanguage = fallbackLanguage
	}

	var sb strings.Builder
	sb.WriteString("You are an expert academic writer specializing in recommendation letters.\n")
	sb.WriteString("Your task is to take raw notes about a recommender and a student's projects and write a professional English recommendation letter.\n\n")
	sb.WriteString("STRICT STRUCTURE REQUIREMENTS:\n")
	sb.WriteString("1. Date: Do NOT include a date.\n")
	sb.WriteString(fmt.Sprintf("2. Salutation: Start exactly with %q.\n", Salutation))
	sb.WriteString(fmt.Sprintf("3. Opening: Start exactly with %q followed by the student's name.\n", OpeningLiteral+" [Student Name]..."))
	sb.WriteString(fmt.Sprintf("4. Body Paragraph 1: MUST start with %q.\n", FirstTransition))
	sb.WriteString("   - Logic: a specific project -> the difficulties faced -> how the student solved them -> the qualities demonstrated.\n")
	sb.WriteString(fmt.Sprintf("   - Length: approximately %d words.\n", ParagraphWords))
	sb.WriteString(fmt.Sprintf("5. Body Paragraph 2: MUST start with %q.\n", SecondTransition))
	sb.WriteString("   - Logic: a different project or aspect -> the difficulties -> the solution -> the qualities demonstrated.\n")
	sb.WriteString(fmt.Sprintf("   - Length: approximately %d words.\n", ParagraphWords))
	sb.WriteString(fmt.Sprintf("6. Conclusion: MUST start with %q.\n", SummaryTransition+" [summary of qualities]..."))
	sb.WriteString(fmt.Sprintf("7. Sign-off: %q followed by the recommender's information.\n", SignOff))
	sb.WriteString(fmt.Sprintf("8. Total Length: approximately %d words.\n", LetterWords))
	sb.WriteString("9. Tone: professional, academic, highly positive.\n\n")
	sb.WriteString(fmt.Sprintf("Write %s in %s.\n", fieldLogicDraft, logicLanguage))
	sb.WriteString(fmt.Sprintf("Write %s as a critique of the input material: logical gaps, missing evidence, grammatical nuances.\n", fieldCritique))
	sb.WriteString(fmt.Sprintf("Respond only with a JSON object containing %s, %s and %s.\n", fieldLogicDraft, fieldPrimaryText, fieldCritique))

	user := fmt.Sprintf("%s\n%s\n\n%s\n%s\n\nGenerate the recommendation letter and analysis based on the system instructions.",
		recommenderLabel, in.SubjectContext, materialLabel, in.SourceMaterial)

	return Prompt{
		System:      sb.String(),
		User:        user,
		Schema:      DocumentSchema(),
		Temperature: temperature,
	}
}

// BuildRefinementFraming 生成修订会话的系统提示词，当前信件作为权威上下文。
func BuildRefinementFraming(seed string) string {
	var sb strings.Builder
	sb.WriteString("You are an assistant helping a user refine a recommendation letter.\n")
	sb.WriteString("The current letter is provided below and is the authoritative version.\n")
	sb.WriteString("When the user asks for a rewrite, output the revised English letter only.\n")
	sb.WriteString("When the user is not asking for a rewrite, answer the question politely and do not repeat the letter.\n")
	sb.WriteString(fmt.Sprintf("If you rewrite the letter, keep the strict structure (%s %s %s %s...) unless explicitly told otherwise.\n",
		Salutation, FirstTransition, SecondTransition, SummaryTransition))
	sb.WriteString("\nCurrent Letter Context:\n")
	sb.WriteString(seed)
	return sb.String()
}
