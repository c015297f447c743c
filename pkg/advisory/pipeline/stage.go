package pipeline

import (
	"fmt"
	"strings"

	"kisan-advisory-be/internal/constant"
	"kisan-advisory-be/pkg/llm"
	"kisan-advisory-be/pkg/store"
)

// StageName identifies one reasoning call.
type StageName string

const (
	StageAggregation   StageName = "aggregation"
	StageDecomposition StageName = "decomposition"
	StageRetrieval     StageName = "retrieval"
	StageGeneration    StageName = "generation"
	StageFinalAudit    StageName = "final_audit"
	StageKnowledge     StageName = "knowledge"
	StageSelfAudit     StageName = "self_audit"
	StageVariety       StageName = "variety"
)

// Payload is the typed input of a stage. Each payload carries everything its
// stage needs, so a stage never reaches back into the orchestrator.
type Payload interface {
	Stage() StageName
	Messages() []llm.Message
}

type AggregationPayload struct {
	Crop     string
	District string
	Category string
	Inputs   []store.QueryInput
	// TextOnly drops voice notes and photos for the reduced retry.
	TextOnly bool
}

func (AggregationPayload) Stage() StageName { return StageAggregation }

func (p AggregationPayload) Messages() []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Locked crop: %s\nDistrict: %s\nCategory: %s\n\nFarmer messages:\n", p.Crop, p.District, p.Category)

	var media []llm.Media
	for i, in := range p.Inputs {
		switch in.Kind {
		case store.InputText:
			fmt.Fprintf(&b, "%d. [text] %s\n", i+1, in.Text)
		case store.InputAudio, store.InputImage:
			if p.TextOnly {
				if in.Text != "" {
					fmt.Fprintf(&b, "%d. [%s caption] %s\n", i+1, in.Kind, in.Text)
				}
				continue
			}
			fmt.Fprintf(&b, "%d. [%s attached]", i+1, in.Kind)
			if in.Text != "" {
				fmt.Fprintf(&b, " caption: %s", in.Text)
			}
			b.WriteString("\n")
			media = append(media, llm.Media{MimeType: in.MimeType, URI: in.MediaRef})
		}
	}
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.AggregationPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: b.String(), Media: media},
	}
}

// hasText reports whether the reduced input still carries anything to read.
func (p AggregationPayload) hasText() bool {
	for _, in := range p.Inputs {
		if strings.TrimSpace(in.Text) != "" {
			return true
		}
	}
	return false
}

type DecompositionPayload struct {
	Crop   string
	Issues []string
}

func (DecompositionPayload) Stage() StageName { return StageDecomposition }

func (p DecompositionPayload) Messages() []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Crop: %s\nQuestions:\n", p.Crop)
	for i, is := range p.Issues {
		fmt.Fprintf(&b, "%d. %s\n", i+1, is)
	}
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.DecompositionPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: b.String()},
	}
}

// GroundedItem is one atomic question with its evidence. Empty Evidence
// means MISSING.
type GroundedItem struct {
	Question string
	Evidence []store.RAGResult
}

func (g GroundedItem) Found() bool { return len(g.Evidence) > 0 }

type GenerationPayload struct {
	Crop     string
	District string
	Items    []GroundedItem
	// Warnings are the rendered Layer 1 annotations for the whole batch.
	Warnings []string
}

func (GenerationPayload) Stage() StageName { return StageGeneration }

func (p GenerationPayload) Messages() []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "फसल: %s\nज़िला: %s\n\n", p.Crop, p.District)
	for i, it := range p.Items {
		fmt.Fprintf(&b, "प्रश्न %d: %s\n", i+1, it.Question)
		if !it.Found() {
			b.WriteString("स्थिति: MISSING (कोई प्रमाण नहीं मिला)\n\n")
			continue
		}
		b.WriteString("स्थिति: FOUND\nसाक्ष्य:\n")
		for _, ev := range it.Evidence {
			fmt.Fprintf(&b, "- [%s] %s\n", ev.SourceID, strings.TrimSpace(ev.PassageText))
			if len(ev.SafetyWarnings) > 0 {
				fmt.Fprintf(&b, "  ⚠️ BANNED in this passage: %s\n", strings.Join(ev.SafetyWarnings, ", "))
			}
		}
		b.WriteString("\n")
	}
	if len(p.Warnings) > 0 {
		b.WriteString("SAFETY WARNINGS:\n")
		for _, w := range p.Warnings {
			b.WriteString(w + "\n")
		}
	}
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.GenerationPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: b.String()},
	}
}

// reduced keeps only the best passage per question.
func (p GenerationPayload) reduced() GenerationPayload {
	out := p
	out.Items = make([]GroundedItem, len(p.Items))
	for i, it := range p.Items {
		out.Items[i] = GroundedItem{Question: it.Question}
		if it.Found() {
			out.Items[i].Evidence = it.Evidence[:1]
		}
	}
	return out
}

type FinalAuditPayload struct {
	Crop        string
	Draft       string
	Instruction string
	MaxLength   int
}

func (FinalAuditPayload) Stage() StageName { return StageFinalAudit }

func (p FinalAuditPayload) Messages() []llm.Message {
	system := constant.FinalAuditPromptV1
	if p.Instruction != "" {
		system += "\n\n" + p.Instruction
	}
	system += "\n\n" + fmt.Sprintf(constant.FormatConstraintsV1, p.MaxLength)
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: system},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf("Crop: %s\n\nDRAFT:\n%s", p.Crop, p.Draft)},
	}
}

type KnowledgePayload struct {
	Crop      string
	District  string
	Category  string
	Questions []string
}

func (KnowledgePayload) Stage() StageName { return StageKnowledge }

func (p KnowledgePayload) Messages() []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "फसल: %s\nज़िला: %s\nविषय: %s\n\nप्रश्न:\n", p.Crop, p.District, p.Category)
	for i, q := range p.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.KnowledgePromptV1},
		{Role: constant.ChatMessageRoleUser, Content: b.String()},
	}
}

type SelfAuditPayload struct {
	Crop  string
	Draft string
}

func (SelfAuditPayload) Stage() StageName { return StageSelfAudit }

func (p SelfAuditPayload) Messages() []llm.Message {
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.SelfAuditPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf("Crop: %s\n\nADVISORY:\n%s", p.Crop, p.Draft)},
	}
}

type VarietyPayload struct {
	Crop     string
	District string
	State    string
}

func (VarietyPayload) Stage() StageName { return StageVariety }

func (p VarietyPayload) Messages() []llm.Message {
	return []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: constant.VarietyPromptV1},
		{Role: constant.ChatMessageRoleUser, Content: fmt.Sprintf("फसल: %s\nज़िला: %s\nराज्य: %s", p.Crop, p.District, p.State)},
	}
}
