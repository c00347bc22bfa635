package llm

import (
	"fmt"
	"strings"

	"gighunt-engine/internal/domain"
)

// Verdict is the JSON object the model is asked to return.
type Verdict struct {
	IsEasy           bool     `json:"is_easy" jsonschema_description:"true when the work can be delegated to a code-generating assistant and finished in a few hours"`
	Confidence       *float64 `json:"confidence" jsonschema_description:"confidence in is_easy between 0 and 1"`
	Category         string   `json:"category" jsonschema_description:"short work-type label such as n8n workflow or csv script"`
	Difficulty       int      `json:"difficulty" jsonschema_description:"execution difficulty from 1 (trivial) to 5 (very hard)"`
	Requirements     []string `json:"requirements" jsonschema_description:"concrete deliverables the client asks for"`
	EstimatedHours   float64  `json:"estimated_hours"`
	EstimatedPrice   string   `json:"estimated_price" jsonschema_description:"fair price range in USD, for example $50-100"`
	GenerationPrompt string   `json:"generation_prompt" jsonschema_description:"prompt to hand to a code assistant to produce the deliverable"`
	DeliveryGuidance string   `json:"delivery_guidance" jsonschema_description:"how to hand the result to the client"`
	RejectionReason  string   `json:"rejection_reason" jsonschema_description:"why the job is not easy; empty when is_easy is true"`
}

const schemaName = "posting_verdict"

const rubric = `You triage freelance job postings for a solo operator who delivers work mostly by prompting a code assistant.

EASY jobs (is_easy=true): small automation workflows (n8n, Zapier, Make), chatbot or auto-reply flows (ManyChat, simple FAQ bots), one-off scripts (CSV cleanup, simple scraping, spreadsheet formulas, Apps Script), prompt writing. Deliverable fits in a few hours and needs no long-term maintenance.

HARD jobs (is_easy=false): enterprise or multi-tenant systems, machine learning models, real-time or highly scalable backends, mobile or full-stack apps, blockchain, trading bots, senior or long-term roles, anything needing deep domain expertise.

Answer with a single JSON object and nothing else, with these keys:
is_easy, confidence, category, difficulty, requirements, estimated_hours, estimated_price, generation_prompt, delivery_guidance, rejection_reason.
confidence is a number between 0 and 1. difficulty is an integer from 1 to 5.`

var verdictSchema = GenerateSchema[Verdict]()

// BuildPrompt renders the classification request for one posting.
func BuildPrompt(p domain.Posting) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", p.Source)
	fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(p.Title))
	if bt := strings.TrimSpace(p.BudgetText); bt != "" {
		fmt.Fprintf(&b, "Budget: %s\n", bt)
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		fmt.Fprintf(&b, "Description:\n%s\n", d)
	}
	return Prompt{
		System:     rubric,
		User:       b.String(),
		SchemaName: schemaName,
		Schema:     verdictSchema,
	}
}
