package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/llm"
)

// Completer issues single non-streaming chat completions.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, messages []llm.Message) (string, error)
}

const triagePrompt = "You are a triage agent for a kitchen and bedroom remodeling assistant. " +
	"Is the following query related to interior design, home remodeling, furniture, or specifically kitchens/bedrooms? " +
	"Query: '%s'\n" +
	"Answer exactly 'YES' or 'NO'."

// Guardrail decides whether a query is in scope before any retrieval work is
// spent on it.
type Guardrail struct {
	llm Completer
	log *logrus.Logger
}

func NewGuardrail(completer Completer, log *logrus.Logger) *Guardrail {
	return &Guardrail{llm: completer, log: log}
}

// IsOnTopic returns true when the query is in scope. Obvious cases match a
// keyword list without an LLM call; edge cases ask the model for a literal
// YES/NO and are in scope unless the reply contains NO, biasing toward
// over-inclusion. A failed check assumes on-topic so a transient model
// outage cannot refuse every query.
func (g *Guardrail) IsOnTopic(ctx context.Context, query string) bool {
	if containsAny(strings.ToLower(query), relevanceTerms) {
		return true
	}

	reply, err := g.llm.Complete(ctx, "", []llm.Message{
		{Role: llm.RoleUser, Content: fmt.Sprintf(triagePrompt, query)},
	})
	if err != nil {
		g.log.WithError(err).Warn("Relevance check failed, assuming on-topic")
		return true
	}

	return !strings.Contains(strings.ToUpper(strings.TrimSpace(reply)), "NO")
}
