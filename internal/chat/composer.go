package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/llm"
)

const answerSystemPrompt = "You are an expert interior design consultant. " +
	"Use the provided context to answer the user's question. " +
	"Be descriptive and helpful. If you mention specific products, use their names. " +
	"If the context does not contain the answer, say you don't have enough information." +
	"\n\nContext:\n%s"

const rewriteSystemPrompt = "Given the chat history, rewrite the new question to be standalone " +
	"and searchable. Just return the rewritten question."

// apologyMessage replaces the answer when generation fails; images already
// assembled are still returned to the caller.
const apologyMessage = "I'm sorry, I'm having trouble with my architectural brain right now."

// Completer issues single non-streaming chat completions.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, messages []llm.Message) (string, error)
}

// Composer grounds the language model in retrieved context and keeps
// follow-up questions searchable.
type Composer struct {
	llm Completer
	log *logrus.Logger
}

func NewComposer(completer Completer, log *logrus.Logger) *Composer {
	return &Composer{llm: completer, log: log}
}

// Compose generates the answer from the grounding context, the original
// question and any prior turns. Generation failures are non-fatal and yield
// the fixed apology string.
func (c *Composer) Compose(ctx context.Context, contextText, question string, history []llm.Message) string {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	answer, err := c.llm.Complete(ctx, fmt.Sprintf(answerSystemPrompt, contextText), messages)
	if err != nil {
		c.log.WithError(err).Error("Answer generation failed")
		return apologyMessage
	}
	return answer
}

// Rewrite turns a follow-up question into a standalone search query using
// the conversation history. With no history (or on failure) the original
// question is used verbatim.
func (c *Composer) Rewrite(ctx context.Context, question string, history []llm.Message) string {
	if len(history) == 0 {
		return question
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: "New question: " + question})

	rewritten, err := c.llm.Complete(ctx, rewriteSystemPrompt, messages)
	if err != nil {
		c.log.WithError(err).Warn("Question rewrite failed, using original")
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	return rewritten
}
