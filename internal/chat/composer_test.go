package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/remodela/remodela-backend/internal/llm"
)

type fakeCompleter struct {
	reply        string
	err          error
	calls        int
	systemPrompt string
	messages     []llm.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt string, messages []llm.Message) (string, error) {
	f.calls++
	f.systemPrompt = systemPrompt
	f.messages = messages
	return f.reply, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestComposeEmbedsContextInSystemPrompt(t *testing.T) {
	completer := &fakeCompleter{reply: "The Urban kitchen uses plywood."}
	composer := NewComposer(completer, quietLogger())

	answer := composer.Compose(context.Background(), "Product: Urban Kitchen", "what material?", nil)

	assert.Equal(t, "The Urban kitchen uses plywood.", answer)
	assert.Contains(t, completer.systemPrompt, "Product: Urban Kitchen")
	assert.Contains(t, completer.systemPrompt, "interior design consultant")
}

func TestComposeAppendsQuestionAfterHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	composer := NewComposer(completer, quietLogger())

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "show me kitchens"},
		{Role: llm.RoleAssistant, Content: "here are some"},
	}
	composer.Compose(context.Background(), "ctx", "which is cheapest?", history)

	assert.Len(t, completer.messages, 3)
	assert.Equal(t, "which is cheapest?", completer.messages[2].Content)
	assert.Equal(t, llm.RoleUser, completer.messages[2].Role)
}

func TestComposeReturnsApologyOnFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	composer := NewComposer(completer, quietLogger())

	answer := composer.Compose(context.Background(), "ctx", "question", nil)

	assert.Equal(t, "I'm sorry, I'm having trouble with my architectural brain right now.", answer)
}

func TestRewriteSkipsWithoutHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "should not be used"}
	composer := NewComposer(completer, quietLogger())

	result := composer.Rewrite(context.Background(), "show me kitchens", nil)

	assert.Equal(t, "show me kitchens", result)
	assert.Zero(t, completer.calls)
}

func TestRewriteUsesHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "  price of the Urban kitchen layout  "}
	composer := NewComposer(completer, quietLogger())

	history := []llm.Message{{Role: llm.RoleUser, Content: "show me the Urban kitchen"}}
	result := composer.Rewrite(context.Background(), "how much is it?", history)

	assert.Equal(t, "price of the Urban kitchen layout", result)
	assert.Contains(t, completer.messages[len(completer.messages)-1].Content, "how much is it?")
}

func TestRewriteFallsBackOnError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("timeout")}
	composer := NewComposer(completer, quietLogger())

	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
	result := composer.Rewrite(context.Background(), "how much is it?", history)

	assert.Equal(t, "how much is it?", result)
}

func TestRewriteFallsBackOnEmptyReply(t *testing.T) {
	completer := &fakeCompleter{reply: "   "}
	composer := NewComposer(completer, quietLogger())

	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
	result := composer.Rewrite(context.Background(), "how much is it?", history)

	assert.Equal(t, "how much is it?", result)
}
