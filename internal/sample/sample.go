// Package sample defines the evaluation input data model: the Sample a
// metric scores, its conversational Messages, and ToolCall records used by
// the agent metrics.
package sample

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Role tags a Message's speaker in a multi-turn conversation.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
	RoleTool  Role = "tool"
)

// ToolCall is one invocation an AI message made against a tool.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// Equal reports whether two tool calls have the same name and arguments.
// Arguments are compared with reflect.DeepEqual since a value's dynamic
// type may be a slice or map, which a plain != comparison panics on.
func (t ToolCall) Equal(other ToolCall) bool {
	if t.Name != other.Name {
		return false
	}
	if len(t.Arguments) != len(other.Arguments) {
		return false
	}
	for k, v := range t.Arguments {
		ov, ok := other.Arguments[k]
		if !ok || !reflect.DeepEqual(ov, v) {
			return false
		}
	}
	return true
}

// Message is one turn in a conversation. Exactly the fields relevant to its
// Role are meaningful: ToolCalls only appears on AI messages.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall
}

func Human(content string) Message { return Message{Role: RoleHuman, Content: content} }
func Tool(content string) Message  { return Message{Role: RoleTool, Content: content} }
func AI(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAI, Content: content, ToolCalls: calls}
}

// Sample is the unit of evaluation. All fields are optional; individual
// metrics declare which fields they require and return a zero score with a
// warning when a required field is absent (see the missing-input rule in
// package metric). Sample is immutable after construction via Builder.
type Sample struct {
	id                 string
	userInput          string
	response           string
	reference          string
	retrievedContexts  []string
	userInputMessages  []Message
	referenceToolCalls []ToolCall
	referenceTopics    []string
}

// ID uniquely identifies the sample within an evaluation run, for
// correlating lifecycle events (notify.MetricEvaluationContext.SampleID)
// back to the input that produced them.
func (s Sample) ID() string                   { return s.id }
func (s Sample) UserInput() string            { return s.userInput }
func (s Sample) Response() string             { return s.response }
func (s Sample) Reference() string            { return s.reference }
func (s Sample) RetrievedContexts() []string  { return append([]string(nil), s.retrievedContexts...) }
func (s Sample) UserInputMessages() []Message { return append([]Message(nil), s.userInputMessages...) }
func (s Sample) ReferenceToolCalls() []ToolCall {
	return append([]ToolCall(nil), s.referenceToolCalls...)
}
func (s Sample) ReferenceTopics() []string { return append([]string(nil), s.referenceTopics...) }

// HasReference reports whether Reference is non-blank, the condition every
// reference-requiring metric checks before falling back to a zero score.
func (s Sample) HasReference() bool { return strings.TrimSpace(s.reference) != "" }

// JoinedContexts renders RetrievedContexts as a single block, the form every
// context-consuming LLM-judge prompt embeds.
func (s Sample) JoinedContexts() string {
	return strings.Join(s.retrievedContexts, "\n")
}

// Builder assembles a Sample. The zero value is ready to use.
type Builder struct {
	s Sample
}

func NewBuilder() *Builder { return &Builder{} }

// ID sets an explicit sample ID. When left unset, Build generates one.
func (b *Builder) ID(v string) *Builder        { b.s.id = v; return b }
func (b *Builder) UserInput(v string) *Builder { b.s.userInput = v; return b }
func (b *Builder) Response(v string) *Builder  { b.s.response = v; return b }
func (b *Builder) Reference(v string) *Builder { b.s.reference = v; return b }
func (b *Builder) RetrievedContexts(v ...string) *Builder {
	b.s.retrievedContexts = append([]string(nil), v...)
	return b
}
func (b *Builder) UserInputMessages(v ...Message) *Builder {
	b.s.userInputMessages = append([]Message(nil), v...)
	return b
}
func (b *Builder) ReferenceToolCalls(v ...ToolCall) *Builder {
	b.s.referenceToolCalls = append([]ToolCall(nil), v...)
	return b
}
func (b *Builder) ReferenceTopics(v ...string) *Builder {
	b.s.referenceTopics = append([]string(nil), v...)
	return b
}

func (b *Builder) Build() Sample {
	if b.s.id == "" {
		b.s.id = uuid.New().String()
	}
	return b.s
}
