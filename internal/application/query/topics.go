package query

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/application/reply"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON TOPICS QUERY
// Asks the topic generator for five lesson topic suggestions. Failure is a
// normal outcome: the teacher menu shows the message and moves on.
// ══════════════════════════════════════════════════════════════════════════════

// TopicGenerator produces lesson topic suggestions.
type TopicGenerator interface {
	GenerateTopics(ctx context.Context, subject, theme string) (string, error)
}

// GenerateTopicsQuery carries the subject and theme to suggest topics for.
type GenerateTopicsQuery struct {
	Subject string `validate:"required"`
	Theme   string `validate:"required"`
}

// Validate validates the query.
func (q GenerateTopicsQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("generate_topics: %w", err)
	}
	return nil
}

// GenerateTopicsHandler handles the GenerateTopicsQuery.
type GenerateTopicsHandler struct {
	generator TopicGenerator
	enabled   bool
}

// NewGenerateTopicsHandler creates a new GenerateTopicsHandler. With
// enabled false every request degrades to the unavailability message.
func NewGenerateTopicsHandler(generator TopicGenerator, enabled bool) *GenerateTopicsHandler {
	return &GenerateTopicsHandler{generator: generator, enabled: enabled}
}

// Handle asks for topic suggestions.
func (h *GenerateTopicsHandler) Handle(ctx context.Context, q GenerateTopicsQuery) (reply.R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if !h.enabled || h.generator == nil {
		return reply.R{
			"success": false,
			"content": "[ERRO DE API] A geração de tópicos está desativada no servidor.",
		}, nil
	}

	content, err := h.generator.GenerateTopics(ctx, q.Subject, q.Theme)
	if err != nil {
		return reply.R{
			"success": false,
			"content": fmt.Sprintf("[ERRO NA CONEXÃO DA API] A IA não pôde ser contatada. Detalhe do erro: %v", err),
		}, nil
	}
	return reply.R{"success": true, "content": content}, nil
}
