package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/ragpipe/internal/core/domain"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
	"github.com/custodia-labs/ragpipe/internal/core/ports/driving"
	"github.com/custodia-labs/ragpipe/internal/vectorstore"
)

// contextSeparator joins retrieved chunk texts into one context block.
const contextSeparator = "\n\n---\n\n"

// systemInstruction fixes the assistant's behavior: answer from context,
// decline rather than fabricate.
const systemInstruction = "You are a helpful assistant. Use the following pieces of context to answer the user's question. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer."

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// queryService implements the QueryService interface.
type queryService struct {
	store      *vectorstore.Store
	completion driven.CompletionService
	defaultK   int
	logger     *slog.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(
	store *vectorstore.Store,
	completion driven.CompletionService,
	defaultK int,
	logger *slog.Logger,
) driving.QueryService {
	if defaultK <= 0 {
		defaultK = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{
		store:      store,
		completion: completion,
		defaultK:   defaultK,
		logger:     logger,
	}
}

// Answer retrieves the k most relevant chunks, assembles them into a context
// block in rank order and asks the completion model.
//
// Zero retrieved chunks do not short-circuit the call: the model is still
// asked, with an empty context, and is expected to say it doesn't know.
func (s *queryService) Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrInvalidQuestion
	}
	if k <= 0 {
		k = s.defaultK
	}

	retrieved, err := s.store.Nearest(ctx, question, k)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(retrieved))
	sources := make([]map[string]any, len(retrieved))
	for i, rc := range retrieved {
		texts[i] = rc.Text
		sources[i] = rc.Metadata
	}
	contextBlock := strings.Join(texts, contextSeparator)

	prompt := driven.Prompt{
		{Role: driven.RoleSystem, Content: systemInstruction},
		{Role: driven.RoleSystem, Content: "Context:\n" + contextBlock},
		{Role: driven.RoleHuman, Content: question},
	}

	answer, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCompletion, err)
	}

	s.logger.Info("query answered", "retrieved", len(retrieved), "k", k)
	return &domain.QueryResult{
		Answer:  answer,
		Sources: sources,
	}, nil
}
