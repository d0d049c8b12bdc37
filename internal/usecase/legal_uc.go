// File: internal/usecase/legal_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"legal-ai-relay/internal/config"
	"legal-ai-relay/internal/domain"
	"legal-ai-relay/internal/domain/model"
	"legal-ai-relay/internal/domain/ports/adapter"
	"legal-ai-relay/internal/infra/i18n"
	"legal-ai-relay/internal/infra/logging"
	"legal-ai-relay/internal/infra/metrics"
)

// Compile-time check
var _ LegalUseCase = (*legalUC)(nil)

type LegalUseCase interface {
	ProcessLegalRequest(ctx context.Context, req model.LegalRequest) (string, error)
	ChatAllowed(chatID string) bool
}

const (
	documentMIME     = "application/pdf"
	documentFilename = "contract.pdf"
)

type legalUC struct {
	fetcher   adapter.DocumentFetcher
	ai        adapter.AIServiceAdapter
	tr        *i18n.Translator
	allowlist model.Allowlist
	policy    string
	dev       bool
	log       *zerolog.Logger
}

func NewLegalUseCase(
	fetcher adapter.DocumentFetcher,
	ai adapter.AIServiceAdapter,
	tr *i18n.Translator,
	allowlist model.Allowlist,
	policy string,
	dev bool,
	logger *zerolog.Logger,
) *legalUC {
	if policy == "" {
		policy = config.PolicyFail
	}
	return &legalUC{
		fetcher:   fetcher,
		ai:        ai,
		tr:        tr,
		allowlist: allowlist,
		policy:    policy,
		dev:       dev,
		log:       logger,
	}
}

func (u *legalUC) ChatAllowed(chatID string) bool {
	return u.allowlist.Contains(strings.TrimSpace(chatID))
}

func (u *legalUC) ProcessLegalRequest(ctx context.Context, req model.LegalRequest) (string, error) {
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "LegalUC.ProcessLegalRequest")()

	chatID := strings.TrimSpace(req.ChatID)
	if chatID == "" {
		return "", domain.Invalid("chatId required")
	}
	if strings.TrimSpace(req.FileURL) == "" {
		return "", domain.Invalid("fileUrl required")
	}
	if !u.allowlist.Contains(chatID) {
		log.Warn().Msg("chat rejected by allowlist")
		return "", domain.Forbidden()
	}

	doc, err := u.fetcher.Fetch(ctx, req.FileURL)
	if err != nil {
		log.Error().Err(err).Str("file_url", logging.RedactURL(req.FileURL, u.dev)).Msg("document fetch failed")
		return "", domain.FetchFailed(err)
	}
	log.Debug().Int("bytes", len(doc)).Msg("document fetched")

	prompt := BuildLegalPrompt(u.tr, req.Task, req.DealID, doc)

	start := time.Now()
	answer, usage, err := u.ai.Complete(ctx, prompt)
	latency := time.Since(start).Milliseconds()
	metrics.ObserveCompletion(u.ai.Provider(), u.ai.Model(), usage.PromptTokens, usage.CompletionTokens, latency, err == nil)
	if err != nil {
		if u.policy == config.PolicyDegrade {
			log.Error().Err(err).Str("provider", u.ai.Provider()).Msg("ai completion failed, answering with fallback")
			metrics.IncDegraded(u.ai.Provider())
			return u.tr.T(i18n.KeyAIUnavailable), nil
		}
		log.Error().Err(err).Str("provider", u.ai.Provider()).Msg("ai completion failed")
		return "", domain.AIFailed(fmt.Errorf("%w: %w", domain.ErrAIFailed, err))
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		metrics.IncEmptyAnswer(u.ai.Provider())
		log.Warn().Msg("ai returned empty answer")
		return u.tr.T(i18n.KeyEmptyAIResponse), nil
	}
	log.Info().
		Int("tokens_in", usage.PromptTokens).
		Int("tokens_out", usage.CompletionTokens).
		Int64("latency_ms", latency).
		Msg("legal analysis completed")
	return answer, nil
}

// BuildLegalPrompt assembles the multi-part prompt: persona, task line,
// file notice and the document itself.
func BuildLegalPrompt(tr *i18n.Translator, task, dealID string, doc []byte) adapter.Prompt {
	task = strings.TrimSpace(task)
	if task == "" {
		task = tr.T(i18n.KeyNotSpecified)
	}
	dealID = strings.TrimSpace(dealID)
	if dealID == "" {
		dealID = tr.T(i18n.KeyNotSpecified)
	}
	return adapter.Prompt{
		System: tr.SystemPrompt(),
		Parts: []adapter.Part{
			{Kind: adapter.PartText, Text: tr.T(i18n.KeyPromptTask, task, dealID)},
			{Kind: adapter.PartText, Text: tr.T(i18n.KeyPromptFileNotice)},
			{Kind: adapter.PartFile, MIMEType: documentMIME, Filename: documentFilename, Data: doc},
		},
	}
}
