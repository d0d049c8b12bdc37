package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"legal-ai-relay/internal/domain"
	"legal-ai-relay/internal/domain/model"
	"legal-ai-relay/internal/domain/ports/adapter"
	"legal-ai-relay/internal/infra/i18n"
	"legal-ai-relay/internal/infra/logging"
	"legal-ai-relay/internal/infra/metrics"
	"legal-ai-relay/internal/usecase"
)

// Server exposes the webhook endpoint that turns a CRM task into a chat report.
type Server struct {
	legalUC   usecase.LegalUseCase
	chat      adapter.ChatDeliveryAdapter
	tr        *i18n.Translator
	bodyLimit int64
	log       *zerolog.Logger
}

// NewServer constructs the HTTP layer. bodyLimit caps the JSON request body in bytes.
func NewServer(legalUC usecase.LegalUseCase, chat adapter.ChatDeliveryAdapter, tr *i18n.Translator, bodyLimit int64, logger *zerolog.Logger) *Server {
	return &Server{legalUC: legalUC, chat: chat, tr: tr, bodyLimit: bodyLimit, log: logger}
}

// Router builds the chi router with all routes and middlewares attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		Recover(s.log),
		TraceID(),
		RequestLog(s.log),
		middleware.SetHeader("X-Content-Type-Options", "nosniff"),
		middleware.SetHeader("X-Frame-Options", "DENY"),
		middleware.SetHeader("Referrer-Policy", "no-referrer"),
		middleware.SetHeader("Cross-Origin-Resource-Policy", "same-origin"),
		middleware.SetHeader("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"),
	)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)
	r.Get("/legal", s.handleLegalGet)
	r.Post("/legal", s.handleLegal)
	r.Post("/", s.handleLegal)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, s.tr.T(i18n.KeyRootStatus))
}

func (s *Server) handleLegalGet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	writeText(w, http.StatusMethodNotAllowed, s.tr.T(i18n.KeyLegalGetNotAllow))
}

type legalBody struct {
	ChatID  json.RawMessage `json:"chatId"`
	DealID  json.RawMessage `json:"dealId"`
	FileURL string          `json:"fileUrl"`
	Task    string          `json:"task"`
}

func (s *Server) handleLegal(w http.ResponseWriter, r *http.Request) {
	// the CRM does not wait for us; upstream calls run on their own timeouts
	ctx := context.WithoutCancel(r.Context())

	req, err := s.decodeLegal(w, r)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.respondError(ctx, w, "", &domain.Error{Status: http.StatusRequestEntityTooLarge, Message: "request body too large", Err: err})
			return
		}
		s.respondError(ctx, w, req.ChatID, err)
		return
	}
	ctx = logging.WithChatID(ctx, req.ChatID)
	ctx = logging.WithDealID(ctx, req.DealID)

	answer, err := s.legalUC.ProcessLegalRequest(ctx, req)
	if err != nil {
		s.respondError(ctx, w, req.ChatID, err)
		return
	}

	if !s.chat.SendMessage(ctx, req.ChatID, answer) {
		l := logging.With(ctx, s.log)
		l.Warn().Msg("analysis delivered to caller but chat delivery failed")
	}
	metrics.IncLegalRequest(http.StatusOK)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeLegal parses and validates the webhook body; every error is a *domain.Error
// except a body over the limit, which surfaces as *http.MaxBytesError.
// ChatID is kept on validation failures so the chat can still be notified.
func (s *Server) decodeLegal(w http.ResponseWriter, r *http.Request) (model.LegalRequest, error) {
	if s.bodyLimit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit)
	}
	var body legalBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return model.LegalRequest{}, err
		}
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return model.LegalRequest{}, domain.Invalid(fmt.Sprintf("%s must be a string", te.Field))
		}
		return model.LegalRequest{}, domain.Invalid("invalid JSON body")
	}

	chatID, err := model.NormalizeChatID(body.ChatID)
	if err != nil {
		return model.LegalRequest{}, err
	}
	req := model.LegalRequest{
		ChatID:  chatID,
		DealID:  model.NormalizeDealID(body.DealID),
		FileURL: body.FileURL,
		Task:    body.Task,
	}
	if err := req.Validate(); err != nil {
		return model.LegalRequest{ChatID: chatID}, err
	}
	return req, nil
}

// respondError logs the internal cause, notifies the chat when it is allowed to
// receive messages and writes the public status/message pair.
func (s *Server) respondError(ctx context.Context, w http.ResponseWriter, chatID string, err error) {
	status := domain.StatusOf(err)
	msg := domain.PublicMessage(err)

	l := logging.With(ctx, s.log)
	ev := l.Warn()
	if status >= http.StatusInternalServerError {
		ev = l.Error()
	}
	cause := err
	var de *domain.Error
	if errors.As(err, &de) && de.Err != nil {
		cause = de.Err
	}
	ev.Err(cause).Int("status", status).Str("public", msg).Msg("legal request failed")

	if chatID != "" && s.legalUC.ChatAllowed(chatID) {
		if !s.chat.SendMessage(ctx, chatID, s.tr.T(i18n.KeyAnalysisError, msg)) {
			l.Warn().Msg("error notice was not delivered")
		}
	}
	metrics.IncLegalRequest(status)
	writeError(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
