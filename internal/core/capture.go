package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	minCaptureQuestionLen = 10
	minCaptureAnswerLen   = 20
	dedupProbeLen         = 50
)

// Greetings and closings are not worth remembering.
var captureStopWords = []string{"hello", "hi", "hey", "goodbye", "bye", "thanks", "thank you"}

// shouldCapture is the pure part of the auto-capture heuristic: length
// floors plus the greeting filter. The duplicate check needs the store and
// lives in RecordExchange.
func shouldCapture(question, answer string) bool {
	if len(question) < minCaptureQuestionLen || len(answer) < minCaptureAnswerLen {
		return false
	}
	lower := strings.ToLower(question)
	for _, w := range captureStopWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

// RecordExchange decides whether a finished exchange is worth keeping and,
// if so, upserts it into the knowledge store. Persistence is best-effort:
// every failure is logged and swallowed so capture can never break the
// user-facing answer.
func (s *ChatService) RecordExchange(ctx context.Context, question, answer string) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if !shouldCapture(question, answer) {
		return
	}

	// Approximate dedup: a keyword hit on the question's first 50 bytes is
	// treated as "already answered".
	probe := question
	if len(probe) > dedupProbeLen {
		probe = probe[:dedupProbeLen]
	}
	existing, err := s.dbStore.SearchQA(probe, 3)
	if err != nil {
		s.logger.Warn("capture dedup check failed", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}

	if _, err := s.dbStore.UpsertQA(question, answer); err != nil {
		s.logger.Warn("failed to capture qa pair", zap.Error(err))
		return
	}
	s.logger.Info("captured qa pair", zap.String("question", probe))
}
