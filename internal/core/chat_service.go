package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/prsharma/careerchat/internal/notify"
	"github.com/prsharma/careerchat/internal/profile"
	"github.com/prsharma/careerchat/internal/store"
)

const (
	historyWindow = 5
	maxToolRounds = 8

	fallbackReply = "I'm sorry, I encountered an error while processing your request."
)

var ErrConversationNotFound = errors.New("conversation not found")

// ChatService runs one chat turn end to end: history, retrieval, the
// completion/tool loop, persistence and auto-capture.
type ChatService struct {
	dbStore       *store.SQLiteStore
	ragService    *RAGService
	llm           ChatCompleter
	notifier      notify.Notifier
	persona       *profile.Profile
	retrievalTopK int
	logger        *zap.Logger
}

func NewChatService(db *store.SQLiteStore, rag *RAGService, llm ChatCompleter, notifier notify.Notifier, persona *profile.Profile, retrievalTopK int, logger *zap.Logger) *ChatService {
	return &ChatService{
		dbStore:       db,
		ragService:    rag,
		llm:           llm,
		notifier:      notifier,
		persona:       persona,
		retrievalTopK: retrievalTopK,
		logger:        logger,
	}
}

func (s *ChatService) CreateConversation() (*store.Conversation, error) {
	return s.dbStore.CreateConversation()
}

func (s *ChatService) GetConversation(conversationID string) (*store.Conversation, []store.Message, error) {
	conv, err := s.dbStore.GetConversation(conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, nil, nil // Not found
	}

	messages, err := s.dbStore.GetMessages(conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return conv, messages, nil
}

func (s *ChatService) Knowledge() ([]store.QAPair, error) {
	return s.dbStore.AllQAPairs()
}

// Reply handles one user message: it stores the message, produces the model
// reply, stores that too and finally offers the exchange to auto-capture.
func (s *ChatService) Reply(ctx context.Context, conversationID, userContent string) (*store.Message, error) {
	conv, err := s.dbStore.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify conversation: %w", err)
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	userMsg := store.Message{
		ConversationID: conversationID,
		Sender:         "user",
		Content:        userContent,
	}
	if err := s.dbStore.CreateMessage(&userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	reply, err := s.generateReply(ctx, conversationID, userContent)
	if err != nil {
		s.logger.Error("failed to generate reply", zap.String("conversation_id", conversationID), zap.Error(err))
		reply = fallbackReply
	}

	modelMsg := store.Message{
		ConversationID: conversationID,
		Sender:         "model",
		Content:        reply,
	}
	if err := s.dbStore.CreateMessage(&modelMsg); err != nil {
		return nil, fmt.Errorf("failed to store model message: %w", err)
	}

	if err == nil {
		s.RecordExchange(ctx, userContent, reply)
	}
	return &modelMsg, nil
}

// generateReply builds the prompt and runs the completion loop, executing
// tool calls until the model produces a final text answer.
func (s *ChatService) generateReply(ctx context.Context, conversationID, userContent string) (string, error) {
	history, err := s.dbStore.GetLastNMessages(conversationID, historyWindow)
	if err != nil {
		s.logger.Warn("failed to load history, proceeding without it", zap.Error(err))
		history = nil
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt()},
	}
	if retrieved := s.ragService.GetContext(ctx, userContent, s.retrievalTopK); retrieved != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: "Use the following retrieved context if relevant. If it's not helpful, ignore it.\n\n" + retrieved,
		})
	}
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Sender == "model" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userContent})

	tools := chatTools()
	for round := 0; round < maxToolRounds; round++ {
		reply, finishReason, err := s.llm.ChatCompletion(ctx, messages, tools)
		if err != nil {
			return "", err
		}
		if finishReason != openai.FinishReasonToolCalls {
			return strings.TrimSpace(reply.Content), nil
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    s.dispatchTool(ctx, call),
				ToolCallID: call.ID,
			})
		}
	}
	return "", fmt.Errorf("model did not finish after %d tool rounds", maxToolRounds)
}

func (s *ChatService) systemPrompt() string {
	name := s.persona.Name
	var b strings.Builder
	fmt.Fprintf(&b, "You are acting as %s. You are answering questions on %s's website, "+
		"particularly questions related to %s's career, background, skills and experience. "+
		"Your responsibility is to represent %s for interactions on the website as faithfully as possible. "+
		"You are given a summary of %s's background and LinkedIn profile which you can use to answer questions. "+
		"Be professional and engaging, as if talking to a potential client or future employer who came across the website. "+
		"If you don't know the answer to any question, use your record_unknown_question tool to record the question that you couldn't answer, even if it's about something trivial or unrelated to career. "+
		"If the user is engaging in discussion, try to steer them towards getting in touch via email; ask for their email and record it using your record_user_details tool. ",
		name, name, name, name, name)
	fmt.Fprintf(&b, "\n\n## Summary:\n%s\n\n## LinkedIn Profile:\n%s\n\n", s.persona.Summary, s.persona.LinkedIn)
	fmt.Fprintf(&b, "With this context, please chat with the user, always staying in character as %s.", name)
	b.WriteString("\n\nAdditionally, you have access to tools to manage a knowledge base of common questions and answers: " +
		"use search_common_qa to look up existing answers and add_common_qa to store good answers for future use. " +
		"IMPORTANT: Always search the knowledge base first when answering questions, and if you provide a comprehensive answer, " +
		"use add_common_qa to store it for future reference. This helps build a knowledge base of frequently asked questions.")
	return b.String()
}
