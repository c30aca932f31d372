package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prsharma/careerchat/internal/core"
	"github.com/prsharma/careerchat/internal/store"
)

// ChatService is the surface the HTTP layer needs from the chat core.
type ChatService interface {
	CreateConversation() (*store.Conversation, error)
	GetConversation(conversationID string) (*store.Conversation, []store.Message, error)
	Reply(ctx context.Context, conversationID, content string) (*store.Message, error)
	Knowledge() ([]store.QAPair, error)
}

type APIHandler struct {
	chatService ChatService
}

func NewAPIHandler(cs ChatService) *APIHandler {
	return &APIHandler{chatService: cs}
}

type CreateConversationRequest struct {
	FirstMessage *string `json:"first_message,omitempty"`
}

type CreateConversationResponse struct {
	*store.Conversation
	Messages []store.Message `json:"messages,omitempty"`
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	conv, err := h.chatService.CreateConversation()
	if err != nil {
		log.Printf("Error creating conversation: %v", err)
		http.Error(w, "Failed to create conversation", http.StatusInternalServerError)
		return
	}

	resp := CreateConversationResponse{Conversation: conv}
	if req.FirstMessage != nil && *req.FirstMessage != "" {
		if _, err := h.chatService.Reply(r.Context(), conv.ID, *req.FirstMessage); err != nil {
			log.Printf("Error replying to first message in conversation %s: %v", conv.ID, err)
		}
		_, messages, err := h.chatService.GetConversation(conv.ID)
		if err != nil {
			log.Printf("Error loading messages for conversation %s: %v", conv.ID, err)
		}
		resp.Messages = messages
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

type GetConversationResponse struct {
	*store.Conversation
	Messages []store.Message `json:"messages"`
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conv, messages, err := h.chatService.GetConversation(conversationID)
	if err != nil {
		log.Printf("Error getting conversation %s: %v", conversationID, err)
		http.Error(w, "Failed to get conversation", http.StatusInternalServerError)
		return
	}
	if conv == nil {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(GetConversationResponse{Conversation: conv, Messages: messages})
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Message content cannot be empty", http.StatusBadRequest)
		return
	}

	modelMsg, err := h.chatService.Reply(r.Context(), conversationID, req.Content)
	if err != nil {
		if errors.Is(err, core.ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
		} else {
			log.Printf("Error posting message to conversation %s: %v", conversationID, err)
			http.Error(w, "Failed to post message", http.StatusInternalServerError)
		}
		return
	}
	json.NewEncoder(w).Encode(modelMsg)
}

func (h *APIHandler) KnowledgeHandler(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.chatService.Knowledge()
	if err != nil {
		log.Printf("Error listing knowledge pairs: %v", err)
		http.Error(w, "Failed to list knowledge", http.StatusInternalServerError)
		return
	}
	if pairs == nil {
		pairs = []store.QAPair{}
	}
	json.NewEncoder(w).Encode(map[string]any{"results": pairs, "count": len(pairs)})
}
