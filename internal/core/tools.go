package core

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/prsharma/careerchat/internal/store"
)

// The closed set of tools the model may call. Dispatch is a typed switch
// over these names; anything else is answered with an empty result.
const (
	toolRecordUserDetails     = "record_user_details"
	toolRecordUnknownQuestion = "record_unknown_question"
	toolAddCommonQA           = "add_common_qa"
	toolSearchCommonQA        = "search_common_qa"
)

func chatTools() []openai.Tool {
	return []openai.Tool{
		functionTool(toolRecordUserDetails,
			"Use this tool to record that a user is interested in being in touch and provided an email address",
			jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"email": {Type: jsonschema.String, Description: "The email address of this user"},
					"name":  {Type: jsonschema.String, Description: "The user's name, if they provided it"},
					"notes": {Type: jsonschema.String, Description: "Any additional information about the conversation that's worth recording to give context"},
				},
				Required: []string{"email"},
			}),
		functionTool(toolRecordUnknownQuestion,
			"Always use this tool to record any question that couldn't be answered as you didn't know the answer",
			jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question": {Type: jsonschema.String, Description: "The question that couldn't be answered"},
				},
				Required: []string{"question"},
			}),
		functionTool(toolAddCommonQA,
			"Upsert a common Q&A pair into the knowledge base for future reuse.",
			jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question": {Type: jsonschema.String, Description: "Canonical user question"},
					"answer":   {Type: jsonschema.String, Description: "Preferred answer to return"},
				},
				Required: []string{"question", "answer"},
			}),
		functionTool(toolSearchCommonQA,
			"Search the knowledge base for similar or matching Q&A by keyword.",
			jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query": {Type: jsonschema.String, Description: "Search query (keywords)"},
					"top_k": {Type: jsonschema.Integer, Description: "Max results to return"},
				},
				Required: []string{"query"},
			}),
	}
}

func functionTool(name, description string, params jsonschema.Definition) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

// dispatchTool executes one tool call and returns the JSON payload echoed
// back to the model. Tool failures are reported to the model as a payload,
// not raised, so a bad call cannot abort the turn.
func (s *ChatService) dispatchTool(ctx context.Context, call openai.ToolCall) string {
	s.logger.Info("tool called", zap.String("tool", call.Function.Name))

	switch call.Function.Name {
	case toolRecordUserDetails:
		var args struct {
			Email string `json:"email"`
			Name  string `json:"name"`
			Notes string `json:"notes"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		if args.Name == "" {
			args.Name = "Name not provided"
		}
		if args.Notes == "" {
			args.Notes = "not provided"
		}
		s.notify(fmt.Sprintf("Recording %s with email %s and notes %s", args.Name, args.Email, args.Notes))
		return `{"recorded": "ok"}`

	case toolRecordUnknownQuestion:
		var args struct {
			Question string `json:"question"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		s.notify(fmt.Sprintf("Recording %s", args.Question))
		return `{"recorded": "ok"}`

	case toolAddCommonQA:
		var args struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		updatedAt, err := s.dbStore.UpsertQA(args.Question, args.Answer)
		if err != nil {
			return toolError(err)
		}
		return toolPayload(map[string]any{"status": "ok", "updated_at": updatedAt})

	case toolSearchCommonQA:
		var args struct {
			Query string `json:"query"`
			TopK  int    `json:"top_k"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return toolError(err)
		}
		if args.TopK <= 0 {
			args.TopK = 3
		}
		results, err := s.dbStore.SearchQA(args.Query, args.TopK)
		if err != nil {
			return toolError(err)
		}
		if results == nil {
			results = []store.QAPair{}
		}
		return toolPayload(map[string]any{"results": results})

	default:
		s.logger.Warn("model requested unknown tool", zap.String("tool", call.Function.Name))
		return "{}"
	}
}

func (s *ChatService) notify(text string) {
	if err := s.notifier.Push(text); err != nil {
		s.logger.Warn("push notification failed", zap.Error(err))
	}
}

func toolPayload(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(err)
	}
	return string(data)
}

func toolError(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}
