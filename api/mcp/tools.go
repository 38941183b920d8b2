package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/client/career"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
)

var (
	careerChatToolName    = "career_chat"
	careerChatDescription = "Ask the career assistant a question. Pass conversation_id from a previous reply to continue that conversation. Returns the full reply once the stream has finished."

	tutorChatToolName    = "tutor_chat"
	tutorChatDescription = "Ask the course tutor a question about a course, optionally scoped to a lesson. Pass conversation_id from a previous reply to continue that conversation."

	tutorSuggestionsToolName    = "tutor_suggestions"
	tutorSuggestionsDescription = "List starter questions a student could ask about a lesson."
)

// CareerChatInput represents the input arguments for the career_chat tool.
type CareerChatInput struct {
	Message        string   `json:"message" jsonschema:"the question to ask the career assistant"`
	ConversationID string   `json:"conversation_id,omitempty" jsonschema:"conversation to continue"`
	SelectedChips  []string `json:"selected_chips,omitempty" jsonschema:"quick-reply chips the student selected"`
}

// TutorChatInput represents the input arguments for the tutor_chat tool.
type TutorChatInput struct {
	CourseID       string `json:"course_id" jsonschema:"the course the question is about"`
	LessonID       string `json:"lesson_id,omitempty" jsonschema:"the lesson the question is about"`
	Message        string `json:"message" jsonschema:"the question to ask the tutor"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation to continue"`
}

// TutorSuggestionsInput represents the input arguments for the tutor_suggestions tool.
type TutorSuggestionsInput struct {
	LessonID string `json:"lesson_id" jsonschema:"the lesson to suggest questions for"`
}

// ChatOutput is the collected result of one streamed turn.
type ChatOutput struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Blocked        bool   `json:"blocked,omitempty"`
}

// SuggestionsOutput represents the output of the tutor_suggestions tool.
type SuggestionsOutput struct {
	LessonID    string   `json:"lesson_id"`
	LessonTitle string   `json:"lesson_title,omitempty"`
	Questions   []string `json:"questions"`
}

func (s *Server) handleCareerChat(ctx context.Context, _ *mcp.CallToolRequest, input CareerChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	s.logger.Debug("MCP career chat request",
		"conversation_id", input.ConversationID,
		"chips", len(input.SelectedChips),
	)

	t := &chatstream.Transcript{}
	s.config.Career.Chat(ctx, career.ChatRequest{
		ConversationID: input.ConversationID,
		Message:        input.Message,
		SelectedChips:  input.SelectedChips,
	}, t.Handlers(chatstream.Handlers{}))

	return s.chatResult(t)
}

func (s *Server) handleTutorChat(ctx context.Context, _ *mcp.CallToolRequest, input TutorChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	s.logger.Debug("MCP tutor chat request",
		"conversation_id", input.ConversationID,
		"course_id", input.CourseID,
		"lesson_id", input.LessonID,
	)

	t := &chatstream.Transcript{}
	s.config.Tutor.Chat(ctx, tutor.ChatRequest{
		ConversationID: input.ConversationID,
		CourseID:       input.CourseID,
		LessonID:       input.LessonID,
		Message:        input.Message,
	}, t.Handlers(chatstream.Handlers{}))

	return s.chatResult(t)
}

func (s *Server) handleTutorSuggestions(ctx context.Context, _ *mcp.CallToolRequest, input TutorSuggestionsInput) (*mcp.CallToolResult, SuggestionsOutput, error) {
	suggestions, err := s.config.Tutor.Suggestions(ctx, input.LessonID)
	if err != nil {
		s.logger.Error("failed to fetch suggestions", "lesson_id", input.LessonID, "error", err)
		return errorResult(fmt.Sprintf("Failed to fetch suggestions: %v", err)), SuggestionsOutput{}, nil
	}

	output := SuggestionsOutput{
		LessonID:    suggestions.LessonID,
		LessonTitle: suggestions.LessonTitle,
		Questions:   suggestions.Questions,
	}
	return s.jsonResult(output), output, nil
}

// chatResult turns a finished transcript into a tool result. A stream error
// becomes an error result carrying the error message.
func (s *Server) chatResult(t *chatstream.Transcript) (*mcp.CallToolResult, ChatOutput, error) {
	if err := t.Err(); err != nil {
		s.logger.Warn("chat stream failed", "error", err, "tokens", len(t.Tokens()))
		return errorResult(fmt.Sprintf("Chat failed: %v", err)), ChatOutput{}, nil
	}

	output := ChatOutput{Response: t.Content()}
	if completion := t.Completion(); completion != nil {
		output.ConversationID = completion.ConversationID()
		output.MessageID = completion.MessageID()
		output.Intent = completion.Intent()
		output.Blocked = completion.Blocked()
		if output.Blocked && output.Response == "" {
			output.Response = completion.String("message")
		}
	}

	return s.jsonResult(output), output, nil
}

// jsonResult serializes the structured output as JSON for the text field,
// for clients that ignore structured content.
func (s *Server) jsonResult(output any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		s.logger.Error("failed to marshal tool output", "error", err)
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
