package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/skillstream/pkg/utils"
)

// Messages that trigger scripted failure modes.
const (
	magicError   = "!error"
	magicBlocked = "!blocked"
)

const (
	msgAuthRequired      = "Authentication required. Please log in again."
	msgInvalidJSON       = "Invalid JSON"
	msgMessageRequired   = "Message is required"
	msgTutorFields       = "Missing required fields: courseId and message"
	msgLessonRequired    = "Missing required field: lessonId"
	msgFeedbackFields    = "Missing required fields: conversationId, messageIndex, rating"
	msgInvalidRating     = "Invalid rating. Must be 1 (thumbs up) or -1 (thumbs down)"
	msgUnknownConv       = "Conversation not found or access denied"
	msgCourseParam       = "Missing courseId parameter"
	msgProgressFields    = "Missing required fields: courseId, lessonId, status"
	msgInvalidStatus     = "Invalid status. Must be: not_started, in_progress, or completed"
	msgAIServiceError    = "AI service error"
	msgGuardrailResponse = "I can only help with questions about your career and your courses. Let's get back to that."
)

var endpoints = []string{
	"/chat",
	"/career-ai-chat",
	"/ai-tutor-chat",
	"/ai-tutor-suggestions",
	"/ai-tutor-feedback",
	"/ai-tutor-progress",
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Endpoints []string  `json:"endpoints"`
	Timestamp time.Time `json:"timestamp"`
}

type careerChatRequest struct {
	ConversationID string   `json:"conversationId"`
	Message        string   `json:"message"`
	SelectedChips  []string `json:"selectedChips"`
}

type tutorChatRequest struct {
	ConversationID string `json:"conversationId"`
	CourseID       string `json:"courseId"`
	LessonID       string `json:"lessonId"`
	Message        string `json:"message"`
}

type suggestionsRequest struct {
	LessonID string `json:"lessonId"`
}

type feedbackRequest struct {
	ConversationID string `json:"conversationId"`
	MessageIndex   *int   `json:"messageIndex"`
	Rating         int    `json:"rating"`
	FeedbackText   string `json:"feedbackText"`
}

type progressRequest struct {
	CourseID string `json:"courseId"`
	LessonID string `json:"lessonId"`
	Status   string `json:"status"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "ok",
		Service:   serviceName,
		Version:   utils.Version,
		Endpoints: endpoints,
		Timestamp: time.Now().UTC(),
	})
}

// requireAuth rejects requests without a bearer token when the server is
// configured to.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	if !s.config.RequireAuth {
		return c.Next()
	}

	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: msgAuthRequired})
	}
	return c.Next()
}

func (s *Server) handleCareerChat(c *fiber.Ctx) error {
	var req careerChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, msgInvalidJSON)
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return badRequest(c, msgMessageRequired)
	}

	if message == magicBlocked {
		return c.JSON(map[string]any{"blocked": true, "message": msgGuardrailResponse})
	}

	started := time.Now()
	conversationID := s.touchConversation(req.ConversationID)

	s.logger.Debug("career chat turn",
		"conversation_id", conversationID,
		"chips", len(req.SelectedChips),
	)

	r := s.scriptReply(message)
	if r.failure == "" {
		r.completion = map[string]any{
			"conversationId":   conversationID,
			"messageId":        uuid.NewString(),
			"intent":           "career_exploration",
			"intentConfidence": 0.9,
			"phase":            "exploration",
			"hasAssessment":    false,
			"executionTime":    time.Since(started).Milliseconds(),
		}
	}

	return s.stream(c, r)
}

func (s *Server) handleTutorChat(c *fiber.Ctx) error {
	var req tutorChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, msgInvalidJSON)
	}

	message := strings.TrimSpace(req.Message)
	if strings.TrimSpace(req.CourseID) == "" || message == "" {
		return badRequest(c, msgTutorFields)
	}

	conversationID := s.touchConversation(req.ConversationID)

	s.logger.Debug("tutor chat turn",
		"conversation_id", conversationID,
		"course_id", req.CourseID,
		"lesson_id", req.LessonID,
	)

	r := s.scriptReply(message)
	if r.failure == "" {
		r.completion = map[string]any{
			"conversationId": conversationID,
			"messageId":      uuid.NewString(),
		}
	}

	return s.stream(c, r)
}

func (s *Server) handleSuggestions(c *fiber.Ctx) error {
	var req suggestionsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, msgInvalidJSON)
	}
	if strings.TrimSpace(req.LessonID) == "" {
		return badRequest(c, msgLessonRequired)
	}

	title := "Lesson " + req.LessonID
	return c.JSON(map[string]any{
		"questions": []string{
			"What are the key concepts in \"" + title + "\"?",
			"Can you explain the main points of this lesson?",
			"How does this lesson connect to the rest of the course?",
		},
		"lessonId":    req.LessonID,
		"lessonTitle": title,
	})
}

func (s *Server) handleFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, msgInvalidJSON)
	}
	if req.ConversationID == "" || req.MessageIndex == nil || req.Rating == 0 {
		return badRequest(c, msgFeedbackFields)
	}
	if req.Rating != 1 && req.Rating != -1 {
		return badRequest(c, msgInvalidRating)
	}

	if !s.knownConversation(req.ConversationID) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: msgUnknownConv})
	}

	s.logger.Debug("feedback received",
		"conversation_id", req.ConversationID,
		"message_index", *req.MessageIndex,
		"rating", req.Rating,
	)

	return c.JSON(map[string]any{"success": true, "message": "Feedback submitted"})
}

func (s *Server) handleGetProgress(c *fiber.Ctx) error {
	courseID := strings.TrimSpace(c.Query("courseId"))
	if courseID == "" {
		return badRequest(c, msgCourseParam)
	}

	return c.JSON(s.courseProgress(courseID))
}

func (s *Server) handleUpdateProgress(c *fiber.Ctx) error {
	var req progressRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, msgInvalidJSON)
	}
	if req.CourseID == "" || req.LessonID == "" || req.Status == "" {
		return badRequest(c, msgProgressFields)
	}
	if !validStatus(req.Status) {
		return badRequest(c, msgInvalidStatus)
	}

	row := s.updateProgress(req.CourseID, req.LessonID, req.Status)
	return c.JSON(map[string]any{"success": true, "progress": row})
}

// scriptReply builds the tokens for message, or a partial reply followed by
// an error for the magic error message.
func (s *Server) scriptReply(message string) reply {
	if message == magicError {
		return reply{tokens: []string{"Let me think "}, failure: msgAIServiceError}
	}
	return reply{tokens: tokenize(strings.ReplaceAll(s.config.Reply, "{message}", message))}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}
