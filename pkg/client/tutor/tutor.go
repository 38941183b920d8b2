// Package tutor is the client of the course tutor worker.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/client"
)

const (
	ChatPath        = "/ai-tutor-chat"
	SuggestionsPath = "/ai-tutor-suggestions"
	FeedbackPath    = "/ai-tutor-feedback"
	ProgressPath    = "/ai-tutor-progress"
)

var (
	ErrCourseRequired       = errors.New("course id is required")
	ErrMessageRequired      = errors.New("message is required")
	ErrLessonRequired       = errors.New("lesson id is required")
	ErrConversationRequired = errors.New("conversation id is required")
	ErrInvalidRating        = errors.New("rating must be 1 (thumbs up) or -1 (thumbs down)")
	ErrInvalidStatus        = errors.New("status must be not_started, in_progress or completed")
)

// Lesson progress states accepted by UpdateProgress.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ChatRequest is the body of a tutor chat turn.
type ChatRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	CourseID       string `json:"courseId"`
	LessonID       string `json:"lessonId,omitempty"`
	Message        string `json:"message"`
}

// FeedbackRequest rates one assistant message of a conversation.
type FeedbackRequest struct {
	ConversationID string `json:"conversationId"`
	MessageIndex   int    `json:"messageIndex"`
	Rating         int    `json:"rating"`
	FeedbackText   string `json:"feedbackText,omitempty"`
}

// FeedbackResponse is the worker's acknowledgement of a rating.
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Suggestions are starter questions for a lesson.
type Suggestions struct {
	Questions   []string `json:"questions"`
	LessonID    string   `json:"lessonId"`
	LessonTitle string   `json:"lessonTitle"`
}

// LessonProgress is one lesson's row in a course progress report.
type LessonProgress struct {
	LessonID         string     `json:"lesson_id"`
	Status           string     `json:"status"`
	LastAccessed     *time.Time `json:"last_accessed,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
}

// Progress is a student's progress through a course.
type Progress struct {
	CourseID             string           `json:"courseId"`
	TotalLessons         int              `json:"totalLessons"`
	CompletedLessons     int              `json:"completedLessons"`
	CompletionPercentage int              `json:"completionPercentage"`
	LastAccessedLessonID string           `json:"lastAccessedLessonId,omitempty"`
	LastAccessedAt       *time.Time       `json:"lastAccessedAt,omitempty"`
	Lessons              []LessonProgress `json:"progress"`
}

// Client talks to the course tutor worker.
type Client struct {
	*client.Client
}

// New returns a tutor client for the worker at baseURL.
func New(baseURL string, opts ...client.Option) (*Client, error) {
	c, err := client.New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// Chat sends one message about a course, optionally scoped to a lesson, and
// streams the reply through h.
func (c *Client) Chat(ctx context.Context, req ChatRequest, h chatstream.Handlers) {
	var err error
	switch {
	case strings.TrimSpace(req.CourseID) == "":
		err = ErrCourseRequired
	case strings.TrimSpace(req.Message) == "":
		err = ErrMessageRequired
	}
	if err != nil {
		if h.OnError != nil {
			h.OnError(err)
		}
		return
	}

	c.Stream(ctx, ChatPath, req, h)
}

// Suggestions fetches starter questions for a lesson.
func (c *Client) Suggestions(ctx context.Context, lessonID string) (*Suggestions, error) {
	if strings.TrimSpace(lessonID) == "" {
		return nil, ErrLessonRequired
	}

	out := &Suggestions{}
	body := map[string]string{"lessonId": lessonID}
	if err := c.PostJSON(ctx, SuggestionsPath, body, out); err != nil {
		return nil, fmt.Errorf("fetching suggestions: %w", err)
	}
	return out, nil
}

// Feedback rates an assistant message.
func (c *Client) Feedback(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	if strings.TrimSpace(req.ConversationID) == "" {
		return nil, ErrConversationRequired
	}
	if req.Rating != 1 && req.Rating != -1 {
		return nil, ErrInvalidRating
	}

	out := &FeedbackResponse{}
	if err := c.PostJSON(ctx, FeedbackPath, req, out); err != nil {
		return nil, fmt.Errorf("sending feedback: %w", err)
	}
	return out, nil
}

// Progress fetches the student's progress through a course.
func (c *Client) Progress(ctx context.Context, courseID string) (*Progress, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, ErrCourseRequired
	}

	out := &Progress{}
	query := url.Values{"courseId": []string{courseID}}
	if err := c.GetJSON(ctx, ProgressPath, query, out); err != nil {
		return nil, fmt.Errorf("fetching progress: %w", err)
	}
	return out, nil
}

// UpdateProgress records a lesson's status.
func (c *Client) UpdateProgress(ctx context.Context, courseID, lessonID, status string) error {
	switch {
	case strings.TrimSpace(courseID) == "":
		return ErrCourseRequired
	case strings.TrimSpace(lessonID) == "":
		return ErrLessonRequired
	}
	switch status {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
	default:
		return ErrInvalidStatus
	}

	body := map[string]string{"courseId": courseID, "lessonId": lessonID, "status": status}
	if err := c.PostJSON(ctx, ProgressPath, body, nil); err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	return nil
}
