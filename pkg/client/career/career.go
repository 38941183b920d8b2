// Package career is the client of the career assistant worker.
package career

import (
	"context"
	"errors"
	"strings"

	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/client"
)

const (
	// ChatPath is the streaming chat endpoint. The worker also answers on
	// AliasChatPath.
	ChatPath      = "/chat"
	AliasChatPath = "/career-ai-chat"
)

// ErrMessageRequired is reported for a chat request with a blank message.
var ErrMessageRequired = errors.New("message is required")

// ChatRequest is the body of a career chat turn.
type ChatRequest struct {
	ConversationID string   `json:"conversationId,omitempty"`
	Message        string   `json:"message"`
	SelectedChips  []string `json:"selectedChips,omitempty"`
}

// Client streams career assistant conversations.
type Client struct {
	*client.Client
}

// New returns a career client for the worker at baseURL.
func New(baseURL string, opts ...client.Option) (*Client, error) {
	c, err := client.New(baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// Chat sends one message and streams the reply through h. The completion
// payload carries the conversation id to send with the next turn.
func (c *Client) Chat(ctx context.Context, req ChatRequest, h chatstream.Handlers) {
	if strings.TrimSpace(req.Message) == "" {
		if h.OnError != nil {
			h.OnError(ErrMessageRequired)
		}
		return
	}

	c.Stream(ctx, ChatPath, req, h)
}
