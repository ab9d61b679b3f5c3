package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/harentsoaR/dentaflow-api/internal/apperrors"
)

// FallbackReply is returned whenever the chat upstream cannot answer.
const FallbackReply = "I am currently offline. Please call the clinic directly! 📞"

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// ChatService forwards patient questions to the assistant service. It never
// fails: any upstream problem turns into FallbackReply.
type ChatService struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewChatService builds a proxy to url. With an empty url the built-in
// keyword replies answer instead.
func NewChatService(url string, timeout time.Duration, log zerolog.Logger) *ChatService {
	return &ChatService{
		url:    url,
		client: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "chat-upstream",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			// A caller walking away says nothing about the upstream.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("chat breaker state changed")
			},
		}),
		log: log,
	}
}

func (s *ChatService) Reply(ctx context.Context, message string) string {
	if s.url == "" {
		return LocalReply(message)
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.ask(ctx, message)
	})
	if err != nil {
		s.log.Warn().Err(apperrors.UpstreamUnavailable(err)).Str("upstream", s.url).Msg("chat upstream failed, using fallback")
		return FallbackReply
	}
	return out.(string)
}

func (s *ChatService) ask(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode chat reply: %w", err)
	}
	if strings.TrimSpace(out.Reply) == "" {
		return "", fmt.Errorf("chat upstream returned an empty reply")
	}
	return out.Reply, nil
}
