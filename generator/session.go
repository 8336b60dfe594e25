package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// GreetingText opens every transcript after a successful generation.
	GreetingText = "I have generated the letter based on your inputs. How can I help you refine it?"
	// FallbackReply replaces an empty upstream reply.
	FallbackReply = "I'm sorry, I couldn't process that."
	// ErrorReply is recorded in the transcript when a turn fails upstream.
	ErrorReply = "Sorry, I encountered an error processing your request."
)

// SessionHandle identifies one refinement session.
type SessionHandle string

// Session 持有一封信的修订会话：上游对话通道与只追加的对话记录。
type Session struct {
	Handle    SessionHandle
	CreatedAt time.Time

	channel ChatChannel

	mu      sync.Mutex
	history []Turn
}

func (s *Session) appendTurn(speaker Speaker, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

// Transcript returns a copy of the turns in insertion order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) send(ctx context.Context, message string) (string, error) {
	s.appendTurn(SpeakerUser, message)

	reply, err := s.channel.Send(ctx, message)
	if err != nil {
		s.appendTurn(SpeakerAssistant, ErrorReply)
		return "", fmt.Errorf("%w: %w", ErrRefinementFailure, err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}
	s.appendTurn(SpeakerAssistant, reply)
	return reply, nil
}

// Refiner owns at most one open Session. Opening a new session invalidates
// the previous handle.
type Refiner struct {
	chat        ChatProvider
	temperature float64
	logger      *slog.Logger

	mu      sync.Mutex
	current *Session
}

func NewRefiner(chat ChatProvider, temperature float64, logger *slog.Logger) (*Refiner, error) {
	if chat == nil {
		return nil, errors.New("chat provider is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refiner{chat: chat, temperature: temperature, logger: logger}, nil
}

// Open starts a new session seeded with seedText and returns its handle.
func (r *Refiner) Open(seedText string) SessionHandle {
	sess := &Session{
		Handle:    SessionHandle(uuid.New().String()),
		CreatedAt: time.Now(),
		channel:   r.chat.OpenChat(BuildRefinementFraming(seedText), r.temperature),
	}
	sess.appendTurn(SpeakerAssistant, GreetingText)

	r.mu.Lock()
	prev := r.current
	r.current = sess
	r.mu.Unlock()

	if prev != nil {
		r.logger.Debug("refinement session replaced", "previous", prev.Handle, "session", sess.Handle)
	}
	return sess.Handle
}

func (r *Refiner) lookup(h SessionHandle) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil, fmt.Errorf("%w: no session has been opened", ErrSessionNotOpen)
	}
	if r.current.Handle != h {
		return nil, fmt.Errorf("%w: handle %s is stale", ErrSessionNotOpen, h)
	}
	return r.current, nil
}

// Send relays one user message through the session identified by h.
func (r *Refiner) Send(ctx context.Context, h SessionHandle, message string) (string, error) {
	sess, err := r.lookup(h)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", ErrValidation)
	}
	reply, err := sess.send(ctx, message)
	if err != nil {
		r.logger.Warn("refinement turn failed", "session", h, "error", err)
		return "", err
	}
	return reply, nil
}

// Transcript returns the turns of the session identified by h.
func (r *Refiner) Transcript(h SessionHandle) ([]Turn, error) {
	sess, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	return sess.Transcript(), nil
}
