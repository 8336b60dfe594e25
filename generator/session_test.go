package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// scriptedChat returns replies in order; a nil-reply slot with a matching
// error slot simulates an upstream failure.
type scriptedChat struct {
	mu      sync.Mutex
	systems []string
	sent    []string
	replies []string
	errs    []error
}

func (c *scriptedChat) OpenChat(system string, _ float64) ChatChannel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systems = append(c.systems, system)
	return c
}

func (c *scriptedChat) Send(_ context.Context, message string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := len(c.sent)
	c.sent = append(c.sent, message)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], nil
	}
	return "", nil
}

func TestNewRefiner_RequiresProvider(t *testing.T) {
	if _, err := NewRefiner(nil, 0.7, nil); err == nil {
		t.Error("expected error for nil provider")
	}
}

func TestRefiner_SendBeforeOpen(t *testing.T) {
	r, _ := NewRefiner(&scriptedChat{}, 0.7, nil)

	_, err := r.Send(context.Background(), "anything", "hello")
	if !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("expected ErrSessionNotOpen, got %v", err)
	}
	if _, err := r.Transcript("anything"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("expected ErrSessionNotOpen for transcript, got %v", err)
	}
}

func TestRefiner_OpenSeedsFraming(t *testing.T) {
	chat := &scriptedChat{}
	r, _ := NewRefiner(chat, 0.7, nil)

	h := r.Open("To Whom It May Concern,\n\nSeed")

	if h == "" {
		t.Fatal("expected non-empty handle")
	}
	if len(chat.systems) != 1 || !strings.Contains(chat.systems[0], "Seed") {
		t.Errorf("expected framing with seed letter, got %v", chat.systems)
	}
	turns, err := r.Transcript(h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 1 || turns[0].Speaker != SpeakerAssistant || turns[0].Text != GreetingText {
		t.Errorf("expected greeting turn, got %+v", turns)
	}
}

func TestRefiner_ReopenInvalidatesHandle(t *testing.T) {
	r, _ := NewRefiner(&scriptedChat{replies: []string{"ok", "ok"}}, 0.7, nil)

	first := r.Open("letter one")
	second := r.Open("letter two")

	if first == second {
		t.Fatal("expected distinct handles")
	}
	if _, err := r.Send(context.Background(), first, "hi"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("expected stale handle to fail, got %v", err)
	}
	if _, err := r.Send(context.Background(), second, "hi"); err != nil {
		t.Errorf("unexpected error on current handle: %v", err)
	}
}

func TestRefiner_SendAppendsTurns(t *testing.T) {
	r, _ := NewRefiner(&scriptedChat{replies: []string{"first answer", "second answer"}}, 0.7, nil)
	h := r.Open("letter")

	for _, msg := range []string{"question one", "question two"} {
		if _, err := r.Send(context.Background(), h, msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	turns, _ := r.Transcript(h)
	want := []struct {
		speaker Speaker
		text    string
	}{
		{SpeakerAssistant, GreetingText},
		{SpeakerUser, "question one"},
		{SpeakerAssistant, "first answer"},
		{SpeakerUser, "question two"},
		{SpeakerAssistant, "second answer"},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(turns))
	}
	for i, w := range want {
		if turns[i].Speaker != w.speaker || turns[i].Text != w.text {
			t.Errorf("turn %d: expected [%s] %q, got [%s] %q", i, w.speaker, w.text, turns[i].Speaker, turns[i].Text)
		}
	}
}

func TestRefiner_EmptyReplyFallsBack(t *testing.T) {
	r, _ := NewRefiner(&scriptedChat{replies: []string{"  "}}, 0.7, nil)
	h := r.Open("letter")

	reply, err := r.Send(context.Background(), h, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != FallbackReply {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}

func TestRefiner_UpstreamFailureRecorded(t *testing.T) {
	chat := &scriptedChat{
		replies: []string{"", "recovered"},
		errs:    []error{errors.New("upstream down"), nil},
	}
	r, _ := NewRefiner(chat, 0.7, nil)
	h := r.Open("letter")

	_, err := r.Send(context.Background(), h, "hello")
	if !errors.Is(err, ErrRefinementFailure) {
		t.Fatalf("expected ErrRefinementFailure, got %v", err)
	}
	turns, _ := r.Transcript(h)
	last := turns[len(turns)-1]
	if last.Speaker != SpeakerAssistant || last.Text != ErrorReply {
		t.Errorf("expected apology turn, got %+v", last)
	}

	reply, err := r.Send(context.Background(), h, "again")
	if err != nil {
		t.Fatalf("expected session to stay usable, got %v", err)
	}
	if reply != "recovered" {
		t.Errorf("expected 'recovered', got %q", reply)
	}
}

func TestRefiner_BlankMessage(t *testing.T) {
	chat := &scriptedChat{}
	r, _ := NewRefiner(chat, 0.7, nil)
	h := r.Open("letter")

	_, err := r.Send(context.Background(), h, "  ")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if len(chat.sent) != 0 {
		t.Errorf("expected no upstream call, got %d", len(chat.sent))
	}
}

func TestHistoryChat_ReplaysHistory(t *testing.T) {
	llm := &fakeLLM{reply: "answer"}

	chat := newHistoryChat(llm, "framing", 0.5)
	if _, err := chat.Send(context.Background(), "one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := chat.Send(context.Background(), "two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if llm.calls() != 2 {
		t.Fatalf("expected 2 calls, got %d", llm.calls())
	}
	second := llm.prompts[1]
	if second.System != "framing" || second.User != "two" {
		t.Errorf("unexpected prompt: %+v", second)
	}
	if len(second.History) != 2 || second.History[0].Content != "one" || second.History[1].Role != "assistant" {
		t.Errorf("expected one replayed exchange, got %+v", second.History)
	}
	if second.Schema != nil {
		t.Error("expected chat turns without schema")
	}
}

func TestHistoryChat_FailedTurnNotRecorded(t *testing.T) {
	llm := &fakeLLM{err: errors.New("boom")}
	chat := newHistoryChat(llm, "framing", 0.5)

	if _, err := chat.Send(context.Background(), "one"); err == nil {
		t.Fatal("expected error")
	}
	if len(chat.history) != 0 {
		t.Errorf("expected empty history after failure, got %d", len(chat.history))
	}
}

type blockingLLM struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingLLM) Complete(context.Context, Prompt) (string, error) {
	close(b.started)
	<-b.release
	return "late answer", nil
}

func TestHistoryChat_WaitingTurnHonoursContext(t *testing.T) {
	llm := &blockingLLM{started: make(chan struct{}), release: make(chan struct{})}
	chat := newHistoryChat(llm, "framing", 0.5)

	first := make(chan error, 1)
	go func() {
		_, err := chat.Send(context.Background(), "one")
		first <- err
	}()
	<-llm.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := chat.Send(ctx, "two"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected waiting turn to time out, got %v", err)
	}

	close(llm.release)
	select {
	case err := <-first:
		if err != nil {
			t.Errorf("unexpected error on first turn: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first turn did not return")
	}
	if len(chat.history) != 2 {
		t.Errorf("expected only the first exchange in history, got %d", len(chat.history))
	}
}
