package generator

import "context"

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// ChatProvider opens conversational channels that keep their own history.
type ChatProvider interface {
	OpenChat(system string, temperature float64) ChatChannel
}

// ChatChannel sends one user message and returns the assistant text.
type ChatChannel interface {
	Send(ctx context.Context, message string) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// historyChat replays the accumulated history on every turn, which is how a
// stateless completion endpoint is turned into a conversational channel.
type historyChat struct {
	llm         LLMClient
	system      string
	temperature float64

	// turn admits one Send at a time; waiters give up when their ctx ends.
	turn    chan struct{}
	history []Message
}

func newHistoryChat(llm LLMClient, system string, temperature float64) *historyChat {
	return &historyChat{
		llm:         llm,
		system:      system,
		temperature: temperature,
		turn:        make(chan struct{}, 1),
	}
}

func (c *historyChat) Send(ctx context.Context, message string) (string, error) {
	select {
	case c.turn <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-c.turn }()

	history := make([]Message, len(c.history))
	copy(history, c.history)

	reply, err := c.llm.Complete(ctx, Prompt{
		System:      c.system,
		User:        message,
		History:     history,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	// 失败的轮次不进入历史，与上游会话语义一致。
	c.history = append(c.history,
		Message{Role: "user", Content: message},
		Message{Role: "assistant", Content: reply},
	)
	return reply, nil
}
