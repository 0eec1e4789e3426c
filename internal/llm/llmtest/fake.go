// Package llmtest provides a scripted chat model for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// FakeChatModel implements model.BaseChatModel with scripted responses.
// Responses are consumed in order; the last one repeats. When Err is set
// every Generate call fails with it. Respond, when set, takes priority and
// can inspect the request messages.
type FakeChatModel struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Respond   func(messages []*schema.Message) (string, error)

	Requests [][]*schema.Message
	idx      int
}

func (f *FakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, input)

	if f.Err != nil {
		return nil, f.Err
	}
	if f.Respond != nil {
		content, err := f.Respond(input)
		if err != nil {
			return nil, err
		}
		return schema.AssistantMessage(content, nil), nil
	}
	if len(f.Responses) == 0 {
		return nil, errors.New("fake model has no scripted responses")
	}

	content := f.Responses[f.idx]
	if f.idx < len(f.Responses)-1 {
		f.idx++
	}
	return schema.AssistantMessage(content, nil), nil
}

func (f *FakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported by fake model")
}

// CallCount reports how many Generate calls the fake has served.
func (f *FakeChatModel) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// LastUserPrompt returns the content of the final user message of the most
// recent request, or "" when no call was made.
func (f *FakeChatModel) LastUserPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Requests) == 0 {
		return ""
	}
	request := f.Requests[len(f.Requests)-1]
	for i := len(request) - 1; i >= 0; i-- {
		if request[i].Role == schema.User {
			return request[i].Content
		}
	}
	return ""
}
