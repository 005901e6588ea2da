package usecases

import (
	"context"
	"errors"
	"sync"

	"chatrelay/internal/entities"
	"chatrelay/internal/interfaces"
)

var errProviderDown = errors.New("provider down")

// fakeAI returns scripted results in order; once exhausted it echoes the last user turn.
type fakeAI struct {
	mu        sync.Mutex
	results   []interfaces.CompletionResult
	histories [][]entities.Turn
}

func (f *fakeAI) Complete(_ context.Context, history []entities.Turn) interfaces.CompletionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, history)
	if len(f.results) > 0 {
		r := f.results[0]
		f.results = f.results[1:]
		return r
	}
	return interfaces.CompletionResult{Content: "echo: " + history[len(history)-1].Content}
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.histories)
}

type sentMessage struct {
	To      string
	Content string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (f *fakeMessenger) SendMessage(_ context.Context, to, content string) interfaces.DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{To: to, Content: content})
	if f.fail {
		return interfaces.DeliveryResult{StatusCode: 502, Body: "bad gateway", Err: errors.New("status 502")}
	}
	return interfaces.DeliveryResult{StatusCode: 202, Body: `{"status":"submitted"}`}
}

func (f *fakeMessenger) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeUsage struct {
	mu       sync.Mutex
	received map[string]int
	sent     map[string]int
	reads    int
	err      error
}

func newFakeUsage() *fakeUsage {
	return &fakeUsage{received: map[string]int{}, sent: map[string]int{}}
}

func (f *fakeUsage) IncrementReceived(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received[userID]++
	return f.err
}

func (f *fakeUsage) IncrementSent(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[userID]++
	return f.err
}

func (f *fakeUsage) GetTodayUsage(_ context.Context, userID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.sent[userID], f.received[userID], f.err
}
