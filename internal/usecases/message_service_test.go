package usecases

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"chatrelay/internal/config"
	"chatrelay/internal/entities"
	"chatrelay/internal/infrastructure"
	"chatrelay/internal/interfaces"
	"chatrelay/internal/logger"

	"github.com/stretchr/testify/assert"
)

type relayFixture struct {
	svc   *MessageService
	ai    *fakeAI
	msgr  *fakeMessenger
	usage *fakeUsage
	store *infrastructure.MemorySessionStore
}

func newRelayFixture() *relayFixture {
	f := &relayFixture{
		ai:    &fakeAI{},
		msgr:  &fakeMessenger{},
		usage: newFakeUsage(),
		store: infrastructure.NewMemorySessionStore(),
	}
	log := logger.Discard()
	sessions := NewSessionManager(f.store, f.ai, DefaultPrompts(), log)
	f.svc = NewMessageService(sessions, NewDispatcher(f.msgr, log), f.usage, log)
	return f
}

func msg(text string) entities.Message {
	return entities.Message{From: user, Content: text, Platform: "whatsapp"}
}

func TestMessageService_IgnoredTextSendsNothing(t *testing.T) {
	f := newRelayFixture()

	resp := f.svc.ProcessMessage(context.Background(), msg("random"))

	assert.Empty(t, resp.Content)
	assert.Empty(t, f.msgr.messages())
	assert.Equal(t, 1, f.usage.received[user])
	assert.Zero(t, f.usage.sent[user])
}

func TestMessageService_ConversationIsDispatched(t *testing.T) {
	f := newRelayFixture()
	f.ai.results = []interfaces.CompletionResult{{Content: "We offer free eye tests."}}
	ctx := context.Background()

	f.svc.ProcessMessage(ctx, msg("Hi"))
	resp := f.svc.ProcessMessage(ctx, msg("eye test?"))
	f.svc.ProcessMessage(ctx, msg("stop"))

	assert.Equal(t, entities.Response{To: user, Content: "We offer free eye tests."}, resp)
	assert.Equal(t, []sentMessage{
		{To: user, Content: DefaultGreeting},
		{To: user, Content: "We offer free eye tests."},
		{To: user, Content: DefaultFarewell},
	}, f.msgr.messages())
	assert.Equal(t, 3, f.usage.received[user])
	assert.Equal(t, 3, f.usage.sent[user])
}

func TestMessageService_ProviderFailureSendsApology(t *testing.T) {
	f := newRelayFixture()
	f.ai.results = []interfaces.CompletionResult{{Err: errProviderDown, Kind: "timeout"}}
	ctx := context.Background()

	f.svc.ProcessMessage(ctx, msg("hi"))
	resp := f.svc.ProcessMessage(ctx, msg("frames?"))

	assert.Equal(t, DefaultApology, resp.Content)
	assert.Equal(t, DefaultApology, f.msgr.messages()[1].Content)
	assert.True(t, f.store.Get(user).Active)
}

func TestMessageService_DeliveryAndUsageFailuresAreAbsorbed(t *testing.T) {
	f := newRelayFixture()
	f.msgr.fail = true
	f.usage.err = errors.New("db down")

	resp := f.svc.ProcessMessage(context.Background(), msg("hello"))

	assert.Equal(t, DefaultGreeting, resp.Content)
	assert.True(t, f.store.Get(user).Active, "session still advanced")
	assert.Zero(t, f.usage.sent[user], "undelivered replies are not counted as sent")
}

func TestMessageService_NilUsageRecorder(t *testing.T) {
	store := infrastructure.NewMemorySessionStore()
	log := logger.Discard()
	msgr := &fakeMessenger{}
	svc := NewMessageService(NewSessionManager(store, &fakeAI{}, DefaultPrompts(), log), NewDispatcher(msgr, log), nil, log)

	assert.NotPanics(t, func() { svc.ProcessMessage(context.Background(), msg("hi")) })
	assert.Len(t, msgr.messages(), 1)
}

func TestMessageService_LogsTodayUsageAfterDelivery(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	usage := newFakeUsage()
	store := infrastructure.NewMemorySessionStore()
	sessions := NewSessionManager(store, &fakeAI{}, DefaultPrompts(), log)
	svc := NewMessageService(sessions, NewDispatcher(&fakeMessenger{}, log), usage, log)

	svc.ProcessMessage(context.Background(), msg("random"))
	assert.Zero(t, usage.reads, "nothing delivered, nothing read")

	svc.ProcessMessage(context.Background(), msg("hi"))
	assert.Equal(t, 1, usage.reads)
	assert.Contains(t, buf.String(), `"msg":"usage.today"`)
	assert.Contains(t, buf.String(), `"sent":1`)
	assert.Contains(t, buf.String(), `"received":2`)
}
