package usecases

import (
	"context"
	"testing"

	"chatrelay/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_EmptyTextIsNoop(t *testing.T) {
	msgr := &fakeMessenger{}
	d := NewDispatcher(msgr, logger.Discard())

	assert.False(t, d.Dispatch(context.Background(), user, ""))
	assert.Empty(t, msgr.messages())
}

func TestDispatcher_Success(t *testing.T) {
	msgr := &fakeMessenger{}
	d := NewDispatcher(msgr, logger.Discard())

	assert.True(t, d.Dispatch(context.Background(), user, "hello"))
	assert.Equal(t, []sentMessage{{To: user, Content: "hello"}}, msgr.messages())

	sent, failed := d.Stats()
	assert.Equal(t, uint64(1), sent)
	assert.Zero(t, failed)
}

func TestDispatcher_FailureIsAbsorbed(t *testing.T) {
	msgr := &fakeMessenger{fail: true}
	d := NewDispatcher(msgr, logger.Discard())

	assert.NotPanics(t, func() {
		assert.False(t, d.Dispatch(context.Background(), user, "hello"))
	})
	assert.Len(t, msgr.messages(), 1, "exactly one attempt, no retry")

	sent, failed := d.Stats()
	assert.Zero(t, sent)
	assert.Equal(t, uint64(1), failed)
}
