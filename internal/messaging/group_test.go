package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/savedlinks/thumbnailer/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubConsumer struct {
	started     bool
	stopped     bool
	startErr    error
	shutdownErr error
}

func (s *stubConsumer) Start(_ context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}

	s.started = true

	return nil
}

func (s *stubConsumer) Shutdown() error {
	s.stopped = true

	return s.shutdownErr
}

func TestConsumerGroup_Start(t *testing.T) {
	t.Run("starts every registered consumer", func(t *testing.T) {
		stream := newStreamStub()
		group := messaging.NewConsumerGroup(stream, zap.NewNop())
		generated := &stubConsumer{}
		accessed := &stubConsumer{}

		group.Add(generated)
		group.Add(accessed)

		err := group.Start(context.Background())

		require.NoError(t, err)
		assert.True(t, generated.started)
		assert.True(t, accessed.started)
	})

	t.Run("a start failure rolls back the consumers already running", func(t *testing.T) {
		stream := newStreamStub()
		group := messaging.NewConsumerGroup(stream, zap.NewNop())
		generated := &stubConsumer{}
		accessed := &stubConsumer{startErr: errors.New("subscribe failed")}

		group.Add(generated)
		group.Add(accessed)

		err := group.Start(context.Background())

		require.Error(t, err)
		assert.True(t, generated.started)
		assert.True(t, generated.stopped)
		assert.False(t, accessed.started)
	})
}

func TestConsumerGroup_Shutdown(t *testing.T) {
	t.Run("stops every consumer and closes the subscriber", func(t *testing.T) {
		stream := newStreamStub()
		group := messaging.NewConsumerGroup(stream, zap.NewNop())
		generated := &stubConsumer{}
		accessed := &stubConsumer{}

		group.Add(generated)
		group.Add(accessed)
		require.NoError(t, group.Start(context.Background()))

		err := group.Shutdown()

		require.NoError(t, err)
		assert.True(t, generated.stopped)
		assert.True(t, accessed.stopped)
		assert.True(t, stream.closed)
	})

	t.Run("reports every shutdown error, not just the first", func(t *testing.T) {
		stream := newStreamStub()
		group := messaging.NewConsumerGroup(stream, zap.NewNop())
		generated := &stubConsumer{shutdownErr: errors.New("generated consumer stuck")}
		accessed := &stubConsumer{shutdownErr: errors.New("accessed consumer stuck")}

		group.Add(generated)
		group.Add(accessed)
		require.NoError(t, group.Start(context.Background()))

		err := group.Shutdown()

		require.Error(t, err)
		assert.ErrorIs(t, err, generated.shutdownErr)
		assert.ErrorIs(t, err, accessed.shutdownErr)
		assert.True(t, stream.closed)
	})
}
