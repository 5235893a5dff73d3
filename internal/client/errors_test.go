package client

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/context"
)

func TestClassify(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	live := context.Background()

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, classify(live, OpListEvents, time.Second, nil))
	})

	t.Run("expired context is a timeout", func(t *testing.T) {
		err := classify(expired, OpListEvents, 10*time.Second, errors.New("request canceled"))
		assert.True(t, IsTimeout(err))
		assert.Contains(t, err.Error(), "10s")
	})

	t.Run("wrapped deadline is a timeout", func(t *testing.T) {
		err := classify(live, OpCreateEvent, time.Second, errors.Wrap(context.DeadlineExceeded, "Post"))
		assert.True(t, IsTimeout(err))
	})

	t.Run("status errors pass through", func(t *testing.T) {
		in := &HTTPStatusError{Op: OpListEvents, StatusCode: 503}
		err := classify(live, OpListEvents, time.Second, in)
		assert.Equal(t, in, err)
		assert.False(t, IsNetwork(err))
	})

	t.Run("parse errors pass through", func(t *testing.T) {
		err := classify(live, OpListEvents, time.Second, &ParseError{Op: OpListEvents, err: errors.New("EOF")})
		assert.True(t, IsParse(err))
	})

	t.Run("everything else is a network error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := classify(live, OpCreateEvent, time.Second, cause)
		assert.True(t, IsNetwork(err))
		assert.Equal(t, cause, errors.Cause(errors.Unwrap(err)))
		assert.Contains(t, err.Error(), OpCreateEvent)
	})
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(&ValidationError{Field: "name", Message: MsgNameMissing}))
	assert.True(t, IsValidation(errors.Wrap(&ValidationError{Field: "name"}, "submit")))
	assert.False(t, IsValidation(ErrSubmitInFlight))
}
