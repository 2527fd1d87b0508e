package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{Name: "redis", MaxFailures: 2, Timeout: time.Second})
	cb.now = func() time.Time { return now }

	assert.Equal(t, StateClosed, cb.State())

	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	now = now.Add(2 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	// a failed trial reopens immediately
	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
	assert.Equal(t, "redis", cb.Name())
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(Settings{})
	assert.Equal(t, 5, cb.maxFailures)
	assert.Equal(t, 10*time.Second, cb.timeout)
}
