package organizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardRecoversPanic(t *testing.T) {
	d := guard("fallback", func() (string, error) {
		var m map[string]int
		m["boom"]++
		return "never", nil
	})
	assert.True(t, d.Degraded)
	assert.Equal(t, "fallback", d.Value)
	assert.Error(t, d.Err)
}

func TestGuardError(t *testing.T) {
	d := guard(7, func() (int, error) { return 0, errors.New("bad input") })
	assert.True(t, d.Degraded)
	assert.Equal(t, 7, d.Value)
	assert.EqualError(t, d.Err, "bad input")
}

func TestGuardSuccess(t *testing.T) {
	d := guard(0, func() (int, error) { return 3, nil })
	assert.False(t, d.Degraded)
	assert.Equal(t, 3, d.Value)
	assert.NoError(t, d.Err)
}
