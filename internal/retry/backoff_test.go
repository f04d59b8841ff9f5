package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{base: 100 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, b.NextBackOff())

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.NextBackOff())
}
