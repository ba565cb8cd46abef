package ping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	assert.Equal(t, "🏓 Pong! Gateway latency: **42ms**", Message(42*time.Millisecond+300*time.Microsecond))
}
