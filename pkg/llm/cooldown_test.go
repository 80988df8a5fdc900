package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownRegistry(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := NewCooldownRegistry(60 * time.Second)
	reg.now = func() time.Time { return current }

	assert.False(t, reg.OnCooldown("gpt-4o"))
	assert.Equal(t, time.Duration(0), reg.Remaining("gpt-4o"))

	reg.Mark("gpt-4o")
	assert.True(t, reg.OnCooldown("gpt-4o"))
	assert.Equal(t, 60*time.Second, reg.Remaining("gpt-4o"))
	assert.False(t, reg.OnCooldown("claude-3-5-haiku-latest"))

	current = current.Add(30 * time.Second)
	assert.True(t, reg.OnCooldown("gpt-4o"))
	assert.Equal(t, 30*time.Second, reg.Remaining("gpt-4o"))

	current = current.Add(31 * time.Second)
	assert.False(t, reg.OnCooldown("gpt-4o"))
	assert.Equal(t, time.Duration(0), reg.Remaining("gpt-4o"))
}

func TestCooldownRegistry_RemarkExtends(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := NewCooldownRegistry(time.Minute)
	reg.now = func() time.Time { return current }

	reg.Mark("gpt-4o")
	current = current.Add(45 * time.Second)
	reg.Mark("gpt-4o")

	current = current.Add(45 * time.Second)
	assert.True(t, reg.OnCooldown("gpt-4o"))
}
