package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageBuilderRender(t *testing.T) {
	builder := NewMessageBuilder("yellow")
	ts := time.UnixMilli(1700000000000)

	message := builder.Render("0xAbC0000000000000000000000000000000000001", "deadbeef", ts)

	expected := "Verify wallet 0xAbC0000000000000000000000000000000000001 for yellow\n" +
		"Nonce: deadbeef\n" +
		"Timestamp: 1700000000000\n" +
		"\n" +
		"By signing this message, you confirm that you own this wallet."
	assert.Equal(t, expected, message)
}

func TestMessageBuilderDeterministic(t *testing.T) {
	builder := NewMessageBuilder("yellow")
	ts := time.Now()

	first := builder.Render("0xABC", "nonce-1", ts)
	second := builder.Render("0xABC", "nonce-1", ts)

	assert.Equal(t, first, second)
}
