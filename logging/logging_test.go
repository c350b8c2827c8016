package logging

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/stretchr/testify/assert"
)

func TestNewSetsDebugLevelWhenRequested(t *testing.T) {
	log := New(true)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNewDefaultsToInfoLevel(t *testing.T) {
	log := New(false)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
