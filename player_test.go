package ggm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlayerRequiresSynth(t *testing.T) {
	_, err := NewPlayer(nil)
	assert.Error(t, err)
}
