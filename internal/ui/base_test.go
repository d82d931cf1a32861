package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	var b Base
	assert.False(t, b.IsFocused())

	b.SetFocused(true)
	b.SetSize(80, 20)
	assert.True(t, b.IsFocused())
	assert.Equal(t, 80, b.Width())
	assert.Equal(t, 16, b.ContentHeight())

	b.SetSize(80, 3)
	assert.Zero(t, b.ContentHeight())
}
