package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoster(t *testing.T) {
	r := New([]string{"John Green", " Leila Cameron ", "", "John Green"})

	assert.Equal(t, []string{"John Green", "Leila Cameron"}, r.List())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains("Leila Cameron"))
	assert.False(t, r.Contains("leila cameron"))
	assert.False(t, r.Contains(""))

	list := r.List()
	list[0] = "Changed"
	assert.True(t, r.Contains("John Green"))
	assert.Equal(t, "John Green", r.List()[0])
}
