package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalcare/booking-api/pkg/security"
)

func TestHashPasskeyPrintsUsableHash(t *testing.T) {
	cmd := hashPasskeyCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--cost", "4", "123456"})

	require.NoError(t, cmd.Execute())

	hash := strings.TrimSpace(out.String())
	hasher := security.NewBcryptHasher(4)
	assert.NoError(t, hasher.Compare(hash, "123456"))
	assert.Error(t, hasher.Compare(hash, "654321"))
}

func TestHashPasskeyRejectsShortPasskey(t *testing.T) {
	cmd := hashPasskeyCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"123"})

	assert.ErrorIs(t, cmd.Execute(), security.ErrPasskeyShort)
}
