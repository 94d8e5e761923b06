package main

import (
	"testing"

	"specprobe/cmd"

	"github.com/stretchr/testify/assert"
)

func TestVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", version)
}

func TestSetVersionPropagates(t *testing.T) {
	original := cmd.GetVersion()
	defer cmd.SetVersion(original)

	cmd.SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", cmd.GetVersion())
}
