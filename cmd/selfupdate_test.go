package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelfUpdateCmd(t *testing.T) {
	c := newSelfUpdateCmd()

	assert.Equal(t, "self-update", c.Use)
	assert.NotEmpty(t, c.Short)
	assert.NotEmpty(t, c.Long)
	assert.NotNil(t, c.RunE)
	assert.NotNil(t, c.Flags().Lookup("check"))
}

func TestRunSelfUpdateRefusesDevelopmentVersions(t *testing.T) {
	for _, v := range []string{"dev", ""} {
		t.Run(v, func(t *testing.T) {
			original := rootCmd.Version
			defer func() { rootCmd.Version = original }()
			rootCmd.Version = v

			err := runSelfUpdate(nil, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
		})
	}
}
