package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cfg "github.com/thomas-vilte/matetriage/internal/config"
	"github.com/thomas-vilte/matetriage/internal/i18n"
)

func TestEnvironMap(t *testing.T) {
	vars := environMap([]string{
		"GITHUB_REPOSITORY=octo/app",
		"INPUT_PROMPT_TEMPLATE=a=b {{LOG}}",
		"EMPTY=",
		"BROKEN",
		"GITHUB_REPOSITORY=octo/other",
	})

	assert.Equal(t, "octo/other", vars["GITHUB_REPOSITORY"])
	assert.Equal(t, "a=b {{LOG}}", vars["INPUT_PROMPT_TEMPLATE"])
	assert.Contains(t, vars, "EMPTY")
	assert.NotContains(t, vars, "BROKEN")
}

func TestInitializeApp(t *testing.T) {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	app, err := initializeApp(cfg.Defaults(), translations, map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "matetriage", app.Name)
	require.Len(t, app.Commands, 3)
	assert.Equal(t, "analyze", app.Commands[0].Name)
	assert.Equal(t, "inspect", app.Commands[1].Name)
	assert.Equal(t, "config", app.Commands[2].Name)
	assert.NotNil(t, app.Action)
}
