package main_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	main "github.com/umass-dining/dining/cmd/dining"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// Use kong.Exit to prevent os.Exit from being called during tests
	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"scrape", "schedule", "prune", "menu", "halls"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_Defaults(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"schedule"})
	require.NoError(t, err)

	assert.Equal(t, "https://umassdining.com/locations-menus", cli.BaseURL)
	assert.Equal(t, 30*time.Second, cli.Timeout)
	assert.Equal(t, 3, cli.MaxRetries)
	assert.Equal(t, 5*time.Second, cli.RetryDelay)
	assert.Equal(t, time.Second, cli.Politeness)
	assert.Equal(t, "06:00", cli.Schedule.At)
	assert.Equal(t, 7, cli.Schedule.RetentionDays)
}

func TestCLI_RepeatableHeaders(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{
		"--header", "Accept: text/html,application/xhtml+xml",
		"-H", "X-Campus: amherst",
		"scrape", "--hall", "worcester", "--hall", "franklin",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Accept: text/html,application/xhtml+xml", "X-Campus: amherst"}, cli.Header)
	assert.Equal(t, []string{"worcester", "franklin"}, cli.Scrape.Hall)
}
