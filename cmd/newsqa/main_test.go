package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info"},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error { return nil },
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			err := app.Run([]string{"newsqa", "--log-level", level})
			require.NoError(t, err, "level %s", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := app.Run([]string{"newsqa", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "ask",
				Action: askCommand,
			},
		},
	}

	err := app.Run([]string{"newsqa", "ask"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestIngestCommand_FeedOverridesQuery(t *testing.T) {
	// The --feed flag takes precedence over the generated Google News URL.
	var resolved string
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name: "ingest",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "feed"},
					&cli.StringFlag{Name: "query", Value: "AI"},
					&cli.StringFlag{Name: "lang", Value: "en"},
					&cli.StringFlag{Name: "country", Value: "US"},
				},
				Action: func(c *cli.Context) error {
					resolved = c.String("feed")
					if resolved == "" {
						resolved = fmt.Sprintf("generated(%s)", c.String("query"))
					}
					return nil
				},
			},
		},
	}

	require.NoError(t, app.Run([]string{"newsqa", "ingest", "--feed", "https://example.com/rss"}))
	assert.Equal(t, "https://example.com/rss", resolved)

	require.NoError(t, app.Run([]string{"newsqa", "ingest"}))
	assert.True(t, strings.HasPrefix(resolved, "generated("))
}
