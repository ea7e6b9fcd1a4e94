package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/album-ingest-service/internal/album"
)

// TestMergeConfigAndFlags verifies that command-line flags correctly override
// config file settings.
func TestMergeConfigAndFlags(t *testing.T) {
	t.Parallel()

	baseConfig := config{
		Paths:   configPaths{InputDir: "/config/in"},
		LogsDir: configLogsDir{AlbumIngest: ""},
		Settings: configSettings{
			DPI:      150,
			Workers:  2,
			MaxDepth: 3,
		},
		Rates:   album.Rates{PerPage: 0.5, Print: 10, Cover: 5, Tax: 0.1},
		Catalog: nil,
	}

	testCases := []struct {
		name            string
		flags           flags
		expectedDPI     float64
		expectedWorkers int
		expectedLayout  album.PageLayout
		layoutExplicit  bool
	}{
		{
			name: "Flags should override all corresponding config values",
			flags: flags{
				inputPath: "/flag/in",
				layout:    "single",
				binding:   "",
				dpi:       300,
				workers:   8,
			},
			expectedDPI:     300,
			expectedWorkers: 8,
			expectedLayout:  album.LayoutSingle,
			layoutExplicit:  true,
		},
		{
			name: "Config values should be used when flags are not provided",
			flags: flags{
				inputPath: "",
				layout:    "",
				binding:   "",
				dpi:       0,
				workers:   0,
			},
			expectedDPI:     150,
			expectedWorkers: 2,
			expectedLayout:  "",
			layoutExplicit:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig
			result := mergeConfigAndFlags(&cfg, tc.flags)

			assert.InDelta(t, tc.expectedDPI, result.AssumedDPI, 0.001)
			assert.Equal(t, tc.expectedWorkers, result.Workers)
			assert.Equal(t, baseConfig.Rates, result.Rates)
			assert.Equal(t, baseConfig.Settings.MaxDepth, result.MaxDepth)

			layoutValue, explicit := result.LayoutDefault.Explicit()
			assert.Equal(t, tc.layoutExplicit, explicit)

			if tc.layoutExplicit {
				assert.Equal(t, tc.expectedLayout, layoutValue)
			}
		})
	}
}

// TestMergeConfigAndFlags_BindingOverride covers the binding flag separately
// since it has no config counterpart.
func TestMergeConfigAndFlags_BindingOverride(t *testing.T) {
	t.Parallel()

	cfg := config{
		Paths:    configPaths{InputDir: ""},
		LogsDir:  configLogsDir{AlbumIngest: ""},
		Settings: configSettings{DPI: 0, Workers: 0, MaxDepth: 0},
		Rates:    album.Rates{PerPage: 0, Print: 0, Cover: 0, Tax: 0},
		Catalog:  nil,
	}
	flgs := flags{
		inputPath: "",
		layout:    "",
		binding:   "right_start_left_end",
		dpi:       0,
		workers:   0,
	}

	result := mergeConfigAndFlags(&cfg, flgs)

	binding, explicit := result.BindingDefault.Explicit()
	require.True(t, explicit)
	assert.Equal(t, album.RightStartLeftEnd, binding)
}

// TestSafeLoadConfig_MissingFile verifies a missing project.toml is not an
// error.
func TestSafeLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := safeLoadConfig("/nonexistent/project.toml")
	require.NoError(t, err)
	assert.Empty(t, cfg.Paths.InputDir)
}
