package config_test

import (
	"testing"

	"github.com/MrWong99/steamscout/internal/config"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   config.Diff
	}{
		{
			name:   "identical",
			mutate: func(*config.Config) {},
			want:   config.Diff{},
		},
		{
			name:   "log level",
			mutate: func(c *config.Config) { c.Server.LogLevel = config.LogDebug },
			want:   config.Diff{LogLevelChanged: true, NewLogLevel: config.LogDebug},
		},
		{
			name:   "engine limits",
			mutate: func(c *config.Config) { c.Engine.MaxLimit = 100 },
			want:   config.Diff{LimitsChanged: true},
		},
		{
			name:   "listen addr needs restart",
			mutate: func(c *config.Config) { c.Server.ListenAddr = ":9999" },
			want:   config.Diff{RestartRequired: true},
		},
		{
			name:   "steam settings need restart",
			mutate: func(c *config.Config) { c.Steam.ScanLimit = 50 },
			want:   config.Diff{RestartRequired: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			old := config.Default()
			updated := config.Default()
			tc.mutate(updated)

			if got := config.Compare(old, updated); got != tc.want {
				t.Errorf("Compare() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
