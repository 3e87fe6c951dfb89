package config

// Diff describes what changed between two loaded configs. Log level and
// engine limits can be applied to a running server; everything else needs a
// restart.
type Diff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// LimitsChanged is set when the engine default or maximum result limit
	// changed.
	LimitsChanged bool

	// RestartRequired is set when the transport, listen address, or any
	// Steam client setting changed. Those are fixed at startup.
	RestartRequired bool
}

// Compare reports what changed between old and new.
func Compare(old, new *Config) Diff {
	d := Diff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Engine != new.Engine {
		d.LimitsChanged = true
	}
	if old.Server.Transport != new.Server.Transport ||
		old.Server.ListenAddr != new.Server.ListenAddr ||
		old.Steam != new.Steam {
		d.RestartRequired = true
	}
	return d
}
