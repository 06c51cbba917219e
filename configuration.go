package gopick

import (
	"fmt"

	"github.com/a-peyrard/gopick/config"
	"github.com/a-peyrard/gopick/option"
	"github.com/rs/zerolog"
)

const configurationEnvPrefix = "GOPICK"

// Configuration tunes a Tree. It can be loaded from GOPICK_* environment variables.
type Configuration struct {
	// LogLevel is a zerolog level name ("debug", "info"...), applied to the tree logger.
	LogLevel string
	// PreventMultipleRootScopes rejects opening a second root scope in the tree.
	PreventMultipleRootScopes bool
	// DisableJustInTime restricts resolutions to explicit bindings.
	DisableJustInTime bool
}

// LoadConfiguration reads the Configuration from the environment, GOPICK_LOG_LEVEL,
// GOPICK_PREVENT_MULTIPLE_ROOT_SCOPES and GOPICK_DISABLE_JUST_IN_TIME.
func LoadConfiguration(opts ...option.Option[config.Options]) (Configuration, error) {
	opts = append([]option.Option[config.Options]{config.WithEnvPrefix(configurationEnvPrefix)}, opts...)
	loaded, err := config.Load[Configuration](opts...)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to load gopick configuration:\n\t%w", err)
	}
	if loaded.LogLevel != "" {
		if _, err := zerolog.ParseLevel(loaded.LogLevel); err != nil {
			return Configuration{}, fmt.Errorf("invalid log level %q:\n\t%w", loaded.LogLevel, err)
		}
	}
	return *loaded, nil
}

func (c Configuration) level() (zerolog.Level, bool) {
	if c.LogLevel == "" {
		return zerolog.NoLevel, false
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, false
	}
	return level, true
}
