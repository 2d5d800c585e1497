package lagstiftning

import (
	"github.com/lagstiftning/go-lagstiftning/internal/revisions"
	"github.com/lagstiftning/go-lagstiftning/internal/runtimeconfig"
)

var (
	ErrSourceDirectoryRequired    = runtimeconfig.ErrSourceDirectoryRequired
	ErrBasePathInvalid            = runtimeconfig.ErrBasePathInvalid
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratorWorkersInvalid    = runtimeconfig.ErrGeneratorWorkersInvalid
	ErrGeneratorBaseURLInvalid    = runtimeconfig.ErrGeneratorBaseURLInvalid
	ErrMarkdownExtensionUnknown   = runtimeconfig.ErrMarkdownExtensionUnknown
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
	ErrWatchDebounceInvalid       = runtimeconfig.ErrWatchDebounceInvalid
)

var (
	ErrRevisionNotFound        = revisions.ErrNotFound
	ErrRevisionRead            = revisions.ErrRead
	ErrRevisionDeserialization = revisions.ErrDeserialization
	ErrRevisionSchema          = revisions.ErrSchema
	ErrRevisionRender          = revisions.ErrRender
	ErrInvalidIdentifier       = revisions.ErrInvalidIdentifier
)

type (
	Config          = runtimeconfig.Config
	GeneratorConfig = runtimeconfig.GeneratorConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	WatchConfig     = runtimeconfig.WatchConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
