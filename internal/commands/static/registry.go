package staticcmd

import (
	"errors"

	"github.com/lagstiftning/go-lagstiftning/internal/commands"
	"github.com/lagstiftning/go-lagstiftning/internal/generator"
	"github.com/lagstiftning/go-lagstiftning/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterStaticCommands.
type HandlerSet struct {
	Build    *BuildSiteHandler
	Clean    *CleanSiteHandler
	Validate *ValidateRevisionsHandler
}

// RegisterStaticCommands builds the site and revision handlers and registers
// them with reg when one is supplied.
func RegisterStaticCommands(reg CommandRegistry, service generator.Service, source generator.RevisionSource, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("static command registration: generator service is nil")
	}
	if source == nil {
		return nil, errors.New("static command registration: revision source is nil")
	}

	logger := commands.CommandLogger(provider, "static")
	set := &HandlerSet{
		Build:    NewBuildSiteHandler(service, logger),
		Clean:    NewCleanSiteHandler(service, logger),
		Validate: NewValidateRevisionsHandler(source, logger),
	}

	if reg != nil {
		for _, handler := range []any{set.Build, set.Clean, set.Validate} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
