package opts

import (
	"github.com/walteh/copywatch/pkg/config"
	"github.com/walteh/copywatch/pkg/log"
)

// RootOpts contains shared options used by all commands. It is filled in by
// the root command before any subcommand runs.
type RootOpts struct {
	// Config is the validated configuration
	Config *config.Config
	// Logger receives user facing messages
	Logger log.Sink
}

// Close releases the logger, flushing any queued lines
func (o *RootOpts) Close() error {
	if o == nil || o.Logger == nil {
		return nil
	}
	return o.Logger.Close()
}
