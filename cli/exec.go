package cli

// This file contains the hidden exec command used by process dispatch.
// The parent re-invokes the suite binary with "exec --test <name>" and
// recovers the verdict from the packed exit status.

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/contendgo/contendgo/dispatch"
)

func (a *App) execChild(ctx *cli.Context) error {
	name := ctx.String("test")
	scratch := ctx.String("scratch")

	a.logger.Debug().Str("test", name).Str("scratch", scratch).Msg("Child mode")

	// The exit status is the protocol; bypass urfave's error handling so
	// the packed encoding reaches the parent unmodified.
	status := dispatch.ChildMain(os.Stdout, a.registry, name, scratch, a.logger)
	os.Exit(status)
	return nil
}
