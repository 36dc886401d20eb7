package cmd

import (
	"context"
	"io"

	"github.com/ardnew/nia/cli/cmd/repl"
	"github.com/ardnew/nia/log"
)

// Repl starts an interactive read-eval-print loop, optionally preloading
// any explicit source files or stdin before accepting input.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ktx := kongContextFrom(ctx)

	cacheDir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache directory undefined")
	}

	var reader io.Reader
	if src := sourceFilesFrom(ctx); src != nil && !src.IsZero() {
		reader = src
	}

	return repl.Run(ctx, reader, cacheDir, log.Default())
}
