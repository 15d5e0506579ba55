package main

import (
	"context"
	"fmt"
	"os"

	"bilancio/internal/cli"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardownApp(err); cerr != nil {
		fmt.Fprintln(os.Stderr, "Error:", cerr)
	}
	stop()
	if err != nil {
		os.Exit(1)
	}
}
