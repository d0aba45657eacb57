// Command quizctl is the operator CLI: it previews extraction for a URL and
// runs lifecycle operations against the database.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"healthquiz/internal/observability/logging"
)

func main() {
	slog.SetDefault(logging.NewTextLogger())

	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
