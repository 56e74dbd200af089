// =============================================================================
// Graduation Audit - Main Entry Point
// =============================================================================
//
// This is the main entry point for the gradaudit CLI. It delegates command
// execution to the cmd package.
//
// USAGE:
//   gradaudit reconcile  - Reconcile the roster with the transcript archive
//   gradaudit summarize  - Print the credit summary of one transcript
//   gradaudit validate   - Validate the configuration and vocabulary
//   gradaudit version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, reconciliation, credits, payload, session
//   - pkg/utils/     : Artifact file management
//
// =============================================================================

package main

import (
	"github.com/sungjoonyoung/SJY-Dongguk-Graduation-FE/cmd"
)

func main() {
	cmd.Execute()
}
