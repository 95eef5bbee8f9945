// main is the entry point for the graphgate CLI.
package main

import (
	"github.com/marketloom/graphgate/cmd"
	"github.com/marketloom/graphgate/internal/audit"
	"github.com/marketloom/graphgate/internal/contract"
)

func main() {
	err := cmd.Execute()

	cmd.CloseResources()
	if closeErr := audit.CloseAudit(); closeErr != nil {
		contract.LogWarn("Closing audit store", closeErr)
	}

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
