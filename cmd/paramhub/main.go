// Command paramhub polls Modbus sources into tracked parameters and
// publishes changed values to Modbus and Raw Ingest targets.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paramhub",
	Short: "Poll Modbus sources and publish changed parameters.",
	Long: `paramhub polls Modbus TCP sources, decodes the configured parameters, ` +
		`and publishes every changed value to its targets. A per-unit device ` +
		`status block is maintained in status memory.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
