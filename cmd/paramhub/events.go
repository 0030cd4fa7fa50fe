package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/modbus-paramhub/internal/eventlog"
)

var eventsCmd = &cobra.Command{
	Use:   "events <events.cbor>",
	Short: "Print a parameter event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var f eventlog.Filter
		f.UnitID, _ = cmd.Flags().GetString("unit")
		f.Name, _ = cmd.Flags().GetString("param")
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			f.Since = time.Now().Add(-since)
		}

		r, err := eventlog.OpenReader(args[0], f)
		if err != nil {
			return err
		}
		defer r.Close()

		out := cmd.OutOrStdout()
		for {
			e, err := r.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s unit=%s param=%s type=%s value=%q id=%s\n",
				e.At.Format(time.RFC3339Nano), e.UnitID, e.Name, e.Type, e.Value, e.ID)
		}
	},
}

func init() {
	eventsCmd.Flags().StringP("unit", "u", "", "only events of this unit")
	eventsCmd.Flags().StringP("param", "p", "", "only events of this parameter")
	eventsCmd.Flags().Duration("since", 0, "only events newer than this age, e.g. 1h")
	rootCmd.AddCommand(eventsCmd)
}
