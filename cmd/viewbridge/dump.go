package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/overlay/viewbridge"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Run one pass and print the view state as JSON",
	RunE:  runDump,
}

var dumpIndent bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpIndent, "indent", true, "indent the JSON output")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess, err := viewbridge.Open(cmd.Context(), cfg, viewbridge.SessionOptions{Logger: logger})
	if err != nil {
		return err
	}
	defer sess.Close()

	enc := json.NewEncoder(os.Stdout)
	if dumpIndent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(sess.Bridge.ViewState())
}
