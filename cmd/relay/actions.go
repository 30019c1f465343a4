package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/CerealNotFound/function-calling-server/catalog"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the action catalogue",
	Long:  `Prints every action the model may request, with its parameter schema when --schema is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		schemas, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return err
		}

		withSchema, _ := cmd.Flags().GetBool("schema")
		out := cmd.OutOrStdout()
		for _, s := range schemas {
			fmt.Fprintln(out, color.New(color.Bold).Sprint(s.Name)+"  "+s.Description)
			if !withSchema {
				continue
			}
			data, err := json.MarshalIndent(s.Tool().Parameters, "  ", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "  "+string(data))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.Flags().Bool("schema", false, "Print each action's JSON Schema")
}
