package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/empleomatch/empleomatch/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [cv-file]",
	Short: "Extract a structured profile from CV text",
	Long:  "Reads CV text from the given file (or stdin when omitted) and prints the extracted profile as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			text []byte
			err  error
		)
		if len(args) == 1 {
			text, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading cv: %w", err)
			}
		} else {
			text, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		pipeline := extract.New().
			WithMaxSkills(cfg.Extract.MaxSkills).
			WithLanguage(cfg.Extract.LanguagePreference)
		profile := pipeline.Profile(string(text))
		return printJSON(profile)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
