/*
Package cmd provides the command-line commands and actions.

Copyright © 2020 Eldrix Ltd and Mark Wardle (mark@wardle.org)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wardle/synthds/validator"
)

// validateCmd is the "synthds validate" command, checking a directory of
// generated messages against the template they were generated from.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate generated discharge summaries against their template",
	Long: `Validate that every message in a directory is structurally identical to
the template: same top-level segment order, same element addresses, same
repeat counts and same observation headings. Also checks that message,
patient and (optionally) visit identifiers are unique across the batch.`,
	Example: `synthds validate --template DS_TemplateC1.xml --indir out
synthds validate --template DS_TemplateC1.xml --indir out --expected-count 50 --require-visit-unique`,
	Args: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("template") == "" {
			return errors.New("no template specified")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		indir, _ := cmd.Flags().GetString("indir")
		expected, _ := cmd.Flags().GetInt("expected-count")
		noPaths, _ := cmd.Flags().GetBool("no-path-check")
		noHeadings, _ := cmd.Flags().GetBool("no-heading-check")
		noCounts, _ := cmd.Flags().GetBool("no-count-check")
		visitUnique, _ := cmd.Flags().GetBool("require-visit-unique")
		fileUnique, _ := cmd.Flags().GetBool("require-file-unique")
		maxPathDiff, _ := cmd.Flags().GetInt("max-path-diff")

		opts := validator.Options{
			TemplatePath:       viper.GetString("template"),
			InDir:              indir,
			ExpectedCount:      expected,
			CheckPaths:         !noPaths,
			CheckHeadings:      !noHeadings,
			CheckCounts:        !noCounts,
			RequireVisitUnique: visitUnique,
			RequireFileUnique:  fileUnique,
			MaxPathDiff:        maxPathDiff,
		}
		res, err := validator.Validate(opts)
		if err != nil {
			log.Fatalf("validate: %s", err)
		}
		if !res.OK() {
			log.Printf("validate: %d of %d files failed", len(res.Failures), res.Checked)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("indir", "out", "Directory of generated messages to validate")
	validateCmd.Flags().Int("expected-count", -1, "Expected number of messages, -1 to skip the check")
	validateCmd.Flags().Bool("no-path-check", false, "Skip the element address set check")
	validateCmd.Flags().Bool("no-heading-check", false, "Skip the observation heading check")
	validateCmd.Flags().Bool("no-count-check", false, "Skip the repeat count check")
	validateCmd.Flags().Bool("require-visit-unique", false, "Require PV1.19 visit numbers to be unique across the batch")
	validateCmd.Flags().Bool("require-file-unique", true, "Require file content to be unique across the batch")
	validateCmd.Flags().Int("max-path-diff", 8, "Maximum number of address differences to report per file")
}
