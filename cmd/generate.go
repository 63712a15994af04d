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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wardle/synthds/generator"
)

// generateCmd is the "synthds generate" command, generating a batch of
// synthetic discharge summaries from a template.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic discharge summaries from a template",
	Long: `Generate a batch of synthetic HL7 v2 XML discharge summary (REF_I12)
messages. Each output file preserves the template's structure exactly; only
the text of existing elements is rewritten, with synthetic identifiers,
demographics and clinically coherent narrative content.`,
	Example: `synthds generate --template DS_TemplateC1.xml --outdir out --count 50
synthds generate --template DS_TemplateC1.xml --outdir out --count 10 --rng-seed 42 --scenario J18.9
synthds generate --template DS_TemplateC1.xml --outdir out --count 5 --ips patient-summary.json --train-out train.jsonl`,
	Args: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("template") == "" {
			return errors.New("no template specified")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		outdir, _ := cmd.Flags().GetString("outdir")
		count, _ := cmd.Flags().GetInt("count")
		ipsPath, _ := cmd.Flags().GetString("ips")
		scenarioCode, _ := cmd.Flags().GetString("scenario")
		trainOut, _ := cmd.Flags().GetString("train-out")
		seed, _ := cmd.Flags().GetInt64("rng-seed")
		useSeed := cmd.Flags().Changed("rng-seed")

		opts := generator.Options{
			TemplatePath: viper.GetString("template"),
			OutDir:       outdir,
			Count:        count,
			Seed:         seed,
			UseSeed:      useSeed,
			IPSPath:      ipsPath,
			Scenario:     scenarioCode,
			TrainOut:     trainOut,
		}
		if err := generator.Generate(opts); err != nil {
			log.Fatalf("generate: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("outdir", "out", "Output directory for generated messages")
	generateCmd.Flags().Int("count", 1, "Number of messages to generate")
	generateCmd.Flags().Int64("rng-seed", 0, "RNG seed for a reproducible batch")
	generateCmd.Flags().String("ips", "", "FHIR International Patient Summary bundle (JSON) to seed content")
	generateCmd.Flags().String("scenario", "", "Force a clinical scenario by diagnosis code (e.g. J18.9)")
	generateCmd.Flags().String("train-out", "", "Write one JSON line per message with its canonical content")
}
