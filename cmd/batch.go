/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/ddgtran/internal/orchestrator"
)

var (
	batchInputFile   string
	batchOutputFile  string
	batchSourceLang  string
	batchTargetLang  string
	batchDetectLocal bool
	batchNoCache     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Translate a file line by line",
	Long: `Translate every line of --input (or stdin) separately and write one
translated line per input line. Blank lines are kept as they are; lines that
fail are written as "TRANSLATOR ERROR".

Example:
  ddgtran batch -i lines.txt -o lines.en.txt -t en --concurrency 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sameFile(batchInputFile, batchOutputFile) {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		lines, err := readLines(batchInputFile)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("nothing to translate")
		}

		client, err := newClient(newService(), batchSourceLang, batchTargetLang, batchDetectLocal, strings.Join(lines, "\n"))
		if err != nil {
			return err
		}

		var memory orchestrator.Memory
		if !batchNoCache {
			db, err := openStore(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			memory = db
		}

		orch := orchestrator.New(client, memory, orchestrator.OrchestratorConfig{
			Timeout:     cfg.Timeout,
			Concurrency: cfg.Concurrency,
		}, logger)

		result := orch.Execute(cmd.Context(), lines)

		out := make([]string, len(result.Items))
		for i, it := range result.Items {
			out[i] = it.Output
		}
		if err := writeOutput(batchOutputFile, strings.Join(out, "\n")); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Translated %d/%d lines (%d from cache, %d failed)\n",
			result.Succeeded, result.Succeeded+result.Failed, result.Cached, result.Failed)

		if err := cmd.Context().Err(); err != nil {
			return err
		}
		if result.Failed > 0 && result.Succeeded == 0 {
			return fmt.Errorf("all %d lines failed", result.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInputFile, "input", "i", "", "Input file, one text per line (default stdin)")
	batchCmd.Flags().StringVarP(&batchOutputFile, "output", "o", "", "Output file (default stdout)")
	batchCmd.Flags().StringVarP(&batchSourceLang, "source", "s", "auto", "Source language code")
	batchCmd.Flags().StringVarP(&batchTargetLang, "target", "t", "", "Target language code (required)")
	batchCmd.Flags().BoolVar(&batchDetectLocal, "detect-local", false, "Detect the source language locally when it is auto")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "Disable translation memory cache")

	batchCmd.MarkFlagRequired("target")
}
