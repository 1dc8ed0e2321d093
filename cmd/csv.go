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
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/ddgtran/internal/orchestrator"
)

var (
	csvInputFile   string
	csvOutputFile  string
	csvSourceLang  string
	csvTargetLang  string
	csvColumns     []int
	csvSkipHeader  bool
	csvDetectLocal bool
	csvNoCache     bool
)

type cellRef struct{ row, col int }

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Translate columns of a CSV file",
	Long: `Translate one or more columns in a CSV file.

By default all columns are translated. Use -l to select specific columns
(0-indexed). The flag may be repeated to select multiple columns. Cells that
fail to translate keep their original text.

Example:
  ddgtran csv -i data.csv -o out.csv -t uk -l 1 -l 3 --skip-header`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sameFile(csvInputFile, csvOutputFile) {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		f, err := os.Open(csvInputFile)
		if err != nil {
			return fmt.Errorf("failed to open input CSV: %w", err)
		}
		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("CSV file is empty")
		}

		colSet := make(map[int]bool, len(csvColumns))
		for _, c := range csvColumns {
			colSet[c] = true
		}
		translateAll := len(csvColumns) == 0

		var refs []cellRef
		var texts []string
		for rowIdx, row := range records {
			if rowIdx == 0 && csvSkipHeader {
				continue
			}
			for colIdx, cell := range row {
				if !translateAll && !colSet[colIdx] {
					continue
				}
				if strings.TrimSpace(cell) == "" {
					continue
				}
				refs = append(refs, cellRef{rowIdx, colIdx})
				texts = append(texts, cell)
			}
		}

		client, err := newClient(newService(), csvSourceLang, csvTargetLang, csvDetectLocal, strings.Join(texts, "\n"))
		if err != nil {
			return err
		}

		var memory orchestrator.Memory
		if !csvNoCache {
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

		result := orch.Execute(cmd.Context(), texts)

		for i, it := range result.Items {
			ref := refs[i]
			if it.Err != nil {
				logger.Warn("cell not translated, keeping original",
					zap.Int("row", ref.row), zap.Int("col", ref.col), zap.Error(it.Err))
				continue
			}
			records[ref.row][ref.col] = it.Output
		}

		out, err := os.Create(csvOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output CSV: %w", err)
		}
		defer out.Close()

		writer := csv.NewWriter(out)
		if err := writer.WriteAll(records); err != nil {
			return fmt.Errorf("failed to write output CSV: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Translated %d/%d cells (%d from cache, %d failed): %s\n",
			result.Succeeded, len(texts), result.Cached, result.Failed, csvOutputFile)
		return cmd.Context().Err()
	},
}

func init() {
	rootCmd.AddCommand(csvCmd)

	csvCmd.Flags().StringVarP(&csvInputFile, "input", "i", "", "Input CSV file (required)")
	csvCmd.Flags().StringVarP(&csvOutputFile, "output", "o", "", "Output CSV file (required)")
	csvCmd.Flags().StringVarP(&csvSourceLang, "source", "s", "auto", "Source language code")
	csvCmd.Flags().StringVarP(&csvTargetLang, "target", "t", "", "Target language code (required)")
	csvCmd.Flags().IntSliceVarP(&csvColumns, "column", "l", nil, "Column index to translate (0-indexed, repeatable; default: all columns)")
	csvCmd.Flags().BoolVar(&csvSkipHeader, "skip-header", false, "Leave the first row untranslated")
	csvCmd.Flags().BoolVar(&csvDetectLocal, "detect-local", false, "Detect the source language locally when it is auto")
	csvCmd.Flags().BoolVar(&csvNoCache, "no-cache", false, "Disable translation memory cache")

	csvCmd.MarkFlagRequired("input")
	csvCmd.MarkFlagRequired("output")
	csvCmd.MarkFlagRequired("target")
}
