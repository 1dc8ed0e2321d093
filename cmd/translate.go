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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/ddgtran/internal/chunker"
	"github.com/valpere/ddgtran/internal/orchestrator"
	"github.com/valpere/ddgtran/internal/placeholder"
	"github.com/valpere/ddgtran/internal/store"
	"github.com/valpere/ddgtran/internal/translator"
	"github.com/valpere/ddgtran/internal/validator"
)

var (
	inputFile   string
	outputFile  string
	sourceLang  string
	targetLang  string
	detectLocal bool
	noCache     bool
	maxChars    int
	protect     bool
	verify      bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text",
	Long: `Translate text given as arguments, read from --input, or piped on stdin.

The source language defaults to "auto", which lets the service detect it.
Use --detect-local to detect it on this machine instead.

Texts longer than --max-chars are split at paragraph or sentence boundaries
and the pieces are translated in parallel. --protect keeps code, HTML tags
and URLs out of the translation; --verify warns when the result does not
look like the target language.

Examples:
  ddgtran translate -t en Jan ma kota.
  ddgtran translate -s en -t zh-Hans "I am happy"
  cat notes.txt | ddgtran translate -t de -o notes.de.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sameFile(inputFile, outputFile) {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text, err := readText(args, inputFile)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to translate")
		}

		client, err := newClient(newService(), sourceLang, targetLang, detectLocal, text)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		var db *store.Store
		if !noCache {
			db, err = openStore(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			cached, found, cacheErr := db.GetCachedTranslation(ctx, text, client.From(), client.To())
			if cacheErr != nil {
				logger.Warn("translation memory lookup failed", zap.Error(cacheErr))
			} else if found {
				logger.Debug("using cached translation")
				return writeOutput(outputFile, cached)
			}
		}

		out, err := translateText(ctx, client, text)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		if out.detected != "" {
			logger.Info("service detected source language", zap.String("language", out.detected))
		}

		switch {
		case db == nil:
		case out.degraded:
			logger.Warn("translation not saved to memory because it is incomplete")
		default:
			if err := db.SaveToMemory(ctx, text, client.From(), client.To(), out.text, out.detected); err != nil {
				logger.Warn("failed to save translation memory", zap.Error(err))
			}
		}

		return writeOutput(outputFile, out.text)
	},
}

type textTranslation struct {
	text     string
	detected string
	// degraded output lost shielded fragments or failed verification; it is
	// written out but kept out of the translation memory.
	degraded bool
}

// translateText applies --protect, --max-chars and --verify around the
// client call.
func translateText(ctx context.Context, client *translator.Client, text string) (*textTranslation, error) {
	work := text
	var protected *placeholder.Protected
	if protect {
		protected = placeholder.Protect(text)
		work = protected.Text
	}

	var translated, detected string
	pieces := chunker.Split(work, maxChars)
	if len(pieces) == 1 {
		result, err := client.TranslateResult(ctx, pieces[0].Text)
		if err != nil {
			return nil, err
		}
		translated, detected = result.TranslatedText, result.DetectedLanguage
	} else {
		logger.Debug("splitting long text", zap.Int("pieces", len(pieces)))
		orch := orchestrator.New(client, nil, orchestrator.OrchestratorConfig{
			Timeout:     cfg.Timeout,
			Concurrency: cfg.Concurrency,
		}, logger)

		result := orch.Execute(ctx, chunker.Texts(pieces))
		outs := make([]string, len(result.Items))
		for i, it := range result.Items {
			if it.Err != nil {
				return nil, fmt.Errorf("piece %d of %d: %w", i+1, len(pieces), it.Err)
			}
			outs[i] = it.Output
			if detected == "" {
				detected = it.DetectedLanguage
			}
		}
		translated = chunker.Join(pieces, outs)
	}

	out := &textTranslation{detected: detected}

	if protected != nil {
		restored, missing := protected.Restore(translated)
		if len(missing) > 0 {
			logger.Warn("protected fragments lost in translation",
				zap.String("fragments", protected.MissingFragments(missing)))
			out.degraded = true
		}
		translated = restored
	}

	if verify {
		if err := validator.New(sharedDetector()).Check(translated, client.To()); err != nil {
			logger.Warn("translation failed verification", zap.Error(err))
			out.degraded = true
		}
	}

	out.text = translated
	return out, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().BoolVar(&detectLocal, "detect-local", false, "Detect the source language locally when it is auto")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable translation memory cache")
	translateCmd.Flags().IntVar(&maxChars, "max-chars", chunker.DefaultMaxChars, "Split texts longer than this many characters (0 = never split)")
	translateCmd.Flags().BoolVar(&protect, "protect", false, "Keep code, HTML tags and URLs untranslated")
	translateCmd.Flags().BoolVar(&verify, "verify", false, "Warn when the result is not in the target language")

	translateCmd.MarkFlagRequired("target")
}
