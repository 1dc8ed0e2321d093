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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/valpere/ddgtran/internal/detector"
	"github.com/valpere/ddgtran/internal/language"
	"github.com/valpere/ddgtran/internal/session"
	"github.com/valpere/ddgtran/internal/store"
	"github.com/valpere/ddgtran/internal/translator"
)

var sharedDetector = sync.OnceValue(detector.New)

func newSession() *session.Manager {
	source := session.NewPageSource(cfg.BaseURL, cfg.UserAgent, cfg.Timeout)
	return session.NewManager(source, logger)
}

func newService() *translator.DuckDuckGoService {
	return translator.NewDuckDuckGoService(cfg.ServiceConfig, newSession(), language.Default(), logger)
}

// newClient builds a client for the pair. With detectLocal set and an auto
// source, sample decides the source language locally.
func newClient(svc translator.TranslationService, source, target string, detectLocal bool, sample string) (*translator.Client, error) {
	if detectLocal && source == language.Auto {
		source = sharedDetector().SourceFor(sample, language.Default())
		logger.Info("local language detection", zap.String("source", source))
	}

	client, err := translator.NewClient(svc, source, target)
	if err != nil {
		return nil, err
	}
	return client.WithLogger(logger), nil
}

func openStore(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openInput returns the input file, or stdin when it is piped.
func openInput(inputFile string) (io.ReadCloser, error) {
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return f, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("no input: pass text, --input, or pipe data on stdin")
	}
	return io.NopCloser(os.Stdin), nil
}

// readText returns args joined by spaces, or the whole input.
func readText(args []string, inputFile string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	r, err := openInput(inputFile)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func readLines(inputFile string) ([]string, error) {
	r, err := openInput(inputFile)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}

// writeOutput writes text to outputFile, or to stdout when it is empty.
func writeOutput(outputFile, text string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(os.Stdout, text)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func sameFile(inputFile, outputFile string) bool {
	return inputFile != "" && outputFile != "" && filepath.Clean(inputFile) == filepath.Clean(outputFile)
}
