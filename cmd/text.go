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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/textmode"
)

var (
	textFile   string
	textSource string
	textTarget string
	textSpeak  bool
	textJSON   bool
)

var textCmd = &cobra.Command{
	Use:   "text [text...]",
	Short: "Translate a short text",
	Long: `Translate text given as arguments, read from --file, or piped on stdin.

Use --source auto to detect the source language. Results are cached in
the SQLite database at cache.path unless --no-cache is set.`,
	Example: `  anuvad text -t hi "Where is the railway station?"
  echo "வணக்கம்" | anuvad text -s auto -t en`,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readTextInput(args)
		if err != nil {
			return err
		}

		svc, closeCache, err := newTextService(appConfig, speech.LogSynthesizer{Logger: logger})
		if err != nil {
			return err
		}
		defer closeCache()

		ctx, stop := signalContext()
		defer stop()

		res, err := svc.Translate(ctx, input, textSource, textTarget)
		if err != nil {
			return err
		}

		if textJSON {
			return printJSON(res)
		}
		fmt.Println(res.TranslatedText)
		source := res.Source
		if textSource == textmode.AutoSource {
			source += " (detected)"
		}
		fmt.Fprintf(os.Stderr, "%s -> %s via %s, cached: %v\n", source, res.Target, res.Service, res.Cached)

		if textSpeak {
			if err := svc.Speak(ctx, res.TranslatedText, res.Target); err != nil {
				logger.Warn().Err(err).Msg("speech synthesis failed")
			}
		}
		return nil
	},
}

func readTextInput(args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case textFile != "":
		data, err := os.ReadFile(textFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func init() {
	rootCmd.AddCommand(textCmd)

	f := textCmd.Flags()
	f.StringVarP(&textFile, "file", "f", "", "Read text from a file")
	f.StringVarP(&textSource, "source", "s", "en", "Source language code, or \"auto\"")
	f.StringVarP(&textTarget, "target", "t", "hi", "Target language code")
	f.BoolVar(&textSpeak, "speak", false, "Speak the translation")
	f.BoolVar(&textJSON, "json", false, "Print the result as JSON")
}
