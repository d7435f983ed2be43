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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/anuvad/internal/language"
	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/voice"
)

var (
	voiceInput  string
	voiceSource string
	voiceTarget string
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Recognize speech, translate it and speak the result",
	Long: `Run one voice translation: recognize the recording, translate the
transcript and hand the translation to the speech synthesizer.

The bundled recognizer reads the recording as a UTF-8 transcript; set
voice.transcript (or --transcript) to fix the recognized text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pair, err := language.NewPair(voiceSource, voiceTarget)
		if err != nil {
			return err
		}

		var audio io.Reader = os.Stdin
		if voiceInput != "" && voiceInput != "-" {
			f, err := os.Open(voiceInput)
			if err != nil {
				return fmt.Errorf("failed to open recording: %w", err)
			}
			defer f.Close()
			audio = f
		}

		synth := speech.LogSynthesizer{Logger: logger}
		text, closeCache, err := newTextService(appConfig, synth)
		if err != nil {
			return err
		}
		defer closeCache()

		session := voice.NewSession(voice.Options{
			Recognizer:  speech.StubRecognizer{Transcript: appConfig.Voice.Transcript},
			Translator:  text,
			Synthesizer: synth,
			Logger:      &logger,
		})

		ctx, stop := signalContext()
		defer stop()

		res, err := session.Run(ctx, audio, pair)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(voiceCmd)

	f := voiceCmd.Flags()
	f.StringVarP(&voiceInput, "input", "i", "-", "Recording to recognize, \"-\" for stdin")
	f.StringVarP(&voiceSource, "source", "s", "en", "Spoken language code")
	f.StringVarP(&voiceTarget, "target", "t", "hi", "Target language code")
	f.String("transcript", "", "Transcript returned by the stub recognizer")

	_ = v.BindPFlag("voice.transcript", f.Lookup("transcript"))
}
