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
	"github.com/spf13/cobra"

	"github.com/valpere/anuvad/internal/document"
	"github.com/valpere/anuvad/internal/server"
	"github.com/valpere/anuvad/internal/speech"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the translation portal API",
	Long: `Serve text, voice and document translation over HTTP.

Endpoints:
  GET    /healthz
  GET    /metrics
  GET    /api/languages
  POST   /api/text
  POST   /api/voice
  POST   /api/documents
  GET    /api/documents/{id}
  DELETE /api/documents/{id}
  PUT    /api/documents/{id}/file
  POST   /api/documents/{id}/translate
  GET    /api/documents/{id}/download`,
	RunE: func(cmd *cobra.Command, args []string) error {
		synth := speech.LogSynthesizer{Logger: logger}
		text, closeCache, err := newTextService(appConfig, synth)
		if err != nil {
			return err
		}
		defer closeCache()

		tr, err := newDocumentTranslator(appConfig)
		if err != nil {
			return err
		}

		srv := server.New(appConfig.Server, server.Deps{
			Text:        text,
			Recognizer:  speech.StubRecognizer{Transcript: appConfig.Voice.Transcript},
			Synthesizer: synth,
			NewDocumentSession: func() *document.Session {
				return document.NewSession(document.Options{Translator: tr, Logger: &logger})
			},
			Logger: &logger,
		})

		ctx, stop := signalContext()
		defer stop()

		logger.Info().
			Str("addr", appConfig.Server.Addr).
			Str("document_backend", appConfig.Document.Backend).
			Strs("services", appConfig.Translation.Services).
			Msg("starting server")
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
