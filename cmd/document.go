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
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/anuvad/internal/document"
	"github.com/valpere/anuvad/internal/language"
)

var (
	docFile   string
	docSource string
	docTarget string
	docPrint  bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Translate a document and save the result",
	Long: `Translate a document and save it as translated_<name>.txt.

Files up to 10MB are accepted. Only plain-text (.txt) files are decoded;
.pdf, .doc and .docx are accepted but read as raw text.

Backends (document.backend):
  stub      simulated translation: waits document.simulated_latency and
            returns the original content inside an annotated header
  service   chunks the text through the configured translation services`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pair, err := language.NewPair(docSource, docTarget)
		if err != nil {
			return err
		}

		tr, err := newDocumentTranslator(appConfig)
		if err != nil {
			return err
		}
		session := document.NewSession(document.Options{Translator: tr, Logger: &logger})

		file, err := document.FileFromPath(docFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		pending, err := session.Submit(file)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Selected %s (%s)\n", pending.Name, pending.SizeKB())
		fmt.Fprintf(os.Stderr, "Translating from %s to %s...\n", pair.Source.Name, pair.Target.Name)

		ctx, stop := signalContext()
		defer stop()

		start := time.Now()
		artifact, err := session.Translate(ctx, pair)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Translation complete in %s\n", time.Since(start).Round(time.Millisecond))

		if docPrint {
			fmt.Print(artifact.Text)
			return nil
		}

		saver := document.DirSaver{Dir: appConfig.Document.OutputDir}
		if _, err := session.Export(ctx, saver); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", saver.Path(document.ExportArtifact(artifact)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(documentCmd)

	f := documentCmd.Flags()
	f.StringVarP(&docFile, "file", "f", "", "Document to translate (required)")
	f.StringVarP(&docSource, "source", "s", "en", "Source language code")
	f.StringVarP(&docTarget, "target", "t", "hi", "Target language code")
	f.BoolVar(&docPrint, "print", false, "Print the translated document instead of saving it")
	f.String("backend", "stub", "Translation backend (stub or service)")
	f.Duration("latency", document.DefaultLatency, "Simulated latency of the stub backend")
	f.StringP("output-dir", "o", ".", "Directory for translated_<name>.txt")
	f.Int("chunk-size", document.DefaultChunkSize, "Maximum characters per request for the service backend")

	_ = v.BindPFlag("document.backend", f.Lookup("backend"))
	_ = v.BindPFlag("document.simulated_latency", f.Lookup("latency"))
	_ = v.BindPFlag("document.output_dir", f.Lookup("output-dir"))
	_ = v.BindPFlag("document.chunk_size", f.Lookup("chunk-size"))

	documentCmd.MarkFlagRequired("file")
}
