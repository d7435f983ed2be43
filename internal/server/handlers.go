package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/valpere/anuvad/internal/document"
	"github.com/valpere/anuvad/internal/language"
	"github.com/valpere/anuvad/internal/speech"
	"github.com/valpere/anuvad/internal/textmode"
	"github.com/valpere/anuvad/internal/voice"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.documents.len(),
	})
}

type languagesResponse struct {
	Languages []language.Descriptor `json:"languages"`
	Default   language.Pair         `json:"default"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languagesResponse{
		Languages: language.All(),
		Default:   language.Default(),
	})
}

type textRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// errTextUnavailable is reported when the server was built without a text
// service; voice mode translates through it too.
var errTextUnavailable = errors.New("text translation is not configured")

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	if s.text == nil {
		writeError(w, http.StatusServiceUnavailable, errTextUnavailable.Error())
		return
	}
	var req textRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	def := language.Default()
	if req.Source == "" {
		req.Source = def.Source.Code
	}
	if req.Target == "" {
		req.Target = def.Target.Code
	}

	res, err := s.text.Translate(r.Context(), req.Text, req.Source, req.Target)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, textmode.ErrEmptyText), errors.Is(err, language.ErrUnsupported):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("text translation failed")
		writeError(w, http.StatusBadGateway, textmode.ErrTranslationFailed.Error())
	}
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if s.voice.Translator == nil {
		writeError(w, http.StatusServiceUnavailable, errTextUnavailable.Error())
		return
	}
	pair, err := pairFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := voice.NewSession(s.voice)
	res, err := session.Run(r.Context(), http.MaxBytesReader(w, r.Body, maxAudioBytes), pair)

	var recErr *voice.RecognitionError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.As(err, &recErr):
		status := http.StatusUnprocessableEntity
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		} else if errors.Is(err, speech.ErrNoSpeech) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
	case errors.Is(err, textmode.ErrEmptyText):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("voice translation failed")
		writeError(w, http.StatusBadGateway, textmode.ErrTranslationFailed.Error())
	}
}

func pairFromQuery(r *http.Request) (language.Pair, error) {
	def := language.Default()
	source, target := r.URL.Query().Get("source"), r.URL.Query().Get("target")
	if source == "" {
		source = def.Source.Code
	}
	if target == "" {
		target = def.Target.Code
	}
	return language.NewPair(source, target)
}

type documentResponse struct {
	ID string `json:"id"`
	document.Snapshot
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	file, status, err := readUpload(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	id, session, err := s.documents.create()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if _, err := session.Submit(file); err != nil {
		s.documents.remove(id)
		writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse{ID: id, Snapshot: session.Snapshot()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := s.documents.get(id)
	if !ok {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{ID: id, Snapshot: session.Snapshot()})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !s.documents.remove(chi.URLParam(r, "id")) {
		writeNotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := s.documents.get(id)
	if !ok {
		writeNotFound(w)
		return
	}
	file, status, err := readUpload(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	if _, err := session.Submit(file); err != nil {
		writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{ID: id, Snapshot: session.Snapshot()})
}

type translateRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *Server) handleTranslateDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, ok := s.documents.get(id)
	if !ok {
		writeNotFound(w)
		return
	}

	var req translateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	def := language.Default()
	if req.Source == "" {
		req.Source = def.Source.Code
	}
	if req.Target == "" {
		req.Target = def.Target.Code
	}
	pair, err := language.NewPair(req.Source, req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = session.Translate(r.Context(), pair)

	var readErr *document.ReadError
	var trErr *document.TranslationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, documentResponse{ID: id, Snapshot: session.Snapshot()})
	case errors.Is(err, document.ErrNoFile), errors.Is(err, document.ErrRunInFlight), errors.Is(err, document.ErrSuperseded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &readErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &trErr):
		if errors.Is(err, context.Canceled) {
			// Client went away; nobody is left to read the response.
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("document translation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// responseSaver streams an export to the client as a download.
type responseSaver struct {
	w http.ResponseWriter
}

func (s responseSaver) Save(ctx context.Context, out document.Output) error {
	s.w.Header().Set("Content-Type", out.ContentType)
	s.w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.Name}))
	s.w.Header().Set("Content-Length", strconv.Itoa(len(out.Body)))
	s.w.WriteHeader(http.StatusOK)
	_, err := s.w.Write(out.Body)
	return err
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	session, ok := s.documents.get(chi.URLParam(r, "id"))
	if !ok {
		writeNotFound(w)
		return
	}
	saved, err := session.Export(r.Context(), responseSaver{w: w})
	if err != nil {
		// Headers are already sent; all that is left is to log.
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("download interrupted")
		return
	}
	if !saved {
		writeError(w, http.StatusConflict, "no translated document available")
	}
}

// readUpload pulls the "file" part out of a multipart request. Files over
// the limit are described by name and size only; their bytes are never
// read so intake can reject them.
func readUpload(w http.ResponseWriter, r *http.Request) (document.File, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return document.File{}, http.StatusRequestEntityTooLarge, document.ErrFileTooLarge
		}
		return document.File{}, http.StatusBadRequest, errors.New("expected multipart form with a file field")
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		return document.File{}, http.StatusBadRequest, errors.New("missing file field")
	}
	defer part.Close()

	if header.Size > document.MaxFileSize {
		return document.File{Name: header.Filename, Size: header.Size}, 0, nil
	}
	data, err := io.ReadAll(part)
	if err != nil {
		return document.File{}, http.StatusBadRequest, err
	}
	return document.FileFromBytes(header.Filename, data), 0, nil
}

func writeSubmitError(w http.ResponseWriter, err error) {
	if errors.Is(err, document.ErrFileTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
