package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMyMemoryService_Name(t *testing.T) {
	svc := NewMyMemoryService("", "")

	if svc.Name() != "mymemory" {
		t.Errorf("expected 'mymemory', got %q", svc.Name())
	}
	if svc.baseURL != defaultMyMemoryURL {
		t.Errorf("expected default base URL, got %q", svc.baseURL)
	}
}

func TestMyMemoryService_SupportedLanguages(t *testing.T) {
	svc := NewMyMemoryService("", "")

	langs, err := svc.SupportedLanguages(context.Background())
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	found := false
	for _, l := range langs {
		if l == "hi" {
			found = true
		}
	}
	if !found {
		t.Error("expected Hindi to be supported")
	}
}

func TestMyMemoryService_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Errorf("expected /get, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("langpair"); got != "en|hi" {
			t.Errorf("expected langpair en|hi, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "hello & goodbye" {
			t.Errorf("expected escaped query to round-trip, got %q", got)
		}
		if got := r.URL.Query().Get("de"); got != "me@example.com" {
			t.Errorf("expected email param, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData":   map[string]interface{}{"translatedText": "नमस्ते और अलविदा", "match": 0.98},
			"responseStatus": 200,
		})
	}))
	defer server.Close()

	svc := NewMyMemoryService("me@example.com", server.URL)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "hello & goodbye",
		SourceLang: "en",
		TargetLang: "hi",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "नमस्ते और अलविदा" {
		t.Errorf("unexpected translation %q", result.TranslatedText)
	}
	if result.Confidence != 0.98 {
		t.Errorf("expected confidence 0.98, got %v", result.Confidence)
	}
}

func TestMyMemoryService_Translate_AutoSourceDefaultsToEnglish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("langpair"); got != "en|ta" {
			t.Errorf("expected en|ta, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData":   map[string]interface{}{"translatedText": "வணக்கம்", "match": 3},
			"responseStatus": 200,
		})
	}))
	defer server.Close()

	svc := NewMyMemoryService("", server.URL)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "hello",
		SourceLang: "auto",
		TargetLang: "ta",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != 1 {
		t.Errorf("expected confidence clamped to 1, got %v", result.Confidence)
	}
}

func TestMyMemoryService_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseData":    map[string]interface{}{"translatedText": ""},
			"responseStatus":  403,
			"responseDetails": "INVALID LANGUAGE PAIR",
		})
	}))
	defer server.Close()

	svc := NewMyMemoryService("", server.URL)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "xx",
	})

	if err == nil {
		t.Fatal("expected error for non-200 responseStatus")
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.Service != "mymemory" {
		t.Errorf("expected ServiceError from mymemory, got %v", err)
	}
	if result == nil || !strings.Contains(result.Error, "INVALID LANGUAGE PAIR") {
		t.Errorf("expected details in result error, got %+v", result)
	}
}

func TestMyMemoryService_Translate_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	svc := NewMyMemoryService("", server.URL)
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "hi", SourceLang: "en", TargetLang: "hi"})
	if err == nil {
		t.Error("expected decode error")
	}
	if result == nil || result.Error == "" {
		t.Error("expected error message in result")
	}
	if result.Latency <= 0 {
		t.Error("expected latency to be recorded")
	}
}

func TestOllamaTranslator_Translate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("expected stream=false")
		}
		if !strings.Contains(req.Prompt, "English (en) to Hindi (hi)") {
			t.Errorf("expected language names in prompt, got %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "<think>ok</think>\"नमस्ते\""})
	}))
	defer server.Close()

	svc := &OllamaTranslator{
		baseURL: server.URL,
		models:  []string{"aya-expanse:8b"},
		client:  server.Client(),
	}

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "hi",
		SourceName: "English",
		TargetName: "Hindi",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "नमस्ते" {
		t.Errorf("expected cleaned translation, got %q", result.TranslatedText)
	}
	if result.Metadata["model"] != "aya-expanse:8b" {
		t.Errorf("expected model in metadata, got %v", result.Metadata)
	}
}

func TestOllamaTranslator_Translate_ConfigModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "custom" {
			t.Errorf("expected model from config, got %q", req.Model)
		}
		if !strings.Contains(req.Prompt, "the detected language") {
			t.Errorf("expected auto source wording, got %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "नमस्ते"})
	}))
	defer server.Close()

	svc := NewOllamaTranslator(server.URL, nil)
	_, err := svc.Translate(context.Background(), ServiceConfig{Model: "custom"}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "auto",
		TargetLang: "hi",
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOllamaTranslator_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewOllamaTranslator(server.URL, []string{"llama3.1:8b"})
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "hi",
	})

	if err == nil {
		t.Error("expected error for non-OK status")
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestOllamaTranslator_Translate_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "<think>unfinished"})
	}))
	defer server.Close()

	svc := NewOllamaTranslator(server.URL, nil)
	if _, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{Text: "Hello", TargetLang: "hi"}); err == nil {
		t.Error("expected error when cleaned response is empty")
	}
}

func TestOllamaTranslator_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := NewOllamaTranslator(server.URL, nil).IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	server.Close()
	if err := NewOllamaTranslator(server.URL, nil).IsAvailable(context.Background()); err == nil {
		t.Error("expected error when server is down")
	}
}

func TestGoogleService_Translate_InvalidTarget(t *testing.T) {
	svc := NewGoogleService()

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "not a language!",
	})
	if err == nil {
		t.Fatal("expected error for invalid target language")
	}
	if result.ServiceName != "google" || result.Error == "" {
		t.Errorf("expected populated failure result, got %+v", result)
	}
}
