package document

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/anuvad/internal/language"
)

type recordingSaver struct {
	mu      sync.Mutex
	outputs []Output
	err     error
}

func (r *recordingSaver) Save(ctx context.Context, out Output) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs = append(r.outputs, out)
	return nil
}

// gatedTranslator blocks each run until release is closed.
type gatedTranslator struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedTranslator() *gatedTranslator {
	return &gatedTranslator{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedTranslator) Translate(ctx context.Context, req Request) (Artifact, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return Artifact{}, ctx.Err()
	case <-g.release:
	}
	return Artifact{Text: req.Text, FileName: req.FileName, Pair: req.Pair}, nil
}

// countingTranslator tracks how many runs are inside the backend at once.
// With ignoreCancel set it only returns once release is closed.
type countingTranslator struct {
	ignoreCancel bool
	started      chan struct{}
	release      chan struct{}
	active       atomic.Int32
	peak         atomic.Int32
}

func newCountingTranslator(ignoreCancel bool) *countingTranslator {
	return &countingTranslator{
		ignoreCancel: ignoreCancel,
		started:      make(chan struct{}, 8),
		release:      make(chan struct{}),
	}
}

func (c *countingTranslator) Translate(ctx context.Context, req Request) (Artifact, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	c.started <- struct{}{}

	done := ctx.Done()
	if c.ignoreCancel {
		done = nil
	}
	select {
	case <-done:
		return Artifact{}, ctx.Err()
	case <-c.release:
	}
	return Artifact{Text: req.Text, FileName: req.FileName, Pair: req.Pair}, nil
}

type failingTranslator struct{}

func (failingTranslator) Translate(ctx context.Context, req Request) (Artifact, error) {
	return Artifact{}, errors.New("backend unavailable")
}

func newTestSession(tr Translator) *Session {
	if tr == nil {
		tr = &StubTranslator{Latency: time.Millisecond, Now: fixedNow}
	}
	return NewSession(Options{Translator: tr})
}

func TestSession_Submit_TooLarge(t *testing.T) {
	s := newTestSession(nil)

	_, err := s.Submit(File{Name: "big.txt", Size: MaxFileSize + 1})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, ok := s.Pending(); ok {
		t.Error("expected no pending file")
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle, got %s", s.Status())
	}
}

func TestSession_Submit_TooLargeKeepsPrevious(t *testing.T) {
	s := newTestSession(nil)
	ctx := context.Background()

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	if _, err := s.Translate(ctx, language.Default()); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if _, err := s.Submit(File{Name: "big.pdf", Size: MaxFileSize + 1}); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	pending, _ := s.Pending()
	if pending.Name != "notes.txt" {
		t.Errorf("expected pending file unchanged, got %q", pending.Name)
	}
	if s.Status() != StatusComplete {
		t.Errorf("expected status unchanged, got %s", s.Status())
	}
	if _, ok := s.Artifact(); !ok {
		t.Error("expected artifact to survive a rejected selection")
	}
}

func TestSession_Submit_ExactlyMaxSize(t *testing.T) {
	s := newTestSession(nil)
	if _, err := s.Submit(File{Name: "edge.txt", Size: MaxFileSize}); err != nil {
		t.Errorf("expected a file of exactly 10MB to be accepted, got %v", err)
	}
}

func TestSession_FullRun(t *testing.T) {
	gate := newGatedTranslator()
	s := newTestSession(gate)
	ctx := context.Background()

	if _, err := s.Submit(FileFromBytes("notes.txt", []byte("hello"))); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if s.Status() != StatusIdle {
		t.Fatalf("expected idle after submit, got %s", s.Status())
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(ctx, language.Default())
		done <- err
	}()

	<-gate.started
	if s.Status() != StatusTranslating {
		t.Errorf("expected translating mid-run, got %s", s.Status())
	}
	close(gate.release)

	if err := <-done; err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if s.Status() != StatusComplete {
		t.Errorf("expected complete, got %s", s.Status())
	}
	art, ok := s.Artifact()
	if !ok || !strings.Contains(art.Text, "hello") {
		t.Errorf("expected artifact containing content, got %+v", art)
	}
	pending, _ := s.Pending()
	if pending.Content == nil || *pending.Content != "hello" {
		t.Errorf("expected extracted content on the pending file, got %v", pending.Content)
	}
}

func TestSession_NotesTxtEnglishToHindi(t *testing.T) {
	s := newTestSession(nil)
	ctx := context.Background()

	pending, err := s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if pending.SizeBytes != 5 {
		t.Errorf("expected 5 bytes, got %d", pending.SizeBytes)
	}

	pair, err := language.NewPair("en", "hi")
	if err != nil {
		t.Fatal(err)
	}
	art, err := s.Translate(ctx, pair)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	for _, want := range []string{"hello", "English", "Hindi"} {
		if !strings.Contains(art.Text, want) {
			t.Errorf("artifact missing %q", want)
		}
	}

	saver := &recordingSaver{}
	saved, err := s.Export(ctx, saver)
	if err != nil || !saved {
		t.Fatalf("Export = %v, %v", saved, err)
	}
	if saver.outputs[0].Name != "translated_notes.txt" {
		t.Errorf("unexpected output name %q", saver.outputs[0].Name)
	}
}

func TestSession_NewFileDiscardsArtifact(t *testing.T) {
	s := newTestSession(nil)
	ctx := context.Background()

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	if _, err := s.Translate(ctx, language.Default()); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if _, err := s.Export(ctx, &recordingSaver{}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if _, err := s.Submit(FileFromBytes("other.txt", []byte("bye"))); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle, got %s", s.Status())
	}
	if _, ok := s.Artifact(); ok {
		t.Error("expected artifact to be discarded")
	}

	saver := &recordingSaver{}
	if saved, _ := s.Export(ctx, saver); saved || len(saver.outputs) != 0 {
		t.Error("expected no export after a new selection")
	}
}

func TestSession_ExportWithoutArtifact(t *testing.T) {
	s := newTestSession(nil)
	saver := &recordingSaver{}

	saved, err := s.Export(context.Background(), saver)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if saved || len(saver.outputs) != 0 {
		t.Error("expected nothing to be saved")
	}

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	if saved, err := s.Export(context.Background(), saver); saved || err != nil || len(saver.outputs) != 0 {
		t.Errorf("expected no save while idle, got %v, %v", saved, err)
	}
}

func TestSession_ExportTwice(t *testing.T) {
	s := newTestSession(nil)
	ctx := context.Background()

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	if _, err := s.Translate(ctx, language.Default()); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	saver := &recordingSaver{}
	for i := 0; i < 2; i++ {
		if saved, err := s.Export(ctx, saver); !saved || err != nil {
			t.Fatalf("export %d: %v, %v", i, saved, err)
		}
	}

	if len(saver.outputs) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(saver.outputs))
	}
	first, second := saver.outputs[0], saver.outputs[1]
	if first.Name != second.Name || !bytes.Equal(first.Body, second.Body) {
		t.Error("expected identical exports")
	}
	if s.Status() != StatusComplete {
		t.Errorf("export changed status to %s", s.Status())
	}
}

func TestSession_ExportSaveFailure(t *testing.T) {
	s := newTestSession(nil)
	ctx := context.Background()

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	s.Translate(ctx, language.Default())

	saved, err := s.Export(ctx, &recordingSaver{err: errors.New("disk full")})
	if saved || err == nil {
		t.Errorf("expected save failure, got %v, %v", saved, err)
	}
	if s.Status() != StatusComplete {
		t.Errorf("expected status unchanged, got %s", s.Status())
	}
}

func TestSession_Translate_NoFile(t *testing.T) {
	s := newTestSession(nil)
	if _, err := s.Translate(context.Background(), language.Default()); !errors.Is(err, ErrNoFile) {
		t.Errorf("expected ErrNoFile, got %v", err)
	}
}

func TestSession_Translate_InFlight(t *testing.T) {
	gate := newGatedTranslator()
	s := newTestSession(gate)
	ctx := context.Background()

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(ctx, language.Default())
		done <- err
	}()
	<-gate.started

	if _, err := s.Translate(ctx, language.Default()); !errors.Is(err, ErrRunInFlight) {
		t.Errorf("expected ErrRunInFlight, got %v", err)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Errorf("first run failed: %v", err)
	}
}

func TestSession_Translate_Superseded(t *testing.T) {
	gate := newGatedTranslator()
	s := newTestSession(gate)
	ctx := context.Background()

	s.Submit(FileFromBytes("old.txt", []byte("old")))
	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(ctx, language.Default())
		done <- err
	}()
	<-gate.started

	if _, err := s.Submit(FileFromBytes("new.txt", []byte("new"))); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	close(gate.release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle, got %s", s.Status())
	}
	if _, ok := s.Artifact(); ok {
		t.Error("stale artifact leaked into the session")
	}
	pending, _ := s.Pending()
	if pending.Name != "new.txt" || pending.Content != nil {
		t.Errorf("unexpected pending file %+v", pending)
	}
}

func TestSession_Submit_CancelsRunInFlight(t *testing.T) {
	backend := newCountingTranslator(false)
	s := newTestSession(backend)
	ctx := context.Background()

	s.Submit(FileFromBytes("a.txt", []byte("a")))
	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(ctx, language.Default())
		done <- err
	}()
	<-backend.started

	s.Submit(FileFromBytes("b.txt", []byte("b")))
	select {
	case err := <-done:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("expected ErrSuperseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded run was not canceled")
	}

	close(backend.release)
	art, err := s.Translate(ctx, language.Default())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if art.FileName != "b.txt" {
		t.Errorf("expected b.txt, got %q", art.FileName)
	}
	if got := backend.peak.Load(); got != 1 {
		t.Errorf("expected at most 1 concurrent backend run, got %d", got)
	}
}

func TestSession_Translate_InFlightUntilStaleRunUnwinds(t *testing.T) {
	backend := newCountingTranslator(true)
	s := newTestSession(backend)
	ctx := context.Background()

	s.Submit(FileFromBytes("a.txt", []byte("a")))
	done := make(chan error, 1)
	go func() {
		_, err := s.Translate(ctx, language.Default())
		done <- err
	}()
	<-backend.started

	s.Submit(FileFromBytes("b.txt", []byte("b")))
	if s.Status() != StatusIdle {
		t.Errorf("expected idle after resubmit, got %s", s.Status())
	}
	if _, err := s.Translate(ctx, language.Default()); !errors.Is(err, ErrRunInFlight) {
		t.Errorf("expected ErrRunInFlight while the stale run unwinds, got %v", err)
	}

	close(backend.release)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
	if _, err := s.Translate(ctx, language.Default()); err != nil {
		t.Fatalf("run after unwind failed: %v", err)
	}
	if got := backend.peak.Load(); got != 1 {
		t.Errorf("expected at most 1 concurrent backend run, got %d", got)
	}
}

func TestSession_Translate_ReadFailure(t *testing.T) {
	s := NewSession(Options{
		Extractor:  NewExtractor(failingReader{err: errors.New("permission denied")}),
		Translator: &StubTranslator{},
	})
	s.Submit(File{Name: "locked.txt", Size: 10})

	_, err := s.Translate(context.Background(), language.Default())
	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected *ReadError, got %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle after read failure, got %s", s.Status())
	}
}

func TestSession_Translate_BackendFailure(t *testing.T) {
	s := newTestSession(failingTranslator{})
	s.Submit(FileFromBytes("notes.txt", []byte("hello")))

	_, err := s.Translate(context.Background(), language.Default())
	var te *TranslationError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TranslationError, got %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle after failure, got %s", s.Status())
	}
	if _, ok := s.Artifact(); ok {
		t.Error("expected no artifact")
	}
}

func TestSession_Translate_Canceled(t *testing.T) {
	s := newTestSession(NewStubTranslator(time.Minute))
	s.Submit(FileFromBytes("notes.txt", []byte("hello")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Translate(ctx, language.Default())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle, got %s", s.Status())
	}
}

func TestSession_RerunFromComplete(t *testing.T) {
	s := newTestSession(nil)
	ctx := context.Background()
	s.Submit(FileFromBytes("notes.txt", []byte("hello")))

	first, err := s.Translate(ctx, language.Default())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	pair, _ := language.NewPair("en", "ta")
	second, err := s.Translate(ctx, pair)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if first.Text == second.Text {
		t.Error("expected the new run to replace the artifact")
	}
	if art, _ := s.Artifact(); !strings.Contains(art.Text, "Tamil") {
		t.Error("expected the session to hold the latest artifact")
	}
}

func TestSession_Snapshot(t *testing.T) {
	s := newTestSession(nil)
	if snap := s.Snapshot(); snap.FileName != "" || snap.Status != StatusIdle || snap.HasArtifact {
		t.Errorf("unexpected empty snapshot %+v", snap)
	}

	s.Submit(FileFromBytes("notes.txt", []byte("hello")))
	s.Translate(context.Background(), language.Default())

	snap := s.Snapshot()
	if snap.FileName != "notes.txt" || snap.SizeBytes != 5 || snap.Status != StatusComplete || !snap.HasArtifact {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.OutputName != "translated_notes.txt" {
		t.Errorf("unexpected output name %q", snap.OutputName)
	}
}

func TestStatus_MarshalText(t *testing.T) {
	for status, want := range map[Status]string{
		StatusIdle:        "idle",
		StatusTranslating: "translating",
		StatusComplete:    "complete",
	} {
		got, err := status.MarshalText()
		if err != nil || string(got) != want {
			t.Errorf("MarshalText(%d) = %q, %v", status, got, err)
		}
	}
}
