// Package session owns the state of one widget instance: the form registry, the last
// scan's record and mappings, the apply snapshot and any running voice capture.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/extract"
	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/learning"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/pipeline"
	"github.com/jonathan/appycrew-ocr/internal/speech"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

var (
	// ErrStaleScan is returned when a newer scan started while this one was in flight.
	ErrStaleScan = errors.New("scan superseded by a newer scan")
	// ErrNoMapping is returned for a mapping index that does not exist.
	ErrNoMapping = errors.New("no such mapping")
)

// Translator turns a transcript into English before parsing.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Ticket identifies one scan. Only the newest ticket may complete.
type Ticket struct {
	ID uint64
}

// Result is what a completed scan produced.
type Result struct {
	ScanID   uint64                 `json:"scanId"`
	Input    types.RecognizedInput  `json:"input"`
	Record   *types.ExtractedRecord `json:"record"`
	Mappings []mapping.Mapping      `json:"mappings"`
	Form     *form.Form             `json:"form,omitempty"`
}

// Option configures a Session.
type Option func(*Session)

// WithExtractor replaces the default extractor (custom keyword tables, for instance).
func WithExtractor(e *extract.Extractor) Option {
	return func(s *Session) { s.extractor = e }
}

// WithSynonyms overrides the label synonyms of a key.
func WithSynonyms(key types.Key, synonyms []string) Option {
	return func(s *Session) { s.engineOpts = append(s.engineOpts, mapping.WithSynonyms(key, synonyms)) }
}

// WithLearning records applied mappings in store and scores them back for site.
func WithLearning(store learning.Store, site string) Option {
	return func(s *Session) {
		s.store = store
		s.site = site
	}
}

// WithTranslator translates voice transcripts before they are parsed.
func WithTranslator(t Translator) Option {
	return func(s *Session) { s.translator = t }
}

// Session is one widget instance. It is safe for concurrent use; scans may overlap and
// the newest one wins.
type Session struct {
	ID uuid.UUID

	registry   *form.Registry
	extractor  *extract.Extractor
	mutator    *apply.Mutator
	engineOpts []mapping.Option
	store      learning.Store
	site       string
	translator Translator

	mu           sync.Mutex
	scanID       uint64
	listenCancel context.CancelFunc
	input        types.RecognizedInput
	record       *types.ExtractedRecord
	mappings     []mapping.Mapping
}

// New creates a session writing through w.
func New(w apply.ElementWriter, opts ...Option) *Session {
	s := &Session{
		ID:       uuid.New(),
		registry: form.NewRegistry(),
		mutator:  apply.New(w),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.Default()
	}
	return s
}

// Registry returns the session's form registry.
func (s *Session) Registry() *form.Registry { return s.registry }

// Extractor returns the session's extractor.
func (s *Session) Extractor() *extract.Extractor { return s.extractor }

// RescanForms refreshes the registry from doc. A record from an earlier scan is mapped
// again onto the new fields, resetting every checked flag.
func (s *Session) RescanForms(ctx context.Context, doc *goquery.Document, layout form.Layout) {
	s.registry.Refresh(doc, layout)
	s.remap(ctx)
}

// SelectForm pins the form at index and maps the current record onto it.
func (s *Session) SelectForm(ctx context.Context, index int) error {
	if err := s.registry.Select(index); err != nil {
		return err
	}
	s.remap(ctx)
	return nil
}

// SelectFormMatching pins the first form matching a CSS selector.
func (s *Session) SelectFormMatching(ctx context.Context, selector string) error {
	if err := s.registry.SelectMatching(selector); err != nil {
		return err
	}
	s.remap(ctx)
	return nil
}

func (s *Session) remap(ctx context.Context) {
	s.mu.Lock()
	rec := s.record
	id := s.scanID
	s.mu.Unlock()
	if rec == nil {
		return
	}

	mappings, _, _ := s.mapRecord(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanID == id {
		s.mappings = mappings
	}
}

// Begin starts a scan and cancels any voice capture still running.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(nil)
}

func (s *Session) beginLocked(cancel context.CancelFunc) Ticket {
	if s.listenCancel != nil {
		s.listenCancel()
	}
	s.listenCancel = cancel
	s.scanID++
	return Ticket{ID: s.scanID}
}

// Complete extracts a record from in, maps it onto the active form and makes both the
// session's current state. Without an active form the record is still kept and
// form.ErrNoForm is returned; a later RescanForms maps it.
func (s *Session) Complete(ctx context.Context, t Ticket, in types.RecognizedInput) (*Result, error) {
	rec := s.extractor.Extract(in)
	mappings, active, mapErr := s.mapRecord(ctx, rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID != s.scanID {
		return nil, ErrStaleScan
	}
	s.input = in
	s.record = rec
	s.mappings = mappings
	if mapErr != nil {
		return nil, mapErr
	}

	return &Result{
		ScanID:   t.ID,
		Input:    in,
		Record:   rec,
		Mappings: cloneMappings(mappings),
		Form:     active,
	}, nil
}

func (s *Session) mapRecord(ctx context.Context, rec *types.ExtractedRecord) ([]mapping.Mapping, *form.Form, error) {
	active, fields, err := s.registry.Active()
	if err != nil {
		return nil, nil, err
	}

	opts := append([]mapping.Option(nil), s.engineOpts...)
	if s.store != nil {
		hints, err := learning.LoadHints(ctx, s.store, s.site)
		if err != nil {
			log.Printf("[session] learned hints unavailable: %v", err)
		} else {
			opts = append(opts, mapping.WithHints(hints))
		}
	}
	return mapping.NewEngine(opts...).Map(rec, fields), &active, nil
}

// Scan runs a scan on input that has already been captured.
func (s *Session) Scan(ctx context.Context, in types.RecognizedInput) (*Result, error) {
	return s.Complete(ctx, s.Begin(), in)
}

// ScanPhoto captures a photo through c and completes the scan with its text and vision
// answer.
func (s *Session) ScanPhoto(ctx context.Context, c *pipeline.Capture, dataURL, formType string) (*Result, error) {
	t := s.Begin()
	captured, err := c.DataURL(ctx, dataURL, formType)
	if err != nil {
		return nil, err
	}
	return s.Complete(ctx, t, captured.Input)
}

// Listen runs a voice capture. Starting another scan or calling StopListening cancels
// it; the transcript is translated when a translator is configured.
func (s *Session) Listen(ctx context.Context, r speech.Recognizer) (*Result, error) {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	t := s.beginLocked(cancel)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.scanID == t.ID {
			s.listenCancel = nil
		}
		s.mu.Unlock()
	}()

	text, err := r.Recognize(lctx)
	if err != nil {
		if lctx.Err() != nil && ctx.Err() == nil {
			return nil, ErrStaleScan
		}
		return nil, fmt.Errorf("voice capture failed: %w", err)
	}
	if s.translator != nil {
		if translated, err := s.translator.Translate(lctx, text); err == nil {
			text = translated
		} else {
			log.Printf("[session] translation skipped: %v", err)
		}
	}
	return s.Complete(ctx, t, types.RecognizedInput{Transcript: text})
}

// StopListening cancels a running voice capture.
func (s *Session) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenCancel != nil {
		s.listenCancel()
		s.listenCancel = nil
	}
}

// Record returns the current record, or nil before the first scan.
func (s *Session) Record() *types.ExtractedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// Mappings returns a copy of the current mappings.
func (s *Session) Mappings() []mapping.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMappings(s.mappings)
}

// SetChecked toggles one mapping for the next Apply.
func (s *Session) SetChecked(index int, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.mappings) {
		return fmt.Errorf("mapping %d: %w", index, ErrNoMapping)
	}
	s.mappings[index].Checked = checked
	return nil
}

// CheckOnly checks the listed mappings and unchecks every other one.
func (s *Session) CheckOnly(indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.mappings) {
			return fmt.Errorf("mapping %d: %w", i, ErrNoMapping)
		}
		keep[i] = true
	}
	for i := range s.mappings {
		s.mappings[i].Checked = keep[i]
	}
	return nil
}

// Apply writes the checked mappings and records them as learning observations.
func (s *Session) Apply(ctx context.Context) apply.Result {
	mappings := s.Mappings()
	res := s.mutator.Apply(ctx, mappings)

	if s.store != nil {
		for _, m := range res.Applied {
			obs := learning.NewObservation(s.site, m.Field.Label, m.Key, m.Value)
			if err := s.store.Record(ctx, obs); err != nil {
				log.Printf("[session] failed to record observation: %v", err)
			}
		}
	}
	return res
}

// CanUndo reports whether the last apply can be undone.
func (s *Session) CanUndo() bool {
	return s.mutator.HasSnapshot()
}

// Undo restores the controls touched by the last apply and returns how many were
// restored. With no snapshot it does nothing and returns 0.
func (s *Session) Undo(ctx context.Context) int {
	return s.mutator.Undo(ctx)
}

func cloneMappings(ms []mapping.Mapping) []mapping.Mapping {
	if ms == nil {
		return nil
	}
	return append([]mapping.Mapping(nil), ms...)
}
