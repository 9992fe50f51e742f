// Package service evaluates stored clause-set documents over HTTP
// and WebSockets.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/interpreters"
)

// Config configures a Service.
type Config struct {
	// Addr is the HTTP listen address (like ":8080").
	Addr string `json:"addr"`

	// DB is a BoltDB filename.  If empty, documents are only kept
	// in memory.
	DB string `json:"db,omitempty"`

	// Timeout bounds each evaluation.  Zero means no bound.
	Timeout time.Duration `json:"timeout,omitempty"`

	// Debug turns on some logging.
	Debug bool `json:"debug,omitempty"`
}

// DefaultConfig is a Config with reasonable values.
var DefaultConfig = Config{
	Addr:    ":8080",
	Timeout: 5 * time.Second,
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// BadName is returned when a document name isn't acceptable.
type BadName struct {
	Name string
}

func (e *BadName) Error() string {
	return fmt.Sprintf("bad spec name %q", e.Name)
}

// Service keeps compiled Specs for documents in a Store.
type Service struct {
	Config       Config
	Interpreters core.InterpretersMap

	store Store

	sync.RWMutex
	specs map[string]*core.UpdatableSpec
}

// NewService makes a Service.  If interpreters is nil,
// interpreters.Standard() is used.
func NewService(cfg Config, store Store, is core.InterpretersMap) *Service {
	if is == nil {
		is = interpreters.Standard()
	}
	if store == nil {
		store = NewMemStore()
	}
	return &Service{
		Config:       cfg,
		Interpreters: is,
		store:        store,
		specs:        make(map[string]*core.UpdatableSpec, 32),
	}
}

func (s *Service) logf(format string, args ...interface{}) {
	if s.Config.Debug {
		log.Printf("Service."+format, args...)
	}
}

// compile parses and compiles the document.  The Spec's Name is the
// given name.
func (s *Service) compile(ctx context.Context, name string, src []byte) (*core.Spec, error) {
	spec, err := core.ParseSpec(src)
	if err != nil {
		return nil, err
	}
	spec.Name = name
	spec.Id = ""
	if spec.Id, err = spec.ComputeId(); err != nil {
		return nil, err
	}
	if err = spec.Compile(ctx, s.Interpreters, true); err != nil {
		return nil, err
	}
	return spec, nil
}

func (s *Service) remember(name string, spec *core.Spec) error {
	s.Lock()
	defer s.Unlock()
	if u, have := s.specs[name]; have {
		return u.SetSpec(spec)
	}
	s.specs[name] = core.NewUpdatableSpec(spec)
	return nil
}

// PutSpec compiles the document and, if that works, stores it under
// the given name.
func (s *Service) PutSpec(ctx context.Context, name string, src []byte) (*core.Spec, error) {
	if !validName.MatchString(name) {
		return nil, &BadName{name}
	}
	spec, err := s.compile(ctx, name, src)
	if err != nil {
		return nil, err
	}
	if err = s.store.Put(ctx, name, src); err != nil {
		return nil, err
	}
	if err = s.remember(name, spec); err != nil {
		return nil, err
	}
	s.logf("PutSpec %s %s", name, spec.Id)
	return spec, nil
}

// Spec returns the compiled Spec for the named document, compiling
// it if necessary.
func (s *Service) Spec(ctx context.Context, name string) (*core.Spec, error) {
	s.RLock()
	u, have := s.specs[name]
	s.RUnlock()
	if have {
		return u.Spec(), nil
	}

	src, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	spec, err := s.compile(ctx, name, src)
	if err != nil {
		return nil, err
	}
	if err = s.remember(name, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// Source returns the document as stored.
func (s *Service) Source(ctx context.Context, name string) ([]byte, error) {
	return s.store.Get(ctx, name)
}

// DeleteSpec removes the document.
func (s *Service) DeleteSpec(ctx context.Context, name string) error {
	s.Lock()
	delete(s.specs, name)
	s.Unlock()
	return s.store.Delete(ctx, name)
}

// List returns the names of the stored documents.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Load compiles every stored document.
//
// A document that doesn't compile is logged and skipped.
func (s *Service) Load(ctx context.Context) error {
	names, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := s.Spec(ctx, name); err != nil {
			log.Printf("Service.Load %s error %s", name, err)
		}
	}
	s.logf("Load %d documents", len(names))
	return nil
}

// Evaluate evaluates the subject with the named document.
//
// If trace is true, the result includes Traces.
func (s *Service) Evaluate(ctx context.Context, name string, subject interface{}, trace bool) (*core.Result, *core.Traces, error) {
	spec, err := s.Spec(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	if 0 < s.Config.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config.Timeout)
		defer cancel()
	}

	if trace {
		return spec.Trace(ctx, subject)
	}
	r, err := spec.Evaluate(ctx, subject)
	return r, nil, err
}

// EvalResponse is what the HTTP and WebSocket APIs return for an
// evaluation.
type EvalResponse struct {
	// Id echoes the request's Id (WebSockets only).
	Id interface{} `json:"id,omitempty"`

	Spec  string `json:"spec,omitempty"`
	Match bool   `json:"match"`

	*core.Result

	Traces *core.Traces `json:"traces,omitempty"`

	Error string `json:"error,omitempty"`
}

// Response makes an EvalResponse from what Evaluate returns.
//
// NoMatch isn't an error here.
func Response(name string, r *core.Result, ts *core.Traces, err error) *EvalResponse {
	resp := &EvalResponse{
		Spec:   name,
		Traces: ts,
	}
	switch {
	case err == nil:
		resp.Match = true
		resp.Result = r
	case errors.Is(err, core.NoMatch):
	default:
		resp.Error = err.Error()
	}
	return resp
}
