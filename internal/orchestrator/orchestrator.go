// Package orchestrator fans one translation request out to every configured
// service and gathers what comes back.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valpere/anuvad/internal/translator"
)

// ErrAllFailed is wrapped by Result.Err when no service produced a translation.
var ErrAllFailed = errors.New("all translation services failed")

type OrchestratorConfig struct {
	// Timeout bounds each service call; zero means no per-service limit.
	Timeout time.Duration
}

type OrchestratorResult struct {
	// Results holds successful results in service order.
	Results   []translator.ServiceResult
	Errors    []error
	Succeeded int
	Failed    int
}

type Orchestrator struct {
	services []translator.TranslationService
	config   OrchestratorConfig
}

func New(services []translator.TranslationService, config OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		services: services,
		config:   config,
	}
}

func (o *Orchestrator) Services() []translator.TranslationService {
	return o.services
}

// Execute calls every service concurrently and waits for all of them.
// Individual failures are collected, never returned early.
func (o *Orchestrator) Execute(ctx context.Context, cfg translator.ServiceConfig, req translator.TranslateRequest) *OrchestratorResult {
	type outcome struct {
		res *translator.ServiceResult
		err error
	}
	outcomes := make([]outcome, len(o.services))

	var g errgroup.Group
	for i, svc := range o.services {
		i, svc := i, svc
		g.Go(func() error {
			serviceCtx := ctx
			if o.config.Timeout > 0 {
				var cancel context.CancelFunc
				serviceCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
				defer cancel()
			}
			res, err := svc.Translate(serviceCtx, cfg, req)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := &OrchestratorResult{}
	for i, oc := range outcomes {
		switch {
		case oc.err != nil:
			result.Errors = append(result.Errors, oc.err)
			result.Failed++
		case oc.res == nil:
			result.Errors = append(result.Errors, fmt.Errorf("%s: no result", o.services[i].Name()))
			result.Failed++
		case oc.res.Error != "":
			result.Errors = append(result.Errors, fmt.Errorf("%s: %s", oc.res.ServiceName, oc.res.Error))
			result.Failed++
		default:
			result.Results = append(result.Results, *oc.res)
			result.Succeeded++
		}
	}

	return result
}

// Best returns the highest-confidence result; ties go to the earlier service.
func (r *OrchestratorResult) Best() (translator.ServiceResult, bool) {
	if len(r.Results) == 0 {
		return translator.ServiceResult{}, false
	}
	best := r.Results[0]
	for _, res := range r.Results[1:] {
		if res.Confidence > best.Confidence {
			best = res
		}
	}
	return best, true
}

// Err is nil when at least one service succeeded.
func (r *OrchestratorResult) Err() error {
	if r.Succeeded > 0 {
		return nil
	}
	if len(r.Errors) == 0 {
		return fmt.Errorf("%w: no services configured", ErrAllFailed)
	}
	return fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(r.Errors...))
}
