/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package flow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/odmedia/mjpegflow/entry"
	"github.com/odmedia/mjpegflow/logging"
	"github.com/odmedia/mjpegflow/probe"
	"github.com/odmedia/mjpegflow/schema"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownFlow   = errors.New("unknown flow")
	ErrUnknownEntry  = errors.New("unknown entry")
	ErrInvalidInput  = errors.New("invalid input")
	ErrFlowFinished  = errors.New("flow already finished")
	ErrFlowUndefined = errors.New("flow returned no result")
)

type Kind string

const (
	KindSetup   Kind = "setup"
	KindOptions Kind = "options"
)

// Progress describes a flow waiting for input.
type Progress struct {
	FlowID  string    `json:"flow_id"`
	Kind    Kind      `json:"kind"`
	Handler string    `json:"handler,omitempty"`
	StepID  string    `json:"step_id"`
	Started time.Time `json:"started"`
}

type inProgress struct {
	lock     sync.Mutex
	id       string
	kind     Kind
	handler  string
	flow     Flow
	schema   schema.Schema
	// stepID is read by Progress, it is guarded by Manager.lock
	stepID   string
	started  time.Time
	finished bool
}

// EntryHook is called after an entry was created or its options replaced.
type EntryHook func(e entry.Entry)

// Manager owns the flows in progress and persists their outcome to the
// entry store.
type Manager struct {
	lock      sync.Mutex
	flows     map[string]*inProgress
	store     *entry.Store
	executor  probe.Executor
	validator Validator
	hooks     []EntryHook
	logger    zerolog.Logger
}

func NewManager(store *entry.Store, ex probe.Executor, v Validator) *Manager {
	return &Manager{
		flows:     make(map[string]*inProgress),
		store:     store,
		executor:  ex,
		validator: v,
		logger:    logging.Component("flow"),
	}
}

// OnEntry registers a hook, it is not safe to call once flows run.
func (m *Manager) OnEntry(h EntryHook) {
	m.hooks = append(m.hooks, h)
}

func (m *Manager) Entries() []entry.Entry {
	return m.store.Entries()
}

func (m *Manager) Run(ctx context.Context, fn func(context.Context) error) error {
	return m.executor.Run(ctx, fn)
}

// StartSetup begins adding a camera and returns the first form.
func (m *Manager) StartSetup(ctx context.Context) (*Result, error) {
	return m.start(ctx, KindSetup, "", NewSetupFlow(m, m.validator))
}

// StartOptions begins editing the entry with the given id.
func (m *Manager) StartOptions(ctx context.Context, entryID string) (*Result, error) {
	if _, err := m.store.Get(entryID); err != nil {
		return nil, fmt.Errorf("%s: %w", entryID, ErrUnknownEntry)
	}
	return m.start(ctx, KindOptions, entryID, NewOptionsFlow(m, m.validator, entryID))
}

func (m *Manager) start(ctx context.Context, kind Kind, handler string, f Flow) (*Result, error) {
	p := &inProgress{
		id:      uuid.NewString(),
		kind:    kind,
		handler: handler,
		flow:    f,
		started: time.Now().UTC(),
	}
	m.lock.Lock()
	m.flows[p.id] = p
	m.lock.Unlock()
	m.logger.Info().Str("flow_id", p.id).Str("kind", string(kind)).Str("handler", handler).Msg("flow started")
	p.lock.Lock()
	defer p.lock.Unlock()
	return m.step(ctx, p, nil)
}

// Configure submits input to a flow waiting for it.
func (m *Manager) Configure(ctx context.Context, flowID string, input map[string]any) (*Result, error) {
	m.lock.Lock()
	p, ok := m.flows[flowID]
	m.lock.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", flowID, ErrUnknownFlow)
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.finished {
		return nil, fmt.Errorf("%s: %w", flowID, ErrFlowFinished)
	}
	if input != nil && p.schema != nil {
		coerced, err := p.schema.Coerce(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		input = coerced
	}
	return m.step(ctx, p, input)
}

// Abort drops a flow in progress.
func (m *Manager) Abort(flowID string) error {
	m.lock.Lock()
	p, ok := m.flows[flowID]
	delete(m.flows, flowID)
	m.lock.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", flowID, ErrUnknownFlow)
	}
	p.lock.Lock()
	p.finished = true
	p.lock.Unlock()
	m.logger.Info().Str("flow_id", flowID).Msg("flow aborted by user")
	return nil
}

// Progress lists the flows waiting for input.
func (m *Manager) Progress() []Progress {
	m.lock.Lock()
	defer m.lock.Unlock()
	out := make([]Progress, 0, len(m.flows))
	for _, p := range m.flows {
		out = append(out, Progress{
			FlowID:  p.id,
			Kind:    p.kind,
			Handler: p.handler,
			StepID:  p.stepID,
			Started: p.started,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

func (m *Manager) finish(p *inProgress) {
	p.finished = true
	m.lock.Lock()
	delete(m.flows, p.id)
	m.lock.Unlock()
}

// step runs one flow step with p locked and acts on the result.
func (m *Manager) step(ctx context.Context, p *inProgress, input map[string]any) (*Result, error) {
	res, err := p.flow.Step(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if res == nil {
		m.finish(p)
		return nil, ErrFlowUndefined
	}
	res.FlowID = p.id
	res.Handler = p.handler
	logger := m.logger.With().Str("flow_id", p.id).Str("kind", string(p.kind)).Logger()

	switch res.Type {
	case ResultForm:
		p.schema = res.Schema
		m.lock.Lock()
		p.stepID = res.StepID
		m.lock.Unlock()
		if len(res.Errors) > 0 {
			logger.Info().Interface("errors", res.Errors).Msg("showing form with errors")
		}
		return res, nil
	case ResultAbort:
		logger.Info().Str("reason", res.Reason).Msg("flow aborted")
		m.finish(p)
		return res, nil
	case ResultCreateEntry:
		m.finish(p)
		return m.persist(logger, p, res)
	default:
		m.finish(p)
		return nil, fmt.Errorf("unhandled result type %s", res.Type)
	}
}

func (m *Manager) persist(logger zerolog.Logger, p *inProgress, res *Result) (*Result, error) {
	var (
		e   entry.Entry
		err error
	)
	switch p.kind {
	case KindSetup:
		e, err = m.store.Add(res.Title, *res.Options)
		if errors.Is(err, entry.ErrDuplicate) {
			// another flow won the race after our duplicate check
			logger.Info().Str("address", res.Options.Address).Msg("address configured meanwhile, aborting")
			return &Result{Type: ResultAbort, FlowID: p.id, Reason: ReasonAlreadyConfigured}, nil
		}
	case KindOptions:
		e, err = m.store.UpdateOptions(p.handler, *res.Options)
		if errors.Is(err, entry.ErrNotFound) {
			return &Result{Type: ResultAbort, FlowID: p.id, Handler: p.handler, Reason: ReasonUnknownEntry}, nil
		}
		if errors.Is(err, entry.ErrDuplicate) {
			logger.Info().Str("address", res.Options.Address).Msg("address taken by another entry meanwhile, aborting")
			return &Result{Type: ResultAbort, FlowID: p.id, Handler: p.handler, Reason: ReasonAlreadyConfigured}, nil
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("persisting entry failed")
		return nil, err
	}
	if p.kind == KindOptions {
		res.Title = e.Title
	}
	res.Entry = &e
	logger.Info().Str("entry_id", e.ID).Str("title", e.Title).Msg("entry saved")
	for _, h := range m.hooks {
		h(e)
	}
	return res, nil
}
