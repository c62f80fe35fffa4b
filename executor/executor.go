/*
 * SPDX-FileCopyrightText: Mjpegflow Copyright © 2021 ODMedia B.V. All right reserved.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

// Package executor runs blocking work on a fixed set of worker goroutines so
// flow steps can suspend on it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/odmedia/mjpegflow/logging"
	"github.com/rs/zerolog"
)

var ErrStopped = errors.New("executor stopped")

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

type Executor struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
	jobs   chan *job
	wg     sync.WaitGroup
}

func New(ctx context.Context, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	e := &Executor{
		logger: logging.Component("executor"),
		jobs:   make(chan *job, workers*4),
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.logger.Info().Int("workers", workers).Msg("executor started")
	return e
}

func (e *Executor) worker(i int) {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			e.logger.Debug().Int("worker", i).Msg("worker stopped")
			return
		case j := <-e.jobs:
			j.result <- e.execute(j)
		}
	}
}

func (e *Executor) execute(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("job panicked")
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.fn(j.ctx)
}

// Run queues fn and waits for it to finish. It returns early when ctx is
// done; the job still runs to completion in the background.
func (e *Executor) Run(ctx context.Context, fn func(context.Context) error) error {
	j := &job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case <-e.ctx.Done():
		return ErrStopped
	default:
	}
	select {
	case <-e.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case e.jobs <- j:
	}
	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.ctx.Done():
		return ErrStopped
	}
}

func (e *Executor) Stop() {
	e.cancel()
}

// Wait blocks until the workers have exited or the timeout passes.
func (e *Executor) Wait(timeout time.Duration) {
	c := make(chan bool)
	go func() {
		e.wg.Wait()
		c <- true
	}()
	select {
	case <-c:
		e.logger.Info().Msg("executor terminated")
	case <-time.After(timeout):
		e.logger.Error().Msg("executor cleanup timeout")
	}
}
