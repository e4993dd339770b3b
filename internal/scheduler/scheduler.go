// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: sitemap reconciliation and
// audit event retention.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iklimsesi/iklimsesi-go/internal/seo"
	"github.com/iklimsesi/iklimsesi-go/internal/service"
)

// Scheduler handles periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	sitemap *seo.Notifier
	events  *service.EventService
	logger  *slog.Logger

	sitemapSpec    string
	eventRetention time.Duration
}

// New creates a new scheduler instance. sitemapSpec is a standard 5-field
// cron expression for the sitemap reconciliation job.
func New(sitemap *seo.Notifier, events *service.EventService, logger *slog.Logger, sitemapSpec string, eventRetention time.Duration) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		sitemap:        sitemap,
		events:         events,
		logger:         logger,
		sitemapSpec:    sitemapSpec,
		eventRetention: eventRetention,
	}
}

// Start registers the jobs and begins the scheduler.
func (s *Scheduler) Start() error {
	// Reconciliation catches sitemap updates lost to crashes between a
	// transition commit and the debounced rebuild.
	_, err := s.cron.AddFunc(s.sitemapSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.sitemap.Rebuild(ctx); err != nil {
			s.logger.Error("scheduled sitemap rebuild failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	if s.eventRetention > 0 {
		_, err = s.cron.AddFunc("30 3 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := s.events.DeleteOldEvents(ctx, s.eventRetention); err != nil {
				s.logger.Error("audit event cleanup failed", "error", err)
			} else {
				s.logger.Info("audit event cleanup completed", "retention", s.eventRetention)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
