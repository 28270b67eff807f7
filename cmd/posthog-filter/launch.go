package main

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/grez-lucas/posthog-filter/internal/config"
	"github.com/grez-lucas/posthog-filter/internal/replay"
)

// session is a connected browser and the page the commands work on.
type session struct {
	browser *rod.Browser
	page    *rod.Page
	cleanup []func()
}

func (s *session) Close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

// openSession launches Chromium (or attaches to cfg.Browser.ControlURL) and
// opens a blank page, routed through a HAR replayer when
// cfg.Automation.Replay is set.
func openSession(ctx context.Context, full *config.Config, log *zap.Logger) (*session, error) {
	s := &session{}
	cfg := full.Browser

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Headless(cfg.Headless).
			Set("disable-blink-features", "AutomationControlled").
			Set("no-first-run").
			Set("no-default-browser-check").
			Set("window-size", cfg.WindowSize)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		if cfg.UserDataDir != "" {
			l = l.UserDataDir(cfg.UserDataDir)
		}

		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		s.cleanup = append(s.cleanup, l.Kill)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	s.browser = b
	if cfg.ControlURL == "" {
		s.cleanup = append(s.cleanup, func() { _ = b.Close() })
	}

	page, err := newPage(b, cfg.Stealth)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.page = page
	s.cleanup = append(s.cleanup, func() { _ = page.Close() })

	if replayPath := full.Automation.Replay; replayPath != "" {
		har, err := replay.Load(replayPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		r := replay.New(har,
			replay.WithLogger(log.Named("replay")),
			replay.WithPassthrough(full.Automation.ReplayPassthrough),
		)
		stop, err := r.Attach(page)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("attach replayer: %w", err)
		}
		s.cleanup = append(s.cleanup, func() { _ = stop() })
		log.Info("Serving requests from recording",
			zap.String("har", replayPath),
			zap.Int("entries", r.Len()),
			zap.Bool("passthrough", full.Automation.ReplayPassthrough),
		)
	}

	return s, nil
}

func newPage(b *rod.Browser, useStealth bool) (*rod.Page, error) {
	if useStealth {
		page, err := stealth.Page(b)
		if err != nil {
			return nil, fmt.Errorf("create stealth page: %w", err)
		}
		return page, nil
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return page, nil
}
