package seo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// Action describes what happened to a public URL.
type Action string

// Notification actions.
const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// debounceDelay coalesces notification bursts into a single rebuild.
const debounceDelay = 2 * time.Second

// Notifier rebuilds the sitemap file when content enters or leaves the
// published state. Notify is fire-and-forget: a slow or failing rebuild
// is logged and never propagates back into the content transition.
type Notifier struct {
	queries *store.Queries
	siteURL string
	outPath string

	notifyCh chan struct{}
	closeCh  chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewNotifier creates a sitemap notifier writing to outPath and starts
// its worker goroutine.
func NewNotifier(queries *store.Queries, siteURL, outPath string) *Notifier {
	n := &Notifier{
		queries:  queries,
		siteURL:  siteURL,
		outPath:  outPath,
		notifyCh: make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// Notify signals that a public URL changed. Never blocks: if a rebuild
// is already pending the signal is coalesced.
func (n *Notifier) Notify(action Action, kind model.ContentKind, slug string) {
	slog.Debug("sitemap notify", "action", string(action), "kind", string(kind), "slug", slug)
	select {
	case n.notifyCh <- struct{}{}:
	default:
	}
}

// Close stops the worker after flushing any pending rebuild.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.closeCh) })
	n.wg.Wait()
}

func (n *Notifier) run() {
	defer n.wg.Done()

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-n.notifyCh:
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceDelay)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			n.rebuildLogged()
		case <-n.closeCh:
			if timerCh != nil {
				n.rebuildLogged()
			}
			return
		}
	}
}

func (n *Notifier) rebuildLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := n.Rebuild(ctx); err != nil {
		// Sitemap failures never roll back content transitions.
		slog.Error("sitemap rebuild failed", "error", err, "path", n.outPath)
	}
}

// Rebuild regenerates the sitemap file from every published item.
// Also called periodically by the scheduler to reconcile missed signals.
func (n *Notifier) Rebuild(ctx context.Context) error {
	builder := NewSitemapBuilder(n.siteURL)
	builder.AddHomepage()

	for _, kind := range model.ValidKinds {
		items, err := n.queries.ListPublishedContent(ctx, kind)
		if err != nil {
			return err
		}
		builder.AddItems(items)
	}

	data, err := builder.Build()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(n.outPath), 0o755); err != nil {
		return err
	}

	// Write-then-rename keeps the served file whole during rebuilds; the
	// unique temp name tolerates concurrent rebuilds from other instances.
	tmp := fmt.Sprintf("%s.%s.tmp", n.outPath, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, n.outPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	slog.Info("sitemap rebuilt", "urls", builder.Len(), "path", n.outPath)
	return nil
}
