// Package podwatch diffs successive pod list snapshots and publishes a
// notification for each observed change. Pods are keyed by name; a name
// appearing for the first time is a creation, a changed status on an
// existing name is a status change, and a name that disappears is a
// deletion.
package podwatch

import (
	"fmt"
	"strings"

	"github.com/galgranov/gke-analyzer/internal/client/notify"
	"github.com/galgranov/gke-analyzer/internal/domain/models"
)

// Watcher tracks the last observed snapshot. Not safe for concurrent
// use; callers feed it from a single polling loop.
type Watcher struct {
	bus    *notify.Bus
	seen   map[string]string // pod name -> last status
	seeded bool
}

// NewWatcher returns a Watcher publishing onto bus.
func NewWatcher(bus *notify.Bus) *Watcher {
	return &Watcher{bus: bus, seen: make(map[string]string)}
}

// Observe records a snapshot and publishes notifications for changes
// since the previous one. The first snapshot only seeds the baseline;
// no notifications are published for it.
func (w *Watcher) Observe(pods []models.Pod) {
	current := make(map[string]string, len(pods))
	for _, p := range pods {
		current[p.Name] = p.Status
	}

	if !w.seeded {
		w.seen = current
		w.seeded = true
		return
	}

	for name, status := range current {
		prev, ok := w.seen[name]
		switch {
		case !ok:
			w.bus.Publish(fmt.Sprintf("New pod created: %s", name), notify.Info)
		case prev != status:
			w.bus.Publish(
				fmt.Sprintf("Pod %s changed status from %s to %s", name, prev, status),
				StatusSeverity(status),
			)
		}
	}
	for name := range w.seen {
		if _, ok := current[name]; !ok {
			w.bus.Publish(fmt.Sprintf("Pod deleted: %s", name), notify.Info)
		}
	}

	w.seen = current
}

// StatusSeverity maps a pod status string to a notification severity.
func StatusSeverity(status string) notify.Severity {
	switch strings.ToLower(status) {
	case "running", "succeeded":
		return notify.Success
	case "pending", "unknown":
		return notify.Warning
	case "failed":
		return notify.Error
	default:
		return notify.Info
	}
}
