// Package queue implements the install queue: Push installs a batch of
// ModInstalls in order, deduplicating in-flight work and reporting
// progress through a channel of Events. A batch runs on the goroutine
// that pushed it; concurrent Push calls are not serialized against each
// other.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/galeproject/gale/internal/cache"
	"github.com/galeproject/gale/internal/ident"
	"github.com/galeproject/gale/internal/installer"
	"github.com/galeproject/gale/internal/registry"
)

// Task names emitted in SetTask events.
type Task string

const (
	TaskDownload Task = "download"
	TaskExtract  Task = "extract"
	TaskInstall  Task = "install"
)

// EventKind tags the shape of an Event.
type EventKind string

const (
	EventShow        EventKind = "show"
	EventHide        EventKind = "hide"
	EventAddCount    EventKind = "addCount"
	EventAddProgress EventKind = "addProgress"
	EventSetTask     EventKind = "setTask"
	EventError       EventKind = "error"
)

// Event is a single progress notification. In addCount and addProgress
// events Mods/Bytes are increments; the frontend sums them into
// per-session totals and derives percentages from those.
type Event struct {
	Kind  EventKind
	Mods  int
	Bytes int64
	Task  Task
	Err   error
}

// ModInstall describes one package version to install into a profile.
type ModInstall struct {
	Ident ident.VersionIdent
	// PackageUUID is the registry's package uuid, which becomes the
	// installed ProfileMod's uuid so the same package keeps the same
	// identity across installs and version changes.
	PackageUUID string
	FileSize    int64
	Enabled     bool
	Overwrite   bool
	Index       int // -1 means append
	InstallTime time.Time
}

// Downloader fetches a package archive's bytes. Implemented by
// internal/thunderstore.Client.
type Downloader interface {
	Download(ctx context.Context, v ident.VersionIdent, onProgress func(n int64)) ([]byte, error)
}

// ProfileTarget is the subset of profile mutation the queue needs,
// implemented by *profile.Profile plus a save callback — kept abstract so
// this package doesn't import internal/profile (which doesn't need to
// know about the queue).
type ProfileTarget interface {
	Path() string
	AppendMod(inst ModInstall, fullName string) (uuid string)
	RemoveByUUID(uuid string)
	// ForceRemove uninstalls a mod's files and drops it from the list,
	// used when a cancelled batch rolls back its prior installs.
	ForceRemove(uuid string) error
	Save() error
}

// Queue is the install queue for one process. It deduplicates in-flight
// installs per profile; it does not serialize concurrent Push calls.
type Queue struct {
	mu      sync.Mutex
	pending map[string]bool // profile path + "/" + full_name -> in-flight

	cache        *cache.Cache
	dl           Downloader
	idx          *registry.Index
	events       chan Event
	installerFor func(profile ProfileTarget) (installer.Installer, error)
}

// New builds a Queue. installerFor resolves the correct mod-loader
// installer for a given profile target (games can differ per profile).
func New(c *cache.Cache, dl Downloader, idx *registry.Index, installerFor func(ProfileTarget) (installer.Installer, error)) *Queue {
	return &Queue{
		pending:      make(map[string]bool),
		cache:        c,
		dl:           dl,
		idx:          idx,
		events:       make(chan Event, 64),
		installerFor: installerFor,
	}
}

// Events returns the channel progress events are published on.
func (q *Queue) Events() <-chan Event { return q.events }

func (q *Queue) emit(e Event) {
	select {
	case q.events <- e:
	default:
		// a slow consumer shouldn't block installs; drop oldest-style by
		// just not blocking. Frontends are expected to drain promptly.
	}
}

func pendingKey(profileDir, fullName string) string { return profileDir + "\x00" + fullName }

// Push enqueues a batch of installs against a profile, deduplicating any
// ModInstall already in-flight or pending for that profile. If everything
// was a duplicate, it resolves immediately as success.
func (q *Queue) Push(ctx context.Context, target ProfileTarget, mods []ModInstall, options PushOptions) error {
	q.mu.Lock()
	var batch []ModInstall
	for _, m := range mods {
		key := pendingKey(target.Path(), m.Ident.Owner()+"-"+m.Ident.Name())
		if q.pending[key] {
			continue
		}
		q.pending[key] = true
		batch = append(batch, m)
	}
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var totalBytes int64
	for _, m := range batch {
		totalBytes += m.FileSize
	}
	q.emit(Event{Kind: EventAddCount, Mods: len(batch), Bytes: totalBytes})

	defer func() {
		q.mu.Lock()
		for _, m := range batch {
			delete(q.pending, pendingKey(target.Path(), m.Ident.Owner()+"-"+m.Ident.Name()))
		}
		q.mu.Unlock()
	}()

	return q.runBatch(ctx, target, batch, options)
}

// PushOptions tunes how a pushed batch runs.
type PushOptions struct {
	BeforeInstall func(ModInstall) error
	SendProgress  bool
	PreventCancel bool
	Cancel        <-chan struct{}
}

// PushWithDeps expands each install into itself plus its missing
// dependencies (already resolved against the registry by the caller),
// deduplicates, and reverses order so dependencies install before
// dependents.
func PushWithDeps(installs, deps []ModInstall) []ModInstall {
	all := append([]ModInstall{}, installs...)
	all = append(all, deps...)

	seen := make(map[string]bool)
	var deduped []ModInstall
	for _, m := range all {
		key := m.Ident.FullName()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, m)
	}

	for i, j := 0, len(deduped)-1; i < j; i, j = i+1, j-1 {
		deduped[i], deduped[j] = deduped[j], deduped[i]
	}
	return deduped
}

func (q *Queue) runBatch(ctx context.Context, target ProfileTarget, batch []ModInstall, options PushOptions) error {
	q.emit(Event{Kind: EventShow})
	defer q.emit(Event{Kind: EventHide})

	var installedUUIDs []string
	var batchErr error

	for _, m := range batch {
		select {
		case <-options.Cancel:
			if !options.PreventCancel {
				q.rollback(target, installedUUIDs)
				return fmt.Errorf("queue: install cancelled")
			}
		default:
		}

		if batchErr != nil {
			continue // remaining installs complete as failed per spec's batch semantics
		}

		uuid, err := q.installOne(ctx, target, m, options)
		if err != nil {
			batchErr = err
			continue
		}
		installedUUIDs = append(installedUUIDs, uuid)
	}

	if batchErr != nil {
		q.emit(Event{Kind: EventError, Err: batchErr})
		return batchErr
	}
	return nil
}

func (q *Queue) rollback(target ProfileTarget, uuids []string) {
	for i := len(uuids) - 1; i >= 0; i-- {
		if err := target.ForceRemove(uuids[i]); err != nil {
			// fall back to dropping the list entry so the profile at
			// least stays consistent with what's saved
			target.RemoveByUUID(uuids[i])
		}
	}
	if len(uuids) > 0 {
		_ = target.Save()
	}
}

func (q *Queue) installOne(ctx context.Context, target ProfileTarget, m ModInstall, options PushOptions) (string, error) {
	inst, err := q.installerFor(target)
	if err != nil {
		return "", err
	}

	fullName := m.Ident.Owner() + "-" + m.Ident.Name()
	cachePath := q.cache.PathFor(m.Ident)

	downloaded := false
	if !q.cache.Has(m.Ident) {
		downloaded = true
		q.emit(Event{Kind: EventSetTask, Task: TaskDownload})

		// Throttle byte progress to one event per 100ms; chunk deltas
		// accumulate in between so no bytes are lost.
		var pendingBytes int64
		lastEmit := time.Now()
		data, err := q.dl.Download(ctx, m.Ident, func(n int64) {
			pendingBytes += n
			if time.Since(lastEmit) >= 100*time.Millisecond {
				q.emit(Event{Kind: EventAddProgress, Bytes: pendingBytes})
				pendingBytes = 0
				lastEmit = time.Now()
			}
		})
		if pendingBytes > 0 {
			q.emit(Event{Kind: EventAddProgress, Bytes: pendingBytes})
		}
		if err != nil {
			return "", fmt.Errorf("queue: download %s: %w", m.Ident.String(), err)
		}

		q.emit(Event{Kind: EventSetTask, Task: TaskExtract})
		if _, err := q.cache.Ingest(ctx, inst, m.Ident, data, nil); err != nil {
			return "", err
		}
	}

	q.emit(Event{Kind: EventSetTask, Task: TaskInstall})

	if options.BeforeInstall != nil {
		if err := options.BeforeInstall(m); err != nil {
			return "", err
		}
	}

	if err := inst.Install(cachePath, target.Path(), fullName, m.Overwrite); err != nil {
		return "", fmt.Errorf("queue: install %s: %w", fullName, err)
	}

	uuid := target.AppendMod(m, fullName)
	if err := target.Save(); err != nil {
		return "", fmt.Errorf("queue: save profile: %w", err)
	}

	// Bytes for a downloaded mod were already counted chunk-by-chunk; a
	// cache hit reports its full size here so the totals still line up
	// with the AddCount emitted at push.
	if downloaded {
		q.emit(Event{Kind: EventAddProgress, Mods: 1})
	} else {
		q.emit(Event{Kind: EventAddProgress, Mods: 1, Bytes: m.FileSize})
	}
	return uuid, nil
}
