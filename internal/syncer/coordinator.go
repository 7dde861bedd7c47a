// Package syncer owns the canonical in-memory snapshot of every entity
// collection and mediates all reads and writes between callers, the
// local store, and the remote repository.
//
// The contract, in order of priority: the UI-facing snapshot is updated
// first, the local store is written unconditionally, and the remote
// store is written best-effort. Local durability is never sacrificed
// for a remote failure.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	coerrors "github.com/rooststack/coopsync/internal/errors"
	"github.com/rooststack/coopsync/internal/models"
	"github.com/rooststack/coopsync/internal/store"
)

//go:generate mockgen -source=coordinator.go -destination=mock_remote_test.go -package=syncer

// Remote is the remote store capability the coordinator depends on.
// *github.Client satisfies this interface.
type Remote interface {
	Initialize(ctx context.Context, token, owner, repo string) bool
	GetEntityData(ctx context.Context, entity string) (models.Collection, string, error)
	SaveEntityData(ctx context.Context, entity string, records models.Collection) error
	Bootstrap(ctx context.Context) error
	Logout()
}

// Notifier receives user-facing notifications. It must not call back
// into the coordinator.
type Notifier func(models.Notification)

// Coordinator is the synchronization state machine. Construct one at
// process start with New and pass it by reference; it has no teardown.
//
// opMu serializes whole operations so no two remote calls for the same
// entity are ever in flight concurrently. mu guards the snapshot and
// scalar state for short reads while an operation is running.
type Coordinator struct {
	store  *store.Store
	remote Remote
	logger *slog.Logger
	notify Notifier

	opMu sync.Mutex

	mu       sync.Mutex
	snapshot models.Snapshot
	mode     models.StorageMode
	creds    models.RemoteConfig
	ready    bool
	status   models.SyncStatus
	loading  bool
}

// New creates a coordinator over the given stores. notify may be nil,
// in which case notifications are only logged.
func New(st *store.Store, remote Remote, logger *slog.Logger, notify Notifier) *Coordinator {
	return &Coordinator{
		store:    st,
		remote:   remote,
		logger:   logger,
		notify:   notify,
		snapshot: make(models.Snapshot, len(models.Entities)),
		mode:     models.ModeLocal,
		status:   models.SyncIdle,
	}
}

// Initialize loads persisted state and brings the coordinator to a
// usable condition. The local snapshot is always loaded first, so the
// application works even when the remote store is unreachable; a failed
// remote restore forces the mode back to local and reports an error
// instead of blocking.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setLoading(true)
	defer c.setLoading(false)

	if err := c.store.Initialize(); err != nil {
		return fmt.Errorf("initializing local store: %w", err)
	}

	c.mu.Lock()
	for _, entity := range models.Entities {
		c.snapshot[entity] = c.store.Get(entity)
	}
	c.mu.Unlock()

	mode := models.ModeLocal

	var saved string
	if c.store.GetSetting(store.SettingStorageMode, &saved) && models.ValidMode(models.StorageMode(saved)) {
		mode = models.StorageMode(saved)
	}

	var creds models.RemoteConfig
	c.store.GetSetting(store.SettingRemoteConfig, &creds)

	c.mu.Lock()
	c.creds = creds
	c.mu.Unlock()

	if mode != models.ModeRemote {
		c.setMode(models.ModeLocal)
		c.logger.Info("coordinator initialized", slog.String("mode", string(models.ModeLocal)))

		return nil
	}

	if !creds.Valid() || !c.remote.Initialize(ctx, creds.Token, creds.Owner, creds.Repo) {
		// Never leave the system claiming remote mode without working
		// credentials.
		c.setMode(models.ModeLocal)
		c.persistMode(models.ModeLocal)
		c.setReady(false)
		c.emit("Could not connect to the remote repository with saved credentials. Working in local mode.", models.NotifyError)
		c.logger.Error("remote session restore failed, falling back to local mode")

		return nil
	}

	c.setMode(models.ModeRemote)
	c.setReady(true)
	c.logger.Info("remote session restored, synchronizing")

	if err := c.synchronize(ctx, true); err != nil {
		c.logger.Error("initial synchronization completed with errors", slog.Any("error", err))
	}

	return nil
}

// Synchronize pulls every entity from the remote store, overwriting the
// in-memory snapshot and the local store. Remote wins; this is a
// destructive pull with no merging.
func (c *Coordinator) Synchronize(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.synchronize(ctx, false)
}

// synchronize runs the pull loop. Callers hold opMu. When initial is
// true the not-configured warning and the success notification are
// suppressed; startup already reports connectivity problems itself.
func (c *Coordinator) synchronize(ctx context.Context, initial bool) error {
	if c.StorageMode() != models.ModeRemote || !c.IsRemoteReady() {
		if !initial {
			c.emit("Remote synchronization is not enabled or configured.", models.NotifyWarning)
		}

		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)
	c.setStatus(models.SyncSyncing)

	var (
		firstErr error
		failed   []string
	)

	// Strictly sequential so a failure on one entity cannot race the
	// next entity's write and the first error is reproducible.
	for _, entity := range models.Entities {
		records, sha, err := c.remote.GetEntityData(ctx, entity)
		if err != nil {
			c.logger.Error("fetching entity from remote",
				slog.String("entity", entity), slog.Any("error", err))

			failed = append(failed, entity)
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		if sha == "" {
			// Not yet created remotely. Establish it as empty rather
			// than treating absence as an error.
			if err := c.remote.SaveEntityData(ctx, entity, models.Collection{}); err != nil {
				c.logger.Error("establishing entity on remote",
					slog.String("entity", entity), slog.Any("error", err))

				failed = append(failed, entity)
				if firstErr == nil {
					firstErr = err
				}

				continue
			}

			records = models.Collection{}
		}

		c.mu.Lock()
		c.snapshot[entity] = records
		c.mu.Unlock()

		if err := c.store.Set(entity, records); err != nil {
			c.logger.Error("persisting synced entity locally",
				slog.String("entity", entity), slog.Any("error", err))
			c.emit(fmt.Sprintf("Could not persist %s locally after sync.", entity), models.NotifyWarning)
		}
	}

	if firstErr != nil {
		c.setStatus(models.SyncError)
		c.emit(fmt.Sprintf("Synchronization completed with errors (%s): %v",
			strings.Join(failed, ", "), firstErr), models.NotifyError)

		return fmt.Errorf("synchronizing %s: %w", strings.Join(failed, ", "), firstErr)
	}

	c.setStatus(models.SyncSynced)

	if !initial {
		c.emit("Data synchronized from the remote repository.", models.NotifySuccess)
	}

	return nil
}

// Mutate replaces an entity's collection. The in-memory snapshot is
// updated synchronously, the local store is written unconditionally,
// and the remote store is written best-effort when in remote mode. A
// failed local write is surfaced but not rolled back.
func (c *Coordinator) Mutate(ctx context.Context, entity string, records models.Collection) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if !models.KnownEntity(entity) {
		c.logger.Error("mutate called with unknown entity", slog.String("entity", entity))
		c.emit(fmt.Sprintf("Internal error: unknown entity %q.", entity), models.NotifyError)

		return fmt.Errorf("%w: %s", coerrors.ErrUnknownEntity, entity)
	}

	if records == nil {
		records = models.Collection{}
	}

	c.mu.Lock()
	c.snapshot[entity] = records
	c.mu.Unlock()

	if err := c.store.Set(entity, records); err != nil {
		c.logger.Error("local write failed", slog.String("entity", entity), slog.Any("error", err))
		c.emit(fmt.Sprintf("Could not persist %s locally: %v", entity, err), models.NotifyWarning)
	}

	if c.StorageMode() != models.ModeRemote || !c.IsRemoteReady() {
		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)
	c.setStatus(models.SyncSyncing)

	if err := c.remote.SaveEntityData(ctx, entity, records); err != nil {
		c.logger.Error("remote write failed", slog.String("entity", entity), slog.Any("error", err))
		c.setStatus(models.SyncError)
		c.emit(fmt.Sprintf("Could not save %s to the remote repository: %v. Local data is safe.", entity, err),
			models.NotifyWarning)

		return nil
	}

	c.setStatus(models.SyncSynced)

	return nil
}

// SetStorageMode switches between local and remote mode. Switching to
// remote is rejected while no validated credentials are held; switching
// to local is always accepted. An accepted switch to remote triggers a
// synchronization.
func (c *Coordinator) SetStorageMode(ctx context.Context, mode models.StorageMode) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.setStorageMode(ctx, mode)
}

func (c *Coordinator) setStorageMode(ctx context.Context, mode models.StorageMode) error {
	if !models.ValidMode(mode) {
		return fmt.Errorf("%w: %q", coerrors.ErrInvalidMode, mode)
	}

	if mode == models.ModeRemote && !c.IsRemoteReady() {
		c.emit("Configure remote credentials before enabling synchronization.", models.NotifyWarning)

		return coerrors.ErrRemoteNotReady
	}

	c.setMode(mode)
	c.persistMode(mode)
	c.logger.Info("storage mode changed", slog.String("mode", string(mode)))

	label := "Offline (local)"
	if mode == models.ModeRemote {
		label = "Online (remote repository)"
	}

	c.emit(fmt.Sprintf("Storage mode changed to: %s.", label), models.NotifyInfo)

	if mode == models.ModeRemote {
		return c.synchronize(ctx, false)
	}

	return nil
}

// Connect validates the given credentials against the remote store and,
// on success, persists them, bootstraps the remote data directory, and
// switches to remote mode. On failure the mode is untouched and the
// ready flag stays false.
func (c *Coordinator) Connect(ctx context.Context, token, owner, repo string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.setLoading(true)
	defer c.setLoading(false)
	c.setStatus(models.SyncSyncing)

	if !c.remote.Initialize(ctx, token, owner, repo) {
		c.setReady(false)
		c.setStatus(models.SyncError)
		c.emit("Could not connect: the credentials are invalid or there was a network problem.", models.NotifyError)

		return fmt.Errorf("connecting to remote: %w", coerrors.ErrCredentialsNeeded)
	}

	creds := models.RemoteConfig{Token: token, Owner: owner, Repo: repo}

	c.mu.Lock()
	c.creds = creds
	c.ready = true
	c.mu.Unlock()

	if err := c.store.SetSetting(store.SettingRemoteConfig, creds); err != nil {
		c.logger.Error("persisting remote credentials", slog.Any("error", err))
		c.emit("Credentials could not be persisted; the connection lasts until restart.", models.NotifyWarning)
	}

	if err := c.remote.Bootstrap(ctx); err != nil {
		c.setReady(false)
		c.setStatus(models.SyncError)
		c.emit(fmt.Sprintf("Could not prepare the remote data directory: %v", err), models.NotifyError)

		return fmt.Errorf("bootstrapping remote data directory: %w", err)
	}

	if err := c.setStorageMode(ctx, models.ModeRemote); err != nil {
		return err
	}

	c.emit("Connected to the remote repository.", models.NotifySuccess)

	return nil
}

// Disconnect logs out of the remote store, clears persisted
// credentials, and forces local mode. It is unconditional: no failure
// can leave the system in remote mode with dead credentials.
func (c *Coordinator) Disconnect() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.remote.Logout()

	c.mu.Lock()
	c.creds = models.RemoteConfig{}
	c.ready = false
	c.mu.Unlock()

	if err := c.store.RemoveSetting(store.SettingRemoteConfig); err != nil {
		c.logger.Error("removing persisted credentials", slog.Any("error", err))
	}

	c.setMode(models.ModeLocal)
	c.persistMode(models.ModeLocal)
	c.setStatus(models.SyncIdle)
	c.emit("Disconnected from the remote repository. Working in local mode.", models.NotifyInfo)
}

// SaveAllToRemote pushes every in-memory collection to the remote
// store: the local-to-remote mirror of Synchronize, with the same
// per-entity fault isolation.
func (c *Coordinator) SaveAllToRemote(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.saveAllToRemote(ctx)
}

func (c *Coordinator) saveAllToRemote(ctx context.Context) error {
	if c.StorageMode() != models.ModeRemote || !c.IsRemoteReady() {
		c.emit("Remote synchronization is not enabled or configured.", models.NotifyWarning)

		return nil
	}

	c.setLoading(true)
	defer c.setLoading(false)
	c.setStatus(models.SyncSyncing)

	var (
		firstErr error
		failed   []string
	)

	for _, entity := range models.Entities {
		c.mu.Lock()
		records := c.snapshot[entity]
		c.mu.Unlock()

		if err := c.remote.SaveEntityData(ctx, entity, records); err != nil {
			c.logger.Error("pushing entity to remote",
				slog.String("entity", entity), slog.Any("error", err))

			failed = append(failed, entity)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		c.setStatus(models.SyncError)
		c.emit(fmt.Sprintf("Saving to the remote repository failed for %s: %v. Local data is safe.",
			strings.Join(failed, ", "), firstErr), models.NotifyError)

		return fmt.Errorf("pushing %s: %w", strings.Join(failed, ", "), firstErr)
	}

	c.setStatus(models.SyncSynced)
	c.emit("Data saved to the remote repository.", models.NotifySuccess)

	return nil
}

// ImportSnapshot replaces every collection with an externally supplied
// snapshot. Validation is all-or-nothing: a snapshot missing entities
// is rejected before any state changes. On success all collections are
// persisted locally in one batch and, in remote mode, pushed remotely.
func (c *Coordinator) ImportSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var missing []string

	for _, entity := range models.Entities {
		if _, ok := snapshot[entity]; !ok {
			missing = append(missing, entity)
		}
	}

	if len(missing) > 0 {
		err := fmt.Errorf("snapshot is missing entities: %s", strings.Join(missing, ", "))
		c.emit(fmt.Sprintf("Import rejected: %v", err), models.NotifyError)

		return err
	}

	c.mu.Lock()
	for _, entity := range models.Entities {
		records := snapshot[entity]
		if records == nil {
			records = models.Collection{}
		}

		c.snapshot[entity] = records
	}
	c.mu.Unlock()

	if err := c.store.ImportAll(snapshot); err != nil {
		c.logger.Error("persisting imported snapshot", slog.Any("error", err))
		c.emit(fmt.Sprintf("Imported data could not be persisted locally: %v", err), models.NotifyWarning)
	} else {
		c.emit("Data imported and saved locally.", models.NotifySuccess)
	}

	if c.StorageMode() == models.ModeRemote && c.IsRemoteReady() {
		return c.saveAllToRemote(ctx)
	}

	return nil
}

// ExportSnapshot returns a full copy sourced from the local store
// rather than the in-memory snapshot, so an export always reflects the
// last confirmed durable state.
func (c *Coordinator) ExportSnapshot() models.Snapshot {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	return c.store.ExportAll()
}

// Collection returns a copy of the in-memory collection for an entity.
func (c *Coordinator) Collection(entity string) models.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot[entity].Clone()
}

// Snapshot returns a copy of the full in-memory snapshot.
func (c *Coordinator) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot.Clone()
}

// StorageMode returns the current storage mode.
func (c *Coordinator) StorageMode() models.StorageMode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mode
}

// SyncStatus returns the outcome of the most recent remote operation.
func (c *Coordinator) SyncStatus() models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

// IsRemoteReady reports whether validated credentials are held.
func (c *Coordinator) IsRemoteReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ready
}

// IsLoading reports whether an operation with remote work is running.
func (c *Coordinator) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading
}

// Credentials returns the current remote credentials, for display in a
// settings screen.
func (c *Coordinator) Credentials() models.RemoteConfig {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.creds
}

func (c *Coordinator) emit(message string, kind models.NotifyKind) {
	c.logger.Info("notification", slog.String("kind", string(kind)), slog.String("message", message))

	if c.notify != nil {
		c.notify(models.Notification{Message: message, Kind: kind})
	}
}

func (c *Coordinator) setMode(mode models.StorageMode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

func (c *Coordinator) persistMode(mode models.StorageMode) {
	if err := c.store.SetSetting(store.SettingStorageMode, string(mode)); err != nil {
		c.logger.Error("persisting storage mode", slog.Any("error", err))
	}
}

func (c *Coordinator) setReady(ready bool) {
	c.mu.Lock()
	c.ready = ready
	c.mu.Unlock()
}

func (c *Coordinator) setStatus(status models.SyncStatus) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *Coordinator) setLoading(loading bool) {
	c.mu.Lock()
	c.loading = loading
	c.mu.Unlock()
}
