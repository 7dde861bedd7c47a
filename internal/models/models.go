// Package models defines types shared across internal packages.
package models

// Entity names. Each names one of the eight record collections the
// application tracks. Identifiers are unique within a collection only.
const (
	EntityIndividual   = "Individual"
	EntityGeneticLine  = "GeneticLine"
	EntityFight        = "Fight"
	EntityMedicalCare  = "MedicalCare"
	EntityTraining     = "Training"
	EntityFeeding      = "Feeding"
	EntityHygiene      = "Hygiene"
	EntityWeightRecord = "WeightRecord"
)

// Entities lists every known entity in canonical order. Sync and
// bootstrap loops iterate this slice so their per-entity work is
// deterministic and reproducible.
var Entities = []string{
	EntityIndividual,
	EntityGeneticLine,
	EntityFight,
	EntityMedicalCare,
	EntityTraining,
	EntityFeeding,
	EntityHygiene,
	EntityWeightRecord,
}

// KnownEntity reports whether name is one of the eight entities.
func KnownEntity(name string) bool {
	for _, e := range Entities {
		if e == name {
			return true
		}
	}

	return false
}

// Record is a single flat entity record: field name to scalar value.
// Cross-collection references (an individual id on a fight record, for
// example) are opaque strings here; referential integrity belongs to
// the callers.
type Record map[string]any

// Collection is the ordered record sequence for one entity.
type Collection []Record

// Snapshot maps entity name to its full collection. The coordinator's
// in-memory snapshot and the bulk interchange format both use this shape.
type Snapshot map[string]Collection

// Clone returns a copy of the snapshot with fresh record maps, so
// callers can hand it out without exposing internal state to mutation.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for entity, records := range s {
		out[entity] = records.Clone()
	}

	return out
}

// Clone returns a copy of the collection with fresh record maps.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, r := range c {
		nr := make(Record, len(r))
		for k, v := range r {
			nr[k] = v
		}

		out[i] = nr
	}

	return out
}

// StorageMode selects which backing store is authoritative.
type StorageMode string

const (
	// ModeLocal keeps all data in the local store; the remote host is
	// never consulted.
	ModeLocal StorageMode = "local"

	// ModeRemote mirrors every mutation to the remote repository and
	// treats it as the authoritative source during synchronization.
	ModeRemote StorageMode = "remote"
)

// ValidMode reports whether m is a recognized storage mode.
func ValidMode(m StorageMode) bool {
	return m == ModeLocal || m == ModeRemote
}

// SyncStatus describes the outcome of the most recent remote operation.
// It is transient UI state and is never persisted.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// RemoteConfig holds the credentials for the remote repository.
type RemoteConfig struct {
	Token string `json:"token"`
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

// Valid reports whether all credential fields are present.
func (c RemoteConfig) Valid() bool {
	return c.Token != "" && c.Owner != "" && c.Repo != ""
}

// NotifyKind classifies a user-facing notification.
type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyInfo    NotifyKind = "info"
	NotifyWarning NotifyKind = "warning"
	NotifyError   NotifyKind = "error"
)

// Notification is a user-facing message emitted by the coordinator.
// The UI layer decides how to render it.
type Notification struct {
	Message string     `json:"message"`
	Kind    NotifyKind `json:"kind"`
}
