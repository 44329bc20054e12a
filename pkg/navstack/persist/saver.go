package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/flow"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// snapshotVersion is written into every container snapshot.
const snapshotVersion = 1

// Flow is the part of a flow.Manager a Saver needs.
type Flow interface {
	Snapshot() flow.State
	Restore(st flow.State)
	Update() error
}

// Store keeps encoded snapshots by name.
type Store interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
}

type containerRecord struct {
	Version   int             `json:"version"`
	Container string          `json:"container"`
	Backstack json.RawMessage `json:"backstack"`
	Flow      json.RawMessage `json:"flow,omitempty"`
}

// Saver snapshots containers, and the flows attached to them, by container id.
type Saver struct {
	codec  *Codec
	lookup func(id string) (*navstack.Container, bool)
	flows  map[string]Flow
}

// NewSaver creates a saver. lookup resolves container ids, typically
// Registry.Container or Tree.Container.
func NewSaver(codec *Codec, lookup func(id string) (*navstack.Container, bool)) *Saver {
	return &Saver{
		codec:  codec,
		lookup: lookup,
		flows:  make(map[string]Flow),
	}
}

// AttachFlow saves and restores f together with the container it drives. The
// flow must use a fixed Options.ID so restored result bindings still match it.
func (s *Saver) AttachFlow(containerID string, f Flow) {
	s.flows[containerID] = f
}

func (s *Saver) container(id string) (*navstack.Container, error) {
	c, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("persist: container %q: %w", id, navstack.ErrNotFound)
	}
	return c, nil
}

// Save encodes the container's backstack and attached flow state.
func (s *Saver) Save(containerID string) ([]byte, error) {
	c, err := s.container(containerID)
	if err != nil {
		return nil, err
	}

	backstack, err := s.codec.EncodeBackstack(c.Backstack())
	if err != nil {
		return nil, err
	}
	rec := containerRecord{
		Version:   snapshotVersion,
		Container: containerID,
		Backstack: backstack,
	}

	if f, ok := s.flows[containerID]; ok {
		rec.Flow, err = s.codec.EncodeFlow(f.Snapshot())
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(rec)
}

// Restore replaces the container's backstack with the saved one in a single
// commit. An attached flow gets its state back first and then reconciles.
func (s *Saver) Restore(containerID string, blob []byte) error {
	c, err := s.container(containerID)
	if err != nil {
		return err
	}

	var rec containerRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return fmt.Errorf("persist: decode snapshot: %w", err)
	}
	if rec.Version > snapshotVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	if rec.Container != containerID {
		internal.GetInternalLogger().Warn("restoring snapshot into a different container",
			"saved", rec.Container, "target", containerID)
	}

	backstack, err := s.codec.DecodeBackstack(rec.Backstack)
	if err != nil {
		return err
	}

	f, hasFlow := s.flows[containerID]
	if hasFlow && len(rec.Flow) > 0 {
		st, err := s.codec.DecodeFlow(rec.Flow)
		if err != nil {
			return err
		}
		f.Restore(st)
	}

	res := c.SetBackstack(backstack)
	if res.Status == navstack.StatusFault {
		return res.Err
	}

	if hasFlow && len(rec.Flow) > 0 {
		return f.Update()
	}
	return nil
}

// SaveTo saves the container and writes it to store under its id.
func (s *Saver) SaveTo(ctx context.Context, store Store, containerID string) error {
	blob, err := s.Save(containerID)
	if err != nil {
		return err
	}
	return store.Put(ctx, containerID, blob)
}

// RestoreFrom reads the container's snapshot from store and restores it.
func (s *Saver) RestoreFrom(ctx context.Context, store Store, containerID string) error {
	blob, err := store.Get(ctx, containerID)
	if err != nil {
		return err
	}
	return s.Restore(containerID, blob)
}
