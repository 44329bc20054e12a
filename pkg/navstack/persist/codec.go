// Package persist saves and restores backstacks and flow state.
//
// navstack does not mandate a storage format. This package provides one: a
// JSON encoding driven by a Codec that knows how to rebuild the application's
// destination keys and typed metadata, a Saver that snapshots containers by id,
// and a SQLite-backed Store for the encoded blobs.
//
// Destination keys must be registered before decoding:
//
//	codec := persist.NewCodec()
//	persist.RegisterKey[DetailKey](codec)
//	persist.RegisterMetadata(codec, SelectedTab)
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/flow"
)

var (
	// ErrUnknownKind is returned when a saved key has a kind no RegisterKey call
	// covers.
	ErrUnknownKind = errors.New("persist: unregistered destination kind")

	// ErrUnsupportedVersion is returned for blobs written by a newer format.
	ErrUnsupportedVersion = errors.New("persist: unsupported snapshot version")
)

type keyDecoder func(data json.RawMessage) (navstack.DestinationKey, error)

type valueDecoder func(data json.RawMessage) (any, error)

// Codec converts instructions to and from JSON. Metadata entries without a
// registered key are decoded into generic JSON values (map[string]any, float64,
// and so on).
type Codec struct {
	keys     map[string]keyDecoder
	metadata map[string]valueDecoder
}

// NewCodec returns a codec that already understands the metadata navstack and
// the flow package write.
func NewCodec() *Codec {
	c := &Codec{
		keys:     make(map[string]keyDecoder),
		metadata: make(map[string]valueDecoder),
	}
	RegisterMetadata(c, navstack.MetadataPreviouslyActiveContainer)
	RegisterMetadata(c, flow.MetadataStepID)
	RegisterMetadata(c, flow.MetadataFingerprint)
	RegisterMetadata(c, flow.MetadataTransient)
	return c
}

// RegisterKey teaches c to decode keys of type K. K must be a value type whose
// zero value reports its Kind.
func RegisterKey[K navstack.DestinationKey](c *Codec) {
	var zero K
	c.keys[zero.Kind()] = func(data json.RawMessage) (navstack.DestinationKey, error) {
		var key K
		if len(data) > 0 {
			if err := json.Unmarshal(data, &key); err != nil {
				return nil, err
			}
		}
		return key, nil
	}
}

// RegisterMetadata teaches c to decode the entry named by key as T.
func RegisterMetadata[T any](c *Codec, key navstack.MetadataKey[T]) {
	c.metadata[key.Name()] = func(data json.RawMessage) (any, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

type bindingRecord struct {
	OwnerID     string `json:"owner_id"`
	ResultKeyID string `json:"result_key_id"`
}

type instructionRecord struct {
	ID        string                     `json:"id"`
	Direction navstack.Direction         `json:"direction"`
	Kind      string                     `json:"kind"`
	Key       json.RawMessage            `json:"key,omitempty"`
	Metadata  map[string]json.RawMessage `json:"metadata,omitempty"`
	Binding   *bindingRecord             `json:"binding,omitempty"`
}

type stepRecord struct {
	flow.Step
	Kind string          `json:"kind"`
	Key  json.RawMessage `json:"key,omitempty"`
}

type flowRecord struct {
	Steps   []stepRecord         `json:"steps"`
	Results []flow.CompletedStep `json:"results"`
}

func (c *Codec) encodeKey(key navstack.DestinationKey) (string, json.RawMessage, error) {
	if key == nil {
		return "", nil, nil
	}
	data, err := json.Marshal(key)
	if err != nil {
		return "", nil, fmt.Errorf("persist: encode %s key: %w", key.Kind(), err)
	}
	return key.Kind(), data, nil
}

func (c *Codec) decodeKey(kind string, data json.RawMessage) (navstack.DestinationKey, error) {
	if kind == "" {
		return nil, nil
	}
	decode, ok := c.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	key, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("persist: decode %s key: %w", kind, err)
	}
	return key, nil
}

func (c *Codec) encodeInstruction(in navstack.Instruction) (instructionRecord, error) {
	kind, key, err := c.encodeKey(in.Key())
	if err != nil {
		return instructionRecord{}, err
	}
	rec := instructionRecord{
		ID:        in.ID(),
		Direction: in.Direction(),
		Kind:      kind,
		Key:       key,
	}

	if md := in.Metadata(); len(md) > 0 {
		rec.Metadata = make(map[string]json.RawMessage, len(md))
		for name, value := range md {
			data, err := json.Marshal(value)
			if err != nil {
				return instructionRecord{}, fmt.Errorf("persist: encode metadata %q: %w", name, err)
			}
			rec.Metadata[name] = data
		}
	}

	if binding, ok := in.ResultBinding(); ok {
		rec.Binding = &bindingRecord{OwnerID: binding.OwnerID, ResultKeyID: binding.ResultKeyID}
	}
	return rec, nil
}

func (c *Codec) decodeInstruction(rec instructionRecord) (navstack.Instruction, error) {
	key, err := c.decodeKey(rec.Kind, rec.Key)
	if err != nil {
		return navstack.Instruction{}, err
	}

	opts := []navstack.InstructionOption{navstack.WithInstructionID(rec.ID)}
	for name, data := range rec.Metadata {
		value, err := c.decodeValue(name, data)
		if err != nil {
			return navstack.Instruction{}, err
		}
		opts = append(opts, navstack.WithRawMetadata(name, value))
	}
	if rec.Binding != nil {
		opts = append(opts, navstack.WithResultBinding(navstack.ResultBinding{
			OwnerID:     rec.Binding.OwnerID,
			ResultKeyID: rec.Binding.ResultKeyID,
		}))
	}
	return navstack.NewInstruction(rec.Direction, key, opts...), nil
}

func (c *Codec) decodeValue(name string, data json.RawMessage) (any, error) {
	if bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if decode, ok := c.metadata[name]; ok {
		v, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("persist: decode metadata %q: %w", name, err)
		}
		return v, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("persist: decode metadata %q: %w", name, err)
	}
	return v, nil
}

// EncodeBackstack encodes b bottom first. Instruction ids, metadata and result
// bindings are preserved.
func (c *Codec) EncodeBackstack(b navstack.Backstack) ([]byte, error) {
	records := make([]instructionRecord, 0, b.Len())
	for _, in := range b.Instructions() {
		rec, err := c.encodeInstruction(in)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

// DecodeBackstack rebuilds a backstack written by EncodeBackstack.
func (c *Codec) DecodeBackstack(data []byte) (navstack.Backstack, error) {
	var records []instructionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return navstack.Backstack{}, fmt.Errorf("persist: decode backstack: %w", err)
	}

	instructions := make([]navstack.Instruction, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			return navstack.Backstack{}, fmt.Errorf("persist: duplicate instruction id %q", rec.ID)
		}
		seen[rec.ID] = true

		in, err := c.decodeInstruction(rec)
		if err != nil {
			return navstack.Backstack{}, err
		}
		instructions = append(instructions, in)
	}
	return navstack.NewBackstack(instructions...), nil
}

// EncodeFlow encodes a flow snapshot. Step results must be JSON encodable.
func (c *Codec) EncodeFlow(st flow.State) ([]byte, error) {
	rec := flowRecord{
		Steps:   make([]stepRecord, 0, len(st.Steps)),
		Results: st.Results,
	}
	for _, step := range st.Steps {
		kind, key, err := c.encodeKey(step.Key)
		if err != nil {
			return nil, err
		}
		rec.Steps = append(rec.Steps, stepRecord{Step: step, Kind: kind, Key: key})
	}
	if rec.Results == nil {
		rec.Results = []flow.CompletedStep{}
	}
	return json.Marshal(rec)
}

// DecodeFlow rebuilds a flow snapshot. Step results come back as
// json.RawMessage and are converted to their declared type the first time the
// step function reads them.
func (c *Codec) DecodeFlow(data []byte) (flow.State, error) {
	var rec struct {
		Steps   []stepRecord `json:"steps"`
		Results []struct {
			StepID      string          `json:"step_id"`
			Fingerprint int64           `json:"fingerprint"`
			Result      json.RawMessage `json:"result"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return flow.State{}, fmt.Errorf("persist: decode flow: %w", err)
	}

	st := flow.State{
		Steps:   make([]flow.Step, 0, len(rec.Steps)),
		Results: make([]flow.CompletedStep, 0, len(rec.Results)),
	}
	for _, sr := range rec.Steps {
		key, err := c.decodeKey(sr.Kind, sr.Key)
		if err != nil {
			return flow.State{}, err
		}
		step := sr.Step
		step.Key = key
		st.Steps = append(st.Steps, step)
	}
	for _, r := range rec.Results {
		done := flow.CompletedStep{StepID: r.StepID, Fingerprint: r.Fingerprint}
		if len(r.Result) > 0 && !bytes.Equal(r.Result, []byte("null")) {
			done.Result = r.Result
		}
		st.Results = append(st.Results, done)
	}
	return st, nil
}
