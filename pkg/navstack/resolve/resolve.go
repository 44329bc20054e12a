// Package resolve maps destination keys to descriptors: what kind of host a
// destination needs and the message id of its title.
//
// The core never looks inside keys. Platform glue uses a Resolver to decide
// which renderer to build for an instruction, and containers can use
// Resolver.AcceptsHost as their key filter so routing follows the descriptors.
package resolve

import (
	"errors"
	"fmt"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
)

var (
	// ErrUnknownDestination is returned for keys whose kind has no descriptor.
	ErrUnknownDestination = errors.New("resolve: no descriptor for destination kind")

	// ErrDuplicateKind is returned when a kind is registered twice.
	ErrDuplicateKind = errors.New("resolve: destination kind already registered")
)

// Descriptor says how a destination is shown.
type Descriptor struct {
	Kind    string
	Host    constants.HostKind
	TitleID string // Message id looked up in Titles; empty for untitled destinations
}

// Resolver holds the descriptors of every destination kind an application
// shows.
type Resolver struct {
	descriptors map[string]Descriptor
	titles      *Titles
}

// NewResolver creates a resolver. titles may be nil when no destination has a
// title.
func NewResolver(titles *Titles) *Resolver {
	return &Resolver{
		descriptors: make(map[string]Descriptor),
		titles:      titles,
	}
}

// Register adds the descriptor for d.Kind.
func (r *Resolver) Register(d Descriptor) error {
	if d.Kind == "" {
		return errors.New("resolve: descriptor kind is required")
	}
	if _, exists := r.descriptors[d.Kind]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKind, d.Kind)
	}
	r.descriptors[d.Kind] = d
	return nil
}

// MustRegister is Register for static setup code.
func (r *Resolver) MustRegister(descriptors ...Descriptor) *Resolver {
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Resolve returns the descriptor for key.
func (r *Resolver) Resolve(key navstack.DestinationKey) (Descriptor, error) {
	if key == nil {
		return Descriptor{}, fmt.Errorf("%w: <nil>", ErrUnknownDestination)
	}
	d, ok := r.descriptors[key.Kind()]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownDestination, key.Kind())
	}
	return d, nil
}

// AcceptsHost returns a key filter for a container of the given host kind. A
// key is accepted when its descriptor asks for that host or for any host.
// Unknown kinds are rejected.
func (r *Resolver) AcceptsHost(host constants.HostKind) func(navstack.DestinationKey) bool {
	return func(key navstack.DestinationKey) bool {
		d, err := r.Resolve(key)
		if err != nil {
			return false
		}
		return d.Host == constants.HostKindAny || d.Host == host
	}
}

// Title returns the localized title of key in lang. The key itself is the
// template data, so message templates can refer to its exported fields.
func (r *Resolver) Title(key navstack.DestinationKey, lang string) (string, error) {
	d, err := r.Resolve(key)
	if err != nil {
		return "", err
	}
	if d.TitleID == "" {
		return "", nil
	}
	if r.titles == nil {
		return d.TitleID, nil
	}
	return r.titles.Localize(lang, d.TitleID, key)
}
