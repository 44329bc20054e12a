package config

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/cel-go/cel"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// CompileAccept compiles a CEL accept expression into a key predicate. The
// expression must evaluate to a bool. Keys whose evaluation fails are rejected.
func CompileAccept(expr string) (func(navstack.DestinationKey) bool, error) {
	env, err := cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("key", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("accept env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("accept %q: compile error: %w", expr, issues.Err())
	}
	if !cel.BoolType.IsAssignableType(ast.OutputType()) {
		return nil, fmt.Errorf("accept %q: must return bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("accept %q: program error: %w", expr, err)
	}

	logger := internal.GetInternalLogger()
	return func(key navstack.DestinationKey) bool {
		if key == nil {
			return false
		}
		out, _, err := prg.Eval(map[string]any{
			"kind": key.Kind(),
			"key":  keyFields(key),
		})
		if err != nil {
			logger.Debug("accept expression failed", "expr", expr, "kind", key.Kind(), "error", err)
			return false
		}
		accepted, ok := out.Value().(bool)
		return ok && accepted
	}, nil
}

// keyFields exposes a key's exported fields to expressions.
func keyFields(key navstack.DestinationKey) map[string]any {
	fields := map[string]any{}
	data, err := json.Marshal(key)
	if err != nil {
		return fields
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return map[string]any{}
	}
	return fields
}

// Build turns a ContainerSpec into a container configuration. Fields the
// file cannot express (interceptors, renderer, observers) are left for the
// caller.
func Build(spec ContainerSpec) (navstack.ContainerConfig, error) {
	cfg := navstack.ContainerConfig{ID: spec.ID}

	if spec.Accept != "" {
		accept, err := CompileAccept(spec.Accept)
		if err != nil {
			return navstack.ContainerConfig{}, err
		}
		cfg.AcceptsKey = accept
	}

	if len(spec.Directions) > 0 {
		allowed := make([]navstack.Direction, 0, len(spec.Directions))
		for _, name := range spec.Directions {
			d, err := navstack.ParseDirection(name)
			if err != nil {
				return navstack.ContainerConfig{}, err
			}
			allowed = append(allowed, d)
		}
		cfg.AcceptsDirection = func(d navstack.Direction) bool {
			return slices.Contains(allowed, d)
		}
	}

	switch spec.EmptyBehavior {
	case "", EmptyAllow:
		cfg.EmptyBehavior = navstack.AllowEmpty()
	case EmptyCloseParent:
		cfg.EmptyBehavior = navstack.CloseParent()
	default:
		return navstack.ContainerConfig{}, fmt.Errorf("unknown empty behavior %q", spec.EmptyBehavior)
	}

	return cfg, nil
}

// NewContainers builds every container in c, in file order. customize, when not
// nil, is called on each configuration before the container is created.
func (c *Config) NewContainers(customize func(cfg *navstack.ContainerConfig)) ([]*navstack.Container, error) {
	out := make([]*navstack.Container, 0, len(c.Containers))
	for _, spec := range c.Containers {
		cfg, err := Build(spec)
		if err != nil {
			return nil, fmt.Errorf("config: container %q: %w", spec.ID, err)
		}
		if customize != nil {
			customize(&cfg)
		}
		out = append(out, navstack.NewContainer(cfg))
	}
	return out, nil
}
