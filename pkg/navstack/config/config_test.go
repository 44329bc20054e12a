package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
)

type listKey struct{}

func (listKey) Kind() string { return "list" }

type detailKey struct {
	ID int `json:"id"`
}

func (detailKey) Kind() string { return "detail" }

type dialogKey struct{}

func (dialogKey) Kind() string { return "dialog" }

const layoutTOML = `
log_level = "debug"
log_path = "/tmp/navstack/app.log"

[[containers]]
id = "main"
accept = "kind != 'dialog'"
empty_behavior = "close_parent"

[[containers]]
id = "overlay"
accept = "kind == 'dialog'"
directions = ["present"]
`

const layoutYAML = `
log_level: debug
log_path: /tmp/navstack/app.log
containers:
  - id: main
    accept: "kind != 'dialog'"
    empty_behavior: close_parent
  - id: overlay
    accept: "kind == 'dialog'"
    directions: [present]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "toml", file: "layout.toml", content: layoutTOML},
		{name: "yaml", file: "layout.yaml", content: layoutYAML},
		{name: "yml", file: "layout.yml", content: layoutYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "debug", cfg.LogLevel)
			assert.Equal(t, "/tmp/navstack/app.log", cfg.Options().LogPath)
			require.Len(t, cfg.Containers, 2)

			overlay, ok := cfg.Container("overlay")
			require.True(t, ok)
			assert.Equal(t, []string{"present"}, overlay.Directions)
			assert.Equal(t, EmptyCloseParent, cfg.Containers[0].EmptyBehavior)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "extension", file: "layout.json", content: "{}", want: "unsupported file extension"},
		{name: "unknown toml key", file: "a.toml", content: "colour = 'red'\n", want: "unknown key"},
		{name: "unknown yaml key", file: "a.yaml", content: "colour: red\n", want: "colour"},
		{name: "missing id", file: "a.toml", content: "[[containers]]\naccept = 'true'\n", want: "id is required"},
		{name: "duplicate id", file: "a.yaml", content: "containers:\n  - id: a\n  - id: a\n", want: "duplicate id"},
		{name: "bad direction", file: "a.yaml", content: "containers:\n  - id: a\n    directions: [sideways]\n", want: "unknown direction"},
		{name: "bad empty behavior", file: "a.yaml", content: "containers:\n  - id: a\n    empty_behavior: explode\n", want: "unknown empty behavior"},
		{name: "bad expression", file: "a.yaml", content: "containers:\n  - id: a\n    accept: \"kind ==\"\n", want: "compile error"},
		{name: "non bool expression", file: "a.yaml", content: "containers:\n  - id: a\n    accept: \"kind\"\n", want: "must return bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeEmptyYAML(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, cfg.Containers)
}

func TestCompileAccept(t *testing.T) {
	accept, err := CompileAccept("kind == 'detail' && key.id > 3.0")
	require.NoError(t, err)

	assert.True(t, accept(detailKey{ID: 4}))
	assert.False(t, accept(detailKey{ID: 3}))
	assert.False(t, accept(listKey{}), "missing field fails evaluation and rejects")
	assert.False(t, accept(nil))
}

func TestBuild(t *testing.T) {
	cfg, err := Build(ContainerSpec{
		ID:            "overlay",
		Accept:        "kind == 'dialog'",
		Directions:    []string{"present"},
		EmptyBehavior: EmptyCloseParent,
	})
	require.NoError(t, err)

	c := navstack.NewContainer(cfg)
	assert.Equal(t, "overlay", c.ID())
	assert.Equal(t, "close_parent", c.EmptyBehavior().String())
	assert.True(t, c.Accepts(navstack.Present(dialogKey{})))
	assert.False(t, c.Accepts(navstack.Push(dialogKey{})))
	assert.False(t, c.Accepts(navstack.Present(listKey{})))
}

func TestNewContainersMountIntoTree(t *testing.T) {
	cfg, err := Load(writeFile(t, "layout.toml", layoutTOML))
	require.NoError(t, err)

	customized := 0
	containers, err := cfg.NewContainers(func(cc *navstack.ContainerConfig) { customized++ })
	require.NoError(t, err)
	require.Len(t, containers, 2)
	assert.Equal(t, 2, customized)

	tree := navstack.NewTree(navstack.TreeOptions{})
	for _, c := range containers {
		_, err := tree.MountContainer(c)
		require.NoError(t, err)
	}

	res := tree.Navigate(nil, navstack.Push(listKey{}))
	require.Equal(t, navstack.StatusCommitted, res.Status)
	res = tree.Navigate(nil, navstack.Present(dialogKey{}))
	require.Equal(t, navstack.StatusCommitted, res.Status)

	overlay, _ := tree.Container("overlay")
	assert.Equal(t, 1, overlay.Backstack().Len())
	assert.True(t, overlay.Node().IsActiveInRoot())
}
