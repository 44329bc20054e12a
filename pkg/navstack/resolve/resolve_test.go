package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
)

type listKey struct{}

func (listKey) Kind() string { return "list" }

type detailKey struct {
	Name string
}

func (detailKey) Kind() string { return "detail" }

type confirmKey struct{}

func (confirmKey) Kind() string { return "confirm" }

type unknownKey struct{}

func (unknownKey) Kind() string { return "unknown" }

func newTitles(t *testing.T) *Titles {
	t.Helper()
	titles := NewTitles(language.English)
	require.NoError(t, titles.AddMessages(language.English,
		&i18n.Message{ID: "list_title", Other: "Library"},
		&i18n.Message{ID: "detail_title", Other: "Details for {{.Name}}"},
	))
	require.NoError(t, titles.AddMessages(language.Spanish,
		&i18n.Message{ID: "detail_title", Other: "Detalles de {{.Name}}"},
	))
	return titles
}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	return NewResolver(newTitles(t)).MustRegister(
		Descriptor{Kind: "list", Host: constants.HostKindStack, TitleID: "list_title"},
		Descriptor{Kind: "detail", Host: constants.HostKindStack, TitleID: "detail_title"},
		Descriptor{Kind: "confirm", Host: constants.HostKindOverlay},
	)
}

func TestResolve(t *testing.T) {
	r := newResolver(t)

	d, err := r.Resolve(detailKey{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, constants.HostKindStack, d.Host)
	assert.Equal(t, "detail_title", d.TitleID)

	_, err = r.Resolve(unknownKey{})
	assert.ErrorIs(t, err, ErrUnknownDestination)

	_, err = r.Resolve(nil)
	assert.ErrorIs(t, err, ErrUnknownDestination)
}

func TestRegisterErrors(t *testing.T) {
	r := NewResolver(nil)
	require.NoError(t, r.Register(Descriptor{Kind: "list"}))
	assert.ErrorIs(t, r.Register(Descriptor{Kind: "list"}), ErrDuplicateKind)
	assert.Error(t, r.Register(Descriptor{}))
	assert.Panics(t, func() { r.MustRegister(Descriptor{Kind: "list"}) })
}

func TestTitle(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name string
		key  navstack.DestinationKey
		lang string
		want string
	}{
		{name: "english", key: detailKey{Name: "Zelda"}, lang: "en", want: "Details for Zelda"},
		{name: "spanish", key: detailKey{Name: "Zelda"}, lang: "es", want: "Detalles de Zelda"},
		{name: "regional variant", key: detailKey{Name: "Zelda"}, lang: "es-MX", want: "Detalles de Zelda"},
		{name: "missing translation falls back", key: listKey{}, lang: "es", want: "Library"},
		{name: "unknown language falls back", key: listKey{}, lang: "fr", want: "Library"},
		{name: "unparseable language falls back", key: listKey{}, lang: "!!", want: "Library"},
		{name: "untitled", key: confirmKey{}, lang: "en", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Title(tt.key, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleMissingMessage(t *testing.T) {
	r := NewResolver(NewTitles(language.English)).MustRegister(
		Descriptor{Kind: "list", TitleID: "nowhere"},
	)
	_, err := r.Title(listKey{}, "en")

	var notFound *i18n.MessageNotFoundErr
	assert.ErrorAs(t, err, &notFound)
}

func TestTitleWithoutCatalog(t *testing.T) {
	r := NewResolver(nil).MustRegister(Descriptor{Kind: "list", TitleID: "list_title"})
	got, err := r.Title(listKey{}, "en")
	require.NoError(t, err)
	assert.Equal(t, "list_title", got, "the message id stands in")
}

func TestLoadMessageFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "active.de.toml")
	yamlPath := filepath.Join(dir, "active.fr.yaml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("list_title = \"Bibliothek\"\n"), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("list_title: Bibliothèque\n"), 0o644))

	titles := newTitles(t)
	require.NoError(t, titles.LoadMessageFile(tomlPath))
	require.NoError(t, titles.LoadMessageFile(yamlPath))
	require.NoError(t, titles.ParseMessages([]byte("list_title = \"Biblioteca\"\n"), "it.toml"))

	var langs []string
	for _, tag := range titles.Languages() {
		langs = append(langs, tag.String())
	}
	assert.ElementsMatch(t, []string{"en", "es", "de", "fr", "it"}, langs)

	for lang, want := range map[string]string{"de": "Bibliothek", "fr": "Bibliothèque", "it": "Biblioteca"} {
		got, err := titles.Localize(lang, "list_title", nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, lang)
	}

	err := titles.LoadMessageFile(filepath.Join(dir, "missing.en.toml"))
	assert.Error(t, err)
}

func TestAcceptsHost(t *testing.T) {
	r := newResolver(t)
	r.MustRegister(Descriptor{Kind: "anywhere", Host: constants.HostKindAny})

	stack := r.AcceptsHost(constants.HostKindStack)
	overlay := r.AcceptsHost(constants.HostKindOverlay)

	assert.True(t, stack(listKey{}))
	assert.False(t, stack(confirmKey{}))
	assert.True(t, overlay(confirmKey{}))
	assert.False(t, overlay(unknownKey{}))

	main := navstack.NewContainer(navstack.ContainerConfig{ID: "main", AcceptsKey: stack})
	modal := navstack.NewContainer(navstack.ContainerConfig{ID: "modal", AcceptsKey: overlay})
	tree := navstack.NewTree(navstack.TreeOptions{})
	_, err := tree.MountContainer(main)
	require.NoError(t, err)
	_, err = tree.MountContainer(modal)
	require.NoError(t, err)

	require.Equal(t, navstack.StatusCommitted, tree.Navigate(nil, navstack.Push(listKey{})).Status)
	require.Equal(t, navstack.StatusCommitted, tree.Navigate(nil, navstack.Present(confirmKey{})).Status)
	assert.Equal(t, 1, main.Backstack().Len())
	assert.Equal(t, 1, modal.Backstack().Len())

	res := tree.Navigate(nil, navstack.Push(unknownKey{}))
	assert.Equal(t, navstack.StatusRejected, res.Status)
}

func TestLocalizerCache(t *testing.T) {
	c := newLocalizerCache(2)
	bundle := i18n.NewBundle(language.English)
	en := i18n.NewLocalizer(bundle, "en")
	es := i18n.NewLocalizer(bundle, "es")
	de := i18n.NewLocalizer(bundle, "de")

	c.set("en", en)
	c.set("es", es)
	assert.Same(t, en, c.get("en"), "en is now most recent")

	c.set("de", de)
	assert.Equal(t, 2, c.len())
	assert.Nil(t, c.get("es"), "least recently used is evicted")
	assert.Same(t, en, c.get("en"))
	assert.Same(t, de, c.get("de"))

	assert.Equal(t, 5, newLocalizerCache(0).maxSize)
}

func TestLocalizeFallsBackPerMessage(t *testing.T) {
	titles := newTitles(t)

	got, err := titles.Localize("es", "detail_title", map[string]string{"Name": "Zelda"})
	require.NoError(t, err)
	assert.Equal(t, "Detalles de Zelda", got)

	got, err = titles.Localize("es", "list_title", nil)
	require.NoError(t, err, "a partly translated language uses the fallback text")
	assert.Equal(t, "Library", got)

	_, err = titles.Localize("es", "nowhere", nil)
	var notFound *i18n.MessageNotFoundErr
	assert.ErrorAs(t, err, &notFound)
}
