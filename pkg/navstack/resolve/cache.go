package resolve

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
)

type localizerCache struct {
	localizers map[string]*i18n.Localizer
	order      []string // tracks insertion order for LRU eviction
	maxSize    int
}

func newLocalizerCache(maxSize int) *localizerCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultLocalizerCacheSize
	}
	return &localizerCache{
		localizers: make(map[string]*i18n.Localizer),
		order:      make([]string, 0, maxSize),
		maxSize:    maxSize,
	}
}

func (c *localizerCache) get(lang string) *i18n.Localizer {
	if l, exists := c.localizers[lang]; exists {
		c.touch(lang)
		return l
	}
	return nil
}

func (c *localizerCache) set(lang string, l *i18n.Localizer) {
	if _, exists := c.localizers[lang]; exists {
		c.localizers[lang] = l
		c.touch(lang)
		return
	}

	if len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.localizers, oldest)
	}

	c.localizers[lang] = l
	c.order = append(c.order, lang)
}

// touch moves lang to the most recently used end.
func (c *localizerCache) touch(lang string) {
	for i, k := range c.order {
		if k == lang {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, lang)
			return
		}
	}
}

func (c *localizerCache) len() int {
	return len(c.order)
}
