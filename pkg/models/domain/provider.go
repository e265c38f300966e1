package domain

import (
	"regexp"
	"strings"
)

const (
	ProviderInStore = "in_store"
	ProviderOnline  = "online"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Provider is a sales channel. ID is stable, Name is for display only.
type Provider struct {
	ID   string
	Name string
}

// ProviderConfig is the ordered channel list: base channels first, then third-party providers
type ProviderConfig []Provider

func BaseProviders() ProviderConfig {
	return ProviderConfig{
		{ID: ProviderInStore, Name: "In-Store"},
		{ID: ProviderOnline, Name: "Online"},
	}
}

// NewProviderConfig appends the named third-party providers to the base channels.
// Names that slug to an empty or already known id are skipped.
func NewProviderConfig(names ...string) ProviderConfig {
	cfg := BaseProviders()
	for _, name := range names {
		cfg = cfg.With(Provider{ID: ProviderID(name), Name: strings.TrimSpace(name)})
	}
	return cfg
}

// With returns a copy of the config with p appended, unless its id is empty or taken
func (c ProviderConfig) With(p Provider) ProviderConfig {
	if p.ID == "" || c.Has(p.ID) {
		return c
	}
	out := make(ProviderConfig, 0, len(c)+1)
	out = append(out, c...)
	return append(out, p)
}

func (c ProviderConfig) Has(id string) bool {
	for _, p := range c {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (c ProviderConfig) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, p := range c {
		ids = append(ids, p.ID)
	}
	return ids
}

// ProviderID converts a provider display name to its stable id,
// e.g. "Uber Eats" -> "uber_eats"
func ProviderID(name string) string {
	s := strings.ToLower(name)
	s = nonAlphanumeric.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
