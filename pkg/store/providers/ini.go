// Package providers reads the sales channel list from an ini file, for
// deployments without a provider endpoint.
package providers

import (
	"context"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Source supplies the provider config
type Source interface {
	GetProviderConfig(ctx context.Context) (domain.ProviderConfig, error)
}

type iniSource struct {
	cfg *ini.File
}

// NewIniSource loads a file with one section per provider:
//
//	[doordash]
//	name = DoorDash
//	enabled = true
func NewIniSource(path string) (Source, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load providers file: %w", err)
	}
	return &iniSource{cfg: cfg}, nil
}

// GetProviderConfig returns the base channels followed by every enabled
// section, in file order. A section without a name uses its own name.
func (s *iniSource) GetProviderConfig(_ context.Context) (domain.ProviderConfig, error) {
	providers := domain.BaseProviders()
	for _, section := range s.cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		if !section.Key("enabled").MustBool(true) {
			continue
		}

		name := section.Key("name").MustString(section.Name())
		id := domain.ProviderID(section.Name())
		if id == "" {
			return nil, fmt.Errorf("provider section %q has no usable id", section.Name())
		}
		providers = providers.With(domain.Provider{ID: id, Name: name})
	}
	return providers, nil
}
