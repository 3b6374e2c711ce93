// Package plugins is the closed registration table for built-in plugins.
// Adding a plugin to the platform means adding its manifest and factory
// here; there is no runtime plugin upload.
package plugins

import (
	"errors"

	"launchboard/internal/plugins/companymetrics"
	"launchboard/internal/plugins/fundingtimeline"
	"launchboard/internal/plugins/investornetwork"
	"launchboard/internal/plugins/marketnews"
	"launchboard/pkg/plugin"
)

// Register adds every built-in plugin manifest to the registry. Registration
// order here is the order components render in within a slot.
func Register(registry *plugin.Registry) error {
	manifests := []*plugin.Manifest{
		companymetrics.Manifest(),
		fundingtimeline.Manifest(),
		investornetwork.Manifest(),
		marketnews.Manifest(),
	}
	for _, m := range manifests {
		err := registry.Register(m)
		if errors.Is(err, plugin.ErrDuplicatePlugin) {
			// The registry keeps the first registration and logs the
			// conflict; a duplicate id must not abort startup.
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Factories returns the factory table keyed by plugin id.
func Factories() map[string]plugin.Factory {
	return map[string]plugin.Factory{
		companymetrics.ID:  companymetrics.New,
		fundingtimeline.ID: fundingtimeline.New,
		investornetwork.ID: investornetwork.New,
		marketnews.ID:      marketnews.New,
	}
}
