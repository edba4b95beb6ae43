package main

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// configuration captures the plugin's external configuration as exposed in the Mattermost server
// configuration, as well as values computed from the configuration. Any public fields will be
// deserialized from the Mattermost server configuration in OnConfigurationChange.
//
// As plugins are inherently concurrent (hooks being called asynchronously), and the plugin
// configuration can change at any time, access to the configuration must be synchronized. The
// strategy used in this plugin is to guard a pointer to the configuration, and clone the entire
// struct whenever it changes.
//
// If you add non-reference types to your configuration struct, be sure to rewrite Clone as a deep
// copy appropriate for your types.
type configuration struct {
	hazard.Settings
}

// Clone creates a copy of the configuration. Settings holds only scalar
// fields, so a shallow copy is a deep one.
func (c *configuration) Clone() *configuration {
	clone := *c
	return &clone
}

// getConfiguration retrieves the active configuration under lock, making it safe to use
// concurrently. The active configuration may change underneath the client of this method, but
// the struct returned by this API call is considered immutable.
func (p *Plugin) getConfiguration() *configuration {
	p.configurationLock.RLock()
	defer p.configurationLock.RUnlock()

	if p.configuration == nil {
		return &configuration{Settings: hazard.Settings{}.WithDefaults()}
	}

	return p.configuration
}

// setConfiguration replaces the active configuration under lock.
//
// Do not call setConfiguration while holding the configurationLock, as sync.Mutex is not
// reentrant. In particular, avoid using the plugin API entirely, as this may in turn trigger a
// hook back into the plugin. If that hook attempts to acquire this lock, a deadlock may occur.
//
// This method panics if setConfiguration is called with the existing configuration. This almost
// certainly means that the configuration was modified without being cloned and may result in
// an unsafe access.
func (p *Plugin) setConfiguration(configuration *configuration) {
	p.configurationLock.Lock()
	defer p.configurationLock.Unlock()

	if configuration != nil && p.configuration == configuration {
		// Ignore assignment if the configuration struct is empty. Go will optimize the
		// allocation for same to point at the same memory address, breaking the check
		// above.
		if reflect.ValueOf(*configuration).NumField() == 0 {
			return
		}

		panic("setConfiguration called with the existing configuration")
	}

	p.configuration = configuration
}

// OnConfigurationChange is invoked when configuration changes may have been made.
func (p *Plugin) OnConfigurationChange() error {
	var newConfig = new(configuration)

	// Load the public configuration fields from the Mattermost server configuration.
	if err := p.API.LoadPluginConfiguration(newConfig); err != nil {
		return errors.Wrap(err, "failed to load plugin configuration")
	}

	newConfig.Settings = newConfig.Settings.WithDefaults()

	if err := hazard.ValidateSettings(newConfig.Settings); err != nil {
		return errors.Wrap(err, "invalid plugin configuration")
	}

	oldConfig := p.getConfiguration()
	changed := oldConfig.Settings != newConfig.Settings

	p.setConfiguration(newConfig)

	// Agents capture their settings on creation, so rebuild them all
	if changed && p.registry != nil {
		p.restartAgents()
	}

	return nil
}

// restartAgents stops every running agent and starts a fresh one for the
// same user with the active configuration.
func (p *Plugin) restartAgents() {
	for _, agent := range p.registry.List() {
		userID := agent.GetUserID()
		if err := p.registry.Unregister(userID); err != nil {
			p.API.LogWarn("Failed to stop agent", "userId", userID, "reason", "configuration changed", "error", err.Error())
		}

		if _, err := p.getOrCreateAgent(userID); err != nil {
			p.API.LogError("Failed to restart agent", "userId", userID, "error", err.Error())
			continue
		}
		p.API.LogInfo("Restarted agent", "userId", userID, "reason", "configuration changed")
	}
}
