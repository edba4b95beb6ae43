package main

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"
	"github.com/mattermost/mattermost/server/public/pluginapi"
	"github.com/pkg/errors"

	"github.com/cas-4/mattermost-plugin-cas4/server/cas4"
	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
	"github.com/cas-4/mattermost-plugin-cas4/server/poster"
)

// pluginID is the manifest ID, used to build links into the plugin's routes
const pluginID = "com.cas4.mattermost-plugin-cas4"

// kvListPageSize is the page size used when scanning stored credentials
const kvListPageSize = 100

// Plugin implements the interface expected by the Mattermost server to communicate between the server and plugin processes.
type Plugin struct {
	plugin.MattermostPlugin

	// client is the Mattermost server API client.
	client *pluginapi.Client

	// configurationLock synchronizes access to the configuration.
	configurationLock sync.RWMutex

	// configuration is the active plugin configuration. Consult getConfiguration and
	// setConfiguration for usage.
	configuration *configuration

	// registry holds one running agent per Mattermost user.
	registry *hazard.Registry

	// poster delivers banners, sounds and messages through the bot.
	poster *poster.Poster

	// playback is shared across all agents so audio is not replayed after a restart
	playback *PlaybackLedger

	// agentLock serializes agent creation so a user never gets two agents.
	agentLock sync.Mutex

	// newAgent builds the agent of a user. Tests replace it.
	newAgent func(userID string) (hazard.Agent, error)
}

// OnActivate is invoked when the plugin is activated. If an error is returned, the plugin will be deactivated.
func (p *Plugin) OnActivate() error {
	p.client = pluginapi.NewClient(p.API, p.Driver)
	p.registry = hazard.NewRegistry()
	p.playback = NewPlaybackLedger(p.client)
	if p.newAgent == nil {
		p.newAgent = p.buildAgent
	}

	config := p.getConfiguration()

	botID, err := p.API.EnsureBotUser(&model.Bot{
		Username:    config.BotUsername,
		DisplayName: config.BotDisplayName,
		Description: "Bot delivering CAS4 hazard alerts to Mattermost users",
	})
	if err != nil {
		return errors.Wrap(err, "failed to ensure bot user")
	}

	p.API.LogInfo("Bot user initialized", "botID", botID, "username", config.BotUsername)

	p.poster = poster.New(p.API, botID)

	if err := p.restoreAgents(); err != nil {
		p.API.LogError("Failed to restore agents", "error", err.Error())
	}

	return nil
}

// OnDeactivate is invoked when the plugin is deactivated.
func (p *Plugin) OnDeactivate() error {
	if p.registry != nil {
		if err := p.registry.UnregisterAll(); err != nil {
			p.API.LogError("Failed to unregister all agents during deactivation", "error", err.Error())
			return err
		}
	}

	if p.playback != nil {
		p.playback.Stop()
	}

	return nil
}

// restoreAgents starts an agent for every user with stored credentials.
// Failures for individual users are logged and skipped.
func (p *Plugin) restoreAgents() error {
	var userIDs []string
	for page := 0; ; page++ {
		keys, appErr := p.API.KVList(page, kvListPageSize)
		if appErr != nil {
			return errors.Wrap(appErr, "failed to list stored credentials")
		}

		for _, key := range keys {
			if userID, ok := cas4.UserIDFromCredentialKey(key); ok {
				userIDs = append(userIDs, userID)
			}
		}

		if len(keys) < kvListPageSize {
			break
		}
	}

	for _, userID := range userIDs {
		if _, err := p.getOrCreateAgent(userID); err != nil {
			p.API.LogError("Failed to restore agent", "userId", userID, "error", err.Error())
		}
	}

	p.API.LogInfo("Restored agents", "count", len(userIDs))
	return nil
}

// getOrCreateAgent returns the running agent of a user, creating and
// starting one on first use.
func (p *Plugin) getOrCreateAgent(userID string) (hazard.Agent, error) {
	p.agentLock.Lock()
	defer p.agentLock.Unlock()

	if agent := p.registry.Get(userID); agent != nil {
		return agent, nil
	}

	agent, err := p.newAgent(userID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create agent for user %s", userID)
	}

	if err := p.registry.Register(agent); err != nil {
		return nil, errors.Wrap(err, "failed to register agent")
	}

	if err := agent.Start(); err != nil {
		if unregisterErr := p.registry.Unregister(userID); unregisterErr != nil {
			p.API.LogWarn("Failed to unregister agent", "userId", userID, "error", unregisterErr.Error())
		}
		return nil, errors.Wrapf(err, "failed to start agent for user %s", userID)
	}

	return agent, nil
}

// buildAgent wires a production agent for a user
func (p *Plugin) buildAgent(userID string) (hazard.Agent, error) {
	agent, err := cas4.New(userID, p.getConfiguration().Settings, cas4.Dependencies{
		API:       p.API,
		Messenger: p.poster,
		Gate:      p.playback,
		Location:  func() *time.Location { return p.userLocation(userID) },
		DetailURL: p.notificationURL,
		Logger:    &p.client.Log,
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// userLocation resolves the user's Mattermost timezone, falling back to UTC
func (p *Plugin) userLocation(userID string) *time.Location {
	user, appErr := p.API.GetUser(userID)
	if appErr != nil {
		p.API.LogWarn("Failed to get user for timezone", "userId", userID, "error", appErr.Error())
		return time.UTC
	}

	name := model.GetPreferredTimezone(user.Timezone)
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		p.API.LogWarn("Unknown user timezone", "userId", userID, "timezone", name)
		return time.UTC
	}
	return loc
}

// notificationURL links a banner to the notification detail route
func (p *Plugin) notificationURL(notificationID string) string {
	siteURL := ""
	if config := p.API.GetConfig(); config != nil && config.ServiceSettings.SiteURL != nil {
		siteURL = strings.TrimRight(*config.ServiceSettings.SiteURL, "/")
	}
	return fmt.Sprintf("%s/plugins/%s/api/v1/notifications/%s", siteURL, pluginID, url.PathEscape(notificationID))
}

// See https://developers.mattermost.com/extend/plugins/server/reference/
