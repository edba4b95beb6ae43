package poster

import (
	"fmt"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"

	"github.com/cas-4/mattermost-plugin-cas4/server/escalation"
	"github.com/cas-4/mattermost-plugin-cas4/server/formatter"
)

// soundMessage accompanies the audio cue of an in-vehicle escalation
const soundMessage = "🔊 Audio warning for the active alert"

// Poster delivers banners, audio cues and bot messages to a user's direct
// channel with the bot.
// This struct is stateless - it only holds immutable configuration (API and botID).
type Poster struct {
	api   plugin.API
	botID string
}

// New creates a new Poster instance.
func New(api plugin.API, botID string) *Poster {
	return &Poster{
		api:   api,
		botID: botID,
	}
}

var _ escalation.BannerPresenter = (*Poster)(nil)

// ShowBanner posts a formatted banner to the user's direct channel.
//
// Parameters:
//   - userID: The Mattermost user to notify
//   - banner: The rendered escalation banner
//
// Returns the post ID, used later to clear the banner.
func (p *Poster) ShowBanner(userID string, banner escalation.Banner) (string, error) {
	channelID, err := p.directChannel(userID)
	if err != nil {
		return "", err
	}

	post := p.newPost(channelID)
	post.AddProp("cas4_notification_id", banner.NotificationID)
	model.ParseSlackAttachment(post, []*model.SlackAttachment{formatter.FormatBanner(banner)})

	created, appErr := p.api.CreatePost(post)
	if appErr != nil {
		return "", fmt.Errorf("failed to post banner: %w", appErr)
	}
	return created.Id, nil
}

// ClearBanner removes a banner posted by ShowBanner.
func (p *Poster) ClearBanner(postID string) error {
	return p.DeletePost(postID)
}

// PostSound uploads an audio file and posts it to the user's direct channel.
//
// Returns the post ID, used later to remove the file.
func (p *Poster) PostSound(userID, fileName string, data []byte) (string, error) {
	channelID, err := p.directChannel(userID)
	if err != nil {
		return "", err
	}

	info, appErr := p.api.UploadFile(data, channelID, fileName)
	if appErr != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fileName, appErr)
	}

	post := p.newPost(channelID)
	post.Type = model.PostTypeDefault
	post.Message = soundMessage
	post.FileIds = model.StringArray{info.Id}

	created, appErr := p.api.CreatePost(post)
	if appErr != nil {
		return "", fmt.Errorf("failed to post %s: %w", fileName, appErr)
	}
	return created.Id, nil
}

// DeletePost removes a post created by the bot.
func (p *Poster) DeletePost(postID string) error {
	if appErr := p.api.DeletePost(postID); appErr != nil {
		return fmt.Errorf("failed to delete post %s: %w", postID, appErr)
	}
	return nil
}

// PostMessage sends a plain notice, such as the session expired prompt.
func (p *Poster) PostMessage(userID, message string) error {
	channelID, err := p.directChannel(userID)
	if err != nil {
		return err
	}

	post := p.newPost(channelID)
	model.ParseSlackAttachment(post, []*model.SlackAttachment{formatter.FormatSessionPrompt(message)})

	if _, appErr := p.api.CreatePost(post); appErr != nil {
		return fmt.Errorf("failed to post message: %w", appErr)
	}
	return nil
}

func (p *Poster) directChannel(userID string) (string, error) {
	channel, appErr := p.api.GetDirectChannel(userID, p.botID)
	if appErr != nil {
		return "", fmt.Errorf("failed to get direct channel for user %s: %w", userID, appErr)
	}
	return channel.Id, nil
}

func (p *Poster) newPost(channelID string) *model.Post {
	return &model.Post{
		UserId:    p.botID,
		ChannelId: channelID,
		Type:      model.PostTypeSlackAttachment,
		Props:     model.StringInterface{},
	}
}
