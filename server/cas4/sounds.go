package cas4

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cas-4/mattermost-plugin-cas4/server/escalation"
)

// SoundPoster delivers audio files to a user and removes them again
type SoundPoster interface {
	PostSound(userID, fileName string, data []byte) (string, error)
	DeletePost(postID string) error
}

// AssetSoundLoader downloads audio cues from the server's asset directory
type AssetSoundLoader struct {
	http   *resty.Client
	userID string
	poster SoundPoster
}

var _ escalation.SoundLoader = (*AssetSoundLoader)(nil)

// NewAssetSoundLoader creates a loader for assets under assetsURL, played to userID
func NewAssetSoundLoader(assetsURL string, timeout time.Duration, userID string, poster SoundPoster) *AssetSoundLoader {
	client := resty.New().
		SetBaseURL(strings.TrimRight(assetsURL, "/")).
		SetTimeout(timeout)

	return &AssetSoundLoader{
		http:   client,
		userID: userID,
		poster: poster,
	}
}

// Load fetches {assets}/assets/sounds/<name>.mp3
func (l *AssetSoundLoader) Load(ctx context.Context, name string) (escalation.Sound, error) {
	fileName := name + ".mp3"
	resp, err := l.http.R().
		SetContext(ctx).
		Get("/assets/sounds/" + url.PathEscape(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to download sound %s: %w", fileName, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to download sound %s: unexpected HTTP status %d", fileName, resp.StatusCode())
	}

	return &postedSound{
		userID:   l.userID,
		fileName: fileName,
		data:     resp.Body(),
		poster:   l.poster,
	}, nil
}

var errSoundReleased = errors.New("sound already released")

// postedSound plays by posting the audio file to the user's direct channel
type postedSound struct {
	userID   string
	fileName string
	poster   SoundPoster

	mu       sync.Mutex
	data     []byte
	postID   string
	released bool
}

// Play posts the file once; later calls do nothing
func (s *postedSound) Play(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return errSoundReleased
	}
	if s.postID != "" {
		return nil
	}

	postID, err := s.poster.PostSound(s.userID, s.fileName, s.data)
	if err != nil {
		return fmt.Errorf("failed to post sound %s: %w", s.fileName, err)
	}
	s.postID = postID
	return nil
}

// Release deletes the posted file and drops the buffer. It is idempotent.
func (s *postedSound) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true
	s.data = nil

	if s.postID == "" {
		return nil
	}

	postID := s.postID
	s.postID = ""
	if err := s.poster.DeletePost(postID); err != nil {
		return fmt.Errorf("failed to delete sound post %s: %w", postID, err)
	}
	return nil
}
