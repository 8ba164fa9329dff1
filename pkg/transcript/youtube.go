package transcript

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/xhad/conceptube/internal/models"
)

// YouTubeSource loads video info and the caption transcript through the
// YouTube player API.
type YouTubeSource struct {
	client   *youtube.Client
	language string
}

func NewYouTubeSource(httpClient *http.Client, language string) *YouTubeSource {
	if language == "" {
		language = "en"
	}
	return &YouTubeSource{
		client:   &youtube.Client{HTTPClient: httpClient},
		language: language,
	}
}

func (s *YouTubeSource) Name() string {
	return "youtube"
}

func (s *YouTubeSource) Fetch(ctx context.Context, videoURL string) (*models.Transcript, error) {
	video, err := s.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	segments, err := s.client.GetTranscriptCtx(ctx, video, s.language)
	if err != nil {
		return nil, fmt.Errorf("get transcript for %s: %w", video.ID, err)
	}

	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := cleanContent(seg.Text); text != "" {
			lines = append(lines, text)
		}
	}

	info := models.VideoInfo{
		ID:          video.ID,
		Title:       video.Title,
		Author:      video.Author,
		Length:      int(video.Duration.Seconds()),
		Description: video.Description,
		ViewCount:   video.Views,
		PublishDate: video.PublishDate,
	}
	if n := len(video.Thumbnails); n > 0 {
		info.ThumbnailURL = video.Thumbnails[n-1].URL
	}

	return &models.Transcript{
		Video: info,
		Text:  strings.Join(lines, " "),
	}, nil
}
