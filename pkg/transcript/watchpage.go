package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kkdai/youtube/v2"
	"github.com/xhad/conceptube/internal/models"
	"golang.org/x/time/rate"
)

type WatchPageConfig struct {
	WatchURL  string
	Language  string
	RateLimit float64 // requests per second
	Timeout   time.Duration
	UserAgent string
}

// WatchPageSource scrapes the public watch page: video details and caption
// tracks come from the embedded player response, the transcript from the
// chosen track's timedtext XML.
type WatchPageSource struct {
	config  WatchPageConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWatchPageSource(config WatchPageConfig) (*WatchPageSource, error) {
	if config.WatchURL == "" {
		config.WatchURL = "https://www.youtube.com/watch"
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	}

	if _, err := url.Parse(config.WatchURL); err != nil {
		return nil, err
	}

	return &WatchPageSource{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

func (s *WatchPageSource) Name() string {
	return "watchpage"
}

func (s *WatchPageSource) Fetch(ctx context.Context, videoURL string) (*models.Transcript, error) {
	id, err := youtube.ExtractVideoID(videoURL)
	if err != nil {
		return nil, fmt.Errorf("extract video id: %w", err)
	}

	pageURL, err := url.Parse(s.config.WatchURL)
	if err != nil {
		return nil, err
	}
	q := pageURL.Query()
	q.Set("v", id)
	pageURL.RawQuery = q.Encode()

	body, err := s.get(ctx, pageURL.String())
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	info := extractMetaInfo(doc)
	info.ID = id

	player, err := extractPlayerResponse(doc)
	if err != nil {
		return nil, err
	}
	player.mergeInto(&info)

	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", player.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	track := pickTrack(tracks, s.config.Language)

	text, err := s.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	return &models.Transcript{Video: info, Text: text}, nil
}

func (s *WatchPageSource) get(ctx context.Context, urlStr string) ([]byte, error) {
	// Apply rate limiting
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept-Language", s.config.Language+";q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func (s *WatchPageSource) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	body, err := s.get(ctx, baseURL)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	lines := append(tt.Texts, tt.Body.Paragraphs...)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := cleanContent(html.UnescapeString(line.Text)); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("empty caption track")
	}
	return strings.Join(parts, " "), nil
}

type timedText struct {
	Texts []timedLine `xml:"text"`
	Body  struct {
		Paragraphs []timedLine `xml:"p"`
	} `xml:"body"`
}

type timedLine struct {
	Text string `xml:",chardata"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	VideoDetails *struct {
		VideoID          string `json:"videoId"`
		Title            string `json:"title"`
		Author           string `json:"author"`
		LengthSeconds    string `json:"lengthSeconds"`
		ShortDescription string `json:"shortDescription"`
		ViewCount        string `json:"viewCount"`
		Thumbnail        struct {
			Thumbnails []struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// mergeInto fills info from videoDetails, which is more reliable than the
// page's meta tags.
func (p *playerResponse) mergeInto(info *models.VideoInfo) {
	d := p.VideoDetails
	if d == nil {
		return
	}
	if d.Title != "" {
		info.Title = d.Title
	}
	if d.Author != "" {
		info.Author = d.Author
	}
	if n, err := strconv.Atoi(d.LengthSeconds); err == nil {
		info.Length = n
	}
	if d.ShortDescription != "" {
		info.Description = d.ShortDescription
	}
	if n, err := strconv.Atoi(d.ViewCount); err == nil {
		info.ViewCount = n
	}
	if thumbs := d.Thumbnail.Thumbnails; len(thumbs) > 0 {
		info.ThumbnailURL = thumbs[len(thumbs)-1].URL
	}
}

const playerResponseMarker = "ytInitialPlayerResponse = "

func extractPlayerResponse(doc *goquery.Document) (*playerResponse, error) {
	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		script := sel.Text()
		idx := strings.Index(script, playerResponseMarker)
		if idx < 0 {
			return true
		}
		raw = extractJSONObject(script[idx+len(playerResponseMarker):])
		return raw == nil
	})
	if raw == nil {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &player, nil
}

// extractJSONObject returns the balanced {...} object at the start of s,
// skipping braces inside string literals.
func extractJSONObject(s string) []byte {
	s = strings.TrimLeft(s, " \t\n")
	if !strings.HasPrefix(s, "{") {
		return nil
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return []byte(s[:i+1])
			}
		}
	}
	return nil
}

func extractMetaInfo(doc *goquery.Document) models.VideoInfo {
	content := func(selector string) string {
		v, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(v)
	}

	info := models.VideoInfo{
		Title:        content(`meta[name="title"]`),
		Author:       content(`span[itemprop="author"] link[itemprop="name"]`),
		Description:  content(`meta[name="description"]`),
		ThumbnailURL: content(`meta[property="og:image"]`),
		Length:       parseISODuration(content(`meta[itemprop="duration"]`)),
	}
	if info.Title == "" {
		info.Title = strings.TrimSuffix(strings.TrimSpace(doc.Find("title").Text()), " - YouTube")
	}
	if views, err := strconv.Atoi(content(`meta[itemprop="interactionCount"]`)); err == nil {
		info.ViewCount = views
	}
	for _, sel := range []string{`meta[itemprop="datePublished"]`, `meta[itemprop="uploadDate"]`} {
		if v := content(sel); v != "" {
			if t, err := parseDate(v); err == nil {
				info.PublishDate = t
				break
			}
		}
	}
	return info
}

var isoDurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts "PT1H2M3S" to seconds; anything else is 0.
func parseISODuration(s string) int {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += n * mult
	}
	return total
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// pickTrack prefers a manual track in lang, then an auto-generated one in
// lang, then any English track, then the first track.
func pickTrack(tracks []captionTrack, lang string) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == lang && t.Kind != "asr" {
			return t
		}
	}
	for _, t := range tracks {
		if t.LanguageCode == lang {
			return t
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

func cleanContent(content string) string {
	// Remove extra whitespace
	content = strings.Join(strings.Fields(content), " ")

	// Drop sound annotations such as [Music]
	content = annotationRE.ReplaceAllString(content, "")

	return strings.TrimSpace(strings.Join(strings.Fields(content), " "))
}

var annotationRE = regexp.MustCompile(`\[(?:Music|Applause|Laughter)\]`)
