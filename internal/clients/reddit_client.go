package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Sachin7123/mindguard/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

var (
	redditClientInstance *RedditClient
	redditClientOnce     sync.Once
	redditRateLimitMutex sync.Mutex
)

type RedditClient struct {
	Config *clientcredentials.Config
	Client *http.Client
	mu     *sync.Mutex
}

func GetRedditClient() *RedditClient {
	redditClientOnce.Do(func() {
		oauthConf := &clientcredentials.Config{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			TokenURL:     REDDIT_AUTH_URL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}

		redditClientInstance = &RedditClient{
			Config: oauthConf,
			Client: oauthConf.Client(context.Background()),
			mu:     &sync.Mutex{},
		}
	})

	return redditClientInstance
}

func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Client = rc.Config.Client(context.Background())
}

// FetchHotPosts pulls the hot listing of one subreddit and maps it onto
// RawPost records, skipping stickied posts. An absent created_utc becomes
// the null timestamp.
func (rc *RedditClient) FetchHotPosts(subreddit string, limit int) ([]models.RawPost, error) {
	body, err := rc.fetchListing(subreddit, limit)
	if err != nil {
		return nil, err
	}

	var listing models.RedditAPIResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to decode listing: %w", err)
	}

	posts := make([]models.RawPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		data := child.Data
		if data.Stickied {
			continue
		}

		post := models.RawPost{
			PostID:    data.Name,
			Title:     data.Title,
			Body:      data.Selftext,
			Score:     data.Score,
			URL:       data.URL,
			Subreddit: data.Subreddit,
		}
		if data.CreatedUTC > 0 {
			post.CreatedUTC = time.Unix(int64(data.CreatedUTC), 0).UTC()
		}
		posts = append(posts, post)
	}

	slog.Info("[RedditClient] Fetched subreddit listing",
		slog.String("subreddit", subreddit),
		slog.Int("posts", len(posts)))
	return posts, nil
}

func (rc *RedditClient) fetchListing(subreddit string, limit int) ([]byte, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/hot", REDDIT_API_URL, subreddit))
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Add("limit", strconv.Itoa(limit))
	parsedUrl.RawQuery = queryParams.Encode()

	redditRateLimitMutex.Lock()
	time.Sleep(INITIAL_BACKOFF)
	redditRateLimitMutex.Unlock()

	req, err := http.NewRequest("GET", parsedUrl.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
		rc.RefreshClient()
		return rc.fetchListing(subreddit, limit)
	case http.StatusTooManyRequests:
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff")
		return rc.retryWithBackoff(subreddit, limit)
	case http.StatusOK:
		bytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return bytes, nil
	}
	return nil, fmt.Errorf("[RedditClient] Unexpected status %d for r/%s", resp.StatusCode, subreddit)
}

func (rc *RedditClient) retryWithBackoff(subreddit string, limit int) ([]byte, error) {
	backoff := INITIAL_BACKOFF
	for i := 1; i < MAX_RETRIES; i++ {
		slog.Warn("[RedditClient] Retrying request",
			slog.Int("attempt", i), slog.Duration("backoff", backoff))

		time.Sleep(backoff)

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}

		data, err := rc.fetchListing(subreddit, limit)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("[RedditClient] Max retries reached request failed")
}
