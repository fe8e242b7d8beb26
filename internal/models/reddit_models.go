package models

import "time"

// RawPost is one record as produced by the collector. Immutable once
// written to the raw dataset.
type RawPost struct {
	PostID     string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"text"`
	Score      int       `json:"score"`
	URL        string    `json:"url"`
	CreatedUTC time.Time `json:"created_utc"` // zero value when created_utc was absent or unparseable
	Subreddit  string    `json:"subreddit"`
}

type RedditAPIResponse struct {
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string           `json:"after"`
	Children []RedditAPIChild `json:"children"`
}

type RedditAPIChild struct {
	Data RedditAPIChildData `json:"data"`
}

type RedditAPIChildData struct {
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Score      int     `json:"score"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
	Name       string  `json:"name"`
	ID         string  `json:"id"`
}
