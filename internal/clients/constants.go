package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "mindguard-collector/0.1 (+https://github.com/Sachin7123/mindguard)"
)
