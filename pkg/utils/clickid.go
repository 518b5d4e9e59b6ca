package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ClickIDPrefix is the leading segment of every issued click identity.
const ClickIDPrefix = "mc"

var (
	tokenMu   sync.Mutex
	lastToken int64
)

// NewClickID builds a click identity of the form mc_<campaign>_<token>.
// The token is the issue time in milliseconds, bumped under a lock so that
// concurrent calls always yield strictly increasing tokens even within the
// same millisecond.
func NewClickID(campaignID string) string {
	tokenMu.Lock()
	token := time.Now().UnixMilli()
	if token <= lastToken {
		token = lastToken + 1
	}
	lastToken = token
	tokenMu.Unlock()

	return fmt.Sprintf("%s_%s_%d", ClickIDPrefix, campaignID, token)
}

// CampaignFromClickID extracts the campaign segment from a click identity.
// Campaign ids may themselves contain underscores, so the token is the part
// after the last separator.
func CampaignFromClickID(clickID string) (string, bool) {
	if !strings.HasPrefix(clickID, ClickIDPrefix+"_") {
		return "", false
	}
	rest := strings.TrimPrefix(clickID, ClickIDPrefix+"_")
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return "", false
	}
	return rest[:idx], true
}

// NewRequestID generates a UUID used to tag webhook and API calls for tracing.
func NewRequestID() string {
	return uuid.NewString()
}
