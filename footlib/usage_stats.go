package footlib

import (
	"encoding/json"
	"sync"
	"time"
)

// UsageStats tracks how often some external dependency (geolocation
// provider or notifier) was used and how often it has failed.
type UsageStats struct {
	Name string
	Kind string

	mutex        sync.Mutex
	lastUsed     time.Time
	lastFailed   time.Time
	successCount uint64
	failureCount uint64
}

func (u *UsageStats) Used(err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	if err == nil {
		u.successCount++
	} else {
		u.lastFailed = now
		u.failureCount++
	}
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime, lastFailedTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	if !u.lastFailed.IsZero() {
		lastFailedTime = u.lastFailed.Unix()
	}

	rawStruct := struct {
		Name         string `json:"name"`
		Kind         string `json:"kind"`
		LastUsed     int64  `json:"last_used"`
		LastFailed   int64  `json:"last_failed"`
		SuccessCount uint64 `json:"success_count"`
		FailureCount uint64 `json:"failure_count"`
	}{
		Name:         u.Name,
		Kind:         u.Kind,
		LastUsed:     lastUsedTime,
		LastFailed:   lastFailedTime,
		SuccessCount: u.successCount,
		FailureCount: u.failureCount,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
