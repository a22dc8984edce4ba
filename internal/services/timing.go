package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs how long a view-model action took for userID
func TrackTime(userID, action string, start time.Time) {
	log.WithFields(log.Fields{
		"user":   userID,
		"action": action,
	}).Debugf("took %d ms", time.Since(start).Milliseconds())
}
