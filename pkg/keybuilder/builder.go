package keybuilder

import (
	"fmt"
)

const (
	Prefix   string = "seqchat"
	Delivery string = "delivery"
)

// RedisDeliveryKeyBuild returns the cache key of an event's delivery record.
func RedisDeliveryKeyBuild(eventID string) string {
	return fmt.Sprintf("%s:%s:%s", Prefix, Delivery, eventID)
}
