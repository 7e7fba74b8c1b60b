package keybuilder

import "testing"

func TestRedisDeliveryKeyBuild(t *testing.T) {
	if got := RedisDeliveryKeyBuild("abc123"); got != "seqchat:delivery:abc123" {
		t.Fatalf("got %q", got)
	}
}
