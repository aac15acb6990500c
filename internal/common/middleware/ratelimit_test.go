package middleware

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(3, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("request %d should have been allowed", i)
		}
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected bucket to be empty")
	}
}

func TestSlidingWindowCapsRequests(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, 2)
	ctx := context.Background()

	if !sw.Allow(ctx) || !sw.Allow(ctx) {
		t.Fatalf("first two requests should pass")
	}
	if sw.Allow(ctx) {
		t.Fatalf("third request within window should be rejected")
	}
}
