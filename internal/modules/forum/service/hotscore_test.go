package service

import (
	"testing"
	"time"
)

func TestHotScoreNeverNegative(t *testing.T) {
	tests := []struct {
		name                     string
		up, down, replies, views int
		age                      time.Duration
	}{
		{"all zero", 0, 0, 0, 0, 0},
		{"heavily downvoted", 0, 50, 0, 0, time.Hour},
		{"downvotes outweigh views", 0, 10, 0, 3, 2 * time.Hour},
		{"negative age clock skew", 1, 0, 0, 0, -time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HotScore(tt.up, tt.down, tt.replies, tt.views, tt.age); got < 0 {
				t.Errorf("HotScore = %v, want >= 0", got)
			}
		})
	}
}

func TestHotScoreGrowsWithEngagement(t *testing.T) {
	age := 4 * time.Hour
	base := HotScore(10, 2, 5, 100, age)

	if moreVotes := HotScore(11, 2, 5, 100, age); moreVotes <= base {
		t.Errorf("extra upvote did not raise score: %v <= %v", moreVotes, base)
	}
	if moreReplies := HotScore(10, 2, 6, 100, age); moreReplies <= base {
		t.Errorf("extra reply did not raise score: %v <= %v", moreReplies, base)
	}
	if moreViews := HotScore(10, 2, 5, 101, age); moreViews <= base {
		t.Errorf("extra view did not raise score: %v <= %v", moreViews, base)
	}
	if downvoted := HotScore(10, 3, 5, 100, age); downvoted >= base {
		t.Errorf("extra downvote did not lower score: %v >= %v", downvoted, base)
	}
}

func TestHotScoreDecaysWithAge(t *testing.T) {
	fresh := HotScore(10, 0, 3, 50, time.Hour)
	day := HotScore(10, 0, 3, 50, 24*time.Hour)
	week := HotScore(10, 0, 3, 50, 7*24*time.Hour)

	if !(fresh > day && day > week) {
		t.Errorf("score did not decay monotonically: 1h=%v 24h=%v 168h=%v", fresh, day, week)
	}
	if week <= 0 {
		t.Errorf("old thread with engagement should keep a positive score, got %v", week)
	}
}

func TestHotScoreReplyOutweighsVote(t *testing.T) {
	age := 2 * time.Hour
	withReply := HotScore(0, 0, 1, 0, age)
	withVote := HotScore(1, 0, 0, 0, age)

	if withReply <= withVote {
		t.Errorf("reply should weigh more than a single vote: %v <= %v", withReply, withVote)
	}
}
