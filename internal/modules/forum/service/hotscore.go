package service

import (
	"math"
	"time"
)

// Hot score weights: net votes count five-fold, replies thirty-fold, raw
// views once. The sum decays by an increasing power of thread age so fresh
// activity outranks stale popularity.
const (
	hotVoteWeight  = 5.0
	hotReplyWeight = 30.0
	hotAgeOffset   = 2.0
	hotAgeGravity  = 1.8
)

// HotScore computes the decaying popularity score for a thread. The score is
// never negative, grows with net votes and replies at fixed age, and shrinks
// as age grows.
func HotScore(upvotes, downvotes, replies, views int, age time.Duration) float64 {
	net := float64(upvotes - downvotes)

	engagement := net*hotVoteWeight + float64(replies)*hotReplyWeight + float64(views)
	if engagement < 0 {
		engagement = 0
	}

	ageHours := age.Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	return engagement / math.Pow(ageHours+hotAgeOffset, hotAgeGravity)
}
