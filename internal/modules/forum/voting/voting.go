// Package voting holds the three-state vote toggle as a pure transition
// table, independent of storage. A user's vote on a votable is none, upvote
// or downvote; requesting the same vote again removes it, requesting the
// opposite vote switches it.
package voting

const (
	None = ""
	Up   = "upvote"
	Down = "downvote"
)

// Outcome describes the result of applying a vote request: the caller's next
// vote state and the counter deltas to apply to the parent votable.
type Outcome struct {
	Next      string
	UpDelta   int
	DownDelta int
}

// Apply resolves {current, requested} into the next state and counter
// deltas. requested must be Up or Down; current may be None.
func Apply(current, requested string) Outcome {
	switch {
	case current == None:
		out := Outcome{Next: requested}
		if requested == Up {
			out.UpDelta = 1
		} else {
			out.DownDelta = 1
		}
		return out

	case current == requested:
		// Un-vote.
		out := Outcome{Next: None}
		if requested == Up {
			out.UpDelta = -1
		} else {
			out.DownDelta = -1
		}
		return out

	default:
		// Switch sides.
		out := Outcome{Next: requested}
		if requested == Up {
			out.UpDelta = 1
			out.DownDelta = -1
		} else {
			out.UpDelta = -1
			out.DownDelta = 1
		}
		return out
	}
}

// Valid reports whether v names a vote a client may request.
func Valid(v string) bool {
	return v == Up || v == Down
}
