package voting

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		requested string
		want      Outcome
	}{
		{"first upvote", None, Up, Outcome{Next: Up, UpDelta: 1}},
		{"first downvote", None, Down, Outcome{Next: Down, DownDelta: 1}},
		{"remove upvote", Up, Up, Outcome{Next: None, UpDelta: -1}},
		{"remove downvote", Down, Down, Outcome{Next: None, DownDelta: -1}},
		{"switch up to down", Up, Down, Outcome{Next: Down, UpDelta: -1, DownDelta: 1}},
		{"switch down to up", Down, Up, Outcome{Next: Up, UpDelta: 1, DownDelta: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.current, tt.requested)
			if got != tt.want {
				t.Errorf("Apply(%q, %q) = %+v, want %+v", tt.current, tt.requested, got, tt.want)
			}
		})
	}
}

// Applying the same request twice must always round-trip back to the
// starting counters, that is what makes retried toggles safe.
func TestApplyDoubleToggleIsNeutral(t *testing.T) {
	for _, start := range []string{None, Up, Down} {
		for _, req := range []string{Up, Down} {
			first := Apply(start, req)
			second := Apply(first.Next, req)

			if second.Next != start {
				t.Errorf("toggle %q twice from %q ended at %q, want %q", req, start, second.Next, start)
			}
			if first.UpDelta+second.UpDelta != 0 || first.DownDelta+second.DownDelta != 0 {
				t.Errorf("toggle %q twice from %q leaked deltas: %+v then %+v", req, start, first, second)
			}
		}
	}
}

func TestValid(t *testing.T) {
	for _, v := range []string{Up, Down} {
		if !Valid(v) {
			t.Errorf("Valid(%q) = false, want true", v)
		}
	}
	for _, v := range []string{None, "like", "UPVOTE", "up"} {
		if Valid(v) {
			t.Errorf("Valid(%q) = true, want false", v)
		}
	}
}
