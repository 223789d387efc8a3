package deck

import "testing"

func TestCompareNumeric(t *testing.T) {
	const top = Rank(10)

	if Compare(7, 3, top) <= 0 {
		t.Error("7 should beat 3")
	}
	if Compare(3, 7, top) >= 0 {
		t.Error("3 should lose to 7")
	}
	if Compare(5, 5, top) != 0 {
		t.Error("equal ranks should tie")
	}
}

func TestCompareJoker(t *testing.T) {
	const top = Rank(13)

	tests := []struct {
		name string
		a, b Rank
		want int // sign only
	}{
		{"joker beats top rank", Joker, 13, 1},
		{"top rank loses to joker", 13, Joker, -1},
		{"joker loses to lowest rank", Joker, 1, -1},
		{"joker loses to middle rank", Joker, 7, -1},
		{"middle rank beats joker", 7, Joker, 1},
		{"joker ties joker", Joker, Joker, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.a, tt.b, top)
			switch {
			case tt.want > 0 && got <= 0:
				t.Errorf("Compare(%v, %v) = %d, want positive", tt.a, tt.b, got)
			case tt.want < 0 && got >= 0:
				t.Errorf("Compare(%v, %v) = %d, want negative", tt.a, tt.b, got)
			case tt.want == 0 && got != 0:
				t.Errorf("Compare(%v, %v) = %d, want 0", tt.a, tt.b, got)
			}
		})
	}
}

func TestRankString(t *testing.T) {
	if NoCard.String() != "-" {
		t.Errorf("NoCard string: got %q", NoCard.String())
	}
	if Joker.String() != "Jo" {
		t.Errorf("Joker string: got %q", Joker.String())
	}
	if Rank(10).String() != "10" {
		t.Errorf("Rank(10) string: got %q", Rank(10).String())
	}
}
