package navigate

import "testing"

func TestStep(t *testing.T) {
	subset := []int{2, 5, 7}

	tests := []struct {
		name    string
		subset  []int
		current int
		dir     Direction
		want    int
		wantOK  bool
	}{
		{"next from middle", subset, 5, Next, 7, true},
		{"next from last", subset, 7, Next, 7, false},
		{"prev from first", subset, 2, Prev, 2, false},
		{"prev from middle", subset, 5, Prev, 2, true},
		{"first", subset, 7, First, 2, true},
		{"last", subset, 2, Last, 7, true},
		{"next from outside subset", subset, 3, Next, 5, true},
		{"prev from outside subset", subset, 6, Prev, 5, true},
		{"next past the end", subset, 9, Next, 9, false},
		{"single element first", []int{4}, 4, First, 4, false},
		{"single element next", []int{4}, 1, Next, 1, false},
		{"empty subset", nil, 0, Last, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Step(tt.subset, tt.current, tt.dir)
			if ok != tt.wantOK {
				t.Fatalf("Step() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Step() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	tests := []struct {
		dir  Direction
		want int
	}{
		{First, 0},
		{Prev, 2},
		{Next, 4},
		{Last, 9},
	}
	for _, tt := range tests {
		if got := Target(3, 10, tt.dir); got != tt.want {
			t.Errorf("Target(3, 10, %s) = %d, want %d", tt.dir, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{First, Prev, Next, Last} {
		got, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", d, err)
		}
		if got != d {
			t.Errorf("ParseDirection(%q) = %v", d, got)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
}
