package segment

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestPickStreaks(t *testing.T) {
	tests := []struct {
		name         string
		triggers     []int
		outer, inner int
		want         []Region
	}{
		{name: "empty", triggers: nil, want: nil},
		{name: "single", triggers: []int{100}, outer: 10, want: []Region{{90, 110}}},
		{
			name:     "split on gap",
			triggers: []int{0, 10, 20, 100, 110},
			outer:    5, inner: 50,
			want: []Region{{-5, 25}, {95, 115}},
		},
		{
			name:     "gap equal to inner splits",
			triggers: []int{0, 50},
			inner:    50,
			want:     []Region{{0, 0}, {50, 50}},
		},
		{
			name:     "gap below inner joins",
			triggers: []int{0, 49},
			inner:    50,
			want:     []Region{{0, 49}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickStreaks(tt.triggers, tt.outer, tt.inner); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PickStreaks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPickFrames(t *testing.T) {
	tests := []struct {
		name        string
		triggers    []int
		left, right int
		want        []Region
	}{
		{name: "empty", want: nil},
		{name: "single", triggers: []int{100}, left: 10, right: 20, want: []Region{{90, 120}}},
		{name: "overlap merges", triggers: []int{100, 115}, left: 10, right: 20, want: []Region{{90, 135}}},
		{name: "touching splits", triggers: []int{100, 130}, left: 10, right: 20, want: []Region{{90, 120}, {120, 150}}},
		{name: "disjoint", triggers: []int{0, 1000}, left: 1, right: 1, want: []Region{{-1, 1}, {999, 1001}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickFrames(tt.triggers, tt.left, tt.right); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PickFrames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	in := []Region{{-5, 10}, {20, 30}, {95, 120}, {130, 140}}
	want := []Region{{0, 10}, {20, 30}, {95, 100}}
	if got := Clamp(in, 100); !reflect.DeepEqual(got, want) {
		t.Fatalf("Clamp() = %v, want %v", got, want)
	}
	if in[0].Start != -5 {
		t.Fatal("Clamp() modified its input")
	}
	if got := (Region{5, 3}).Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
}

func TestReadPitchFile(t *testing.T) {
	src := `# header
0 100.5 200
10 101:0.95 202:0.91

# next curve
40 98
55
`
	got, err := ReadPitchFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadPitchFile() error = %v", err)
	}
	want := []Point{{0, 100.5}, {10, 101}, {40, 98}, {55, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadPitchFile() = %v, want %v", got, want)
	}
	if tr := Triggers(got); !reflect.DeepEqual(tr, []int{0, 10, 40, 55}) {
		t.Fatalf("Triggers() = %v", tr)
	}
}

func TestReadPitchFileErrors(t *testing.T) {
	for _, src := range []string{"x 100\n", "10 abc\n"} {
		if _, err := ReadPitchFile(strings.NewReader(src)); !errors.Is(err, ErrSyntax) {
			t.Fatalf("ReadPitchFile(%q) error = %v, want ErrSyntax", src, err)
		}
	}
}
