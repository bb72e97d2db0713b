package piano

import (
	"errors"
	"testing"

	"github.com/ayusman/handpiano/internal/detector"
)

// pose returns an open hand with the given fingers curled.
func pose(handedness string, curled ...Finger) detector.HandLandmarks {
	h := detector.OpenHandLandmarks(handedness)
	fist := detector.FistLandmarks(handedness)
	for _, f := range curled {
		h.Points[f.Tip()] = fist.Points[f.Tip()]
	}
	return h
}

// thumbAt places the thumb tip and IP joint at the given x coordinates.
func thumbAt(tipX, refX float64) []detector.Point3D {
	pts := detector.OpenHandLandmarks(detector.HandednessRight).Points
	pts[detector.ThumbTip].X = tipX
	pts[detector.ThumbIP].X = refX
	return pts
}

func TestClassify_Presets(t *testing.T) {
	tests := []struct {
		name  string
		hand  Hand
		input detector.HandLandmarks
		want  Curl
	}{
		{"right open", HandRight, detector.OpenHandLandmarks(detector.HandednessRight), Curl{}},
		{"left open", HandLeft, detector.OpenHandLandmarks(detector.HandednessLeft), Curl{}},
		{"right fist", HandRight, detector.FistLandmarks(detector.HandednessRight), Curl{true, true, true, true, true}},
		{"left fist", HandLeft, detector.FistLandmarks(detector.HandednessLeft), Curl{true, true, true, true, true}},
		{"right index only", HandRight, pose(detector.HandednessRight, Index), Curl{Index: true}},
		{"left thumb and pinky", HandLeft, pose(detector.HandednessLeft, Thumb, Pinky), Curl{Thumb: true, Pinky: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.hand, tt.input.Points)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Thumb(t *testing.T) {
	tests := []struct {
		name       string
		hand       Hand
		tipX, refX float64
		want       bool
	}{
		{"right tip left of IP is extended", HandRight, 0.30, 0.40, false},
		{"right tip right of IP is curled", HandRight, 0.50, 0.40, true},
		{"right tip level with IP is curled", HandRight, 0.40, 0.40, true},
		{"left tip right of IP is extended", HandLeft, 0.50, 0.40, false},
		{"left tip left of IP is curled", HandLeft, 0.30, 0.40, true},
		{"left tip level with IP is curled", HandLeft, 0.40, 0.40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.hand, thumbAt(tt.tipX, tt.refX))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got[Thumb] != tt.want {
				t.Errorf("thumb curled = %v, want %v", got[Thumb], tt.want)
			}
		})
	}
}

func TestClassify_ThumbAntisymmetric(t *testing.T) {
	xs := []float64{0, 0.1, 0.25, 0.4999, 0.5, 0.5001, 0.75, 1}

	for _, tipX := range xs {
		for _, refX := range xs {
			if tipX == refX {
				continue
			}
			pts := thumbAt(tipX, refX)
			right, err := Classify(HandRight, pts)
			if err != nil {
				t.Fatalf("Classify(right) error = %v", err)
			}
			left, err := Classify(HandLeft, pts)
			if err != nil {
				t.Fatalf("Classify(left) error = %v", err)
			}
			if right[Thumb] == left[Thumb] {
				t.Errorf("tip.x=%v ref.x=%v: right=%v left=%v, want opposite", tipX, refX, right[Thumb], left[Thumb])
			}
		}
	}
}

func TestClassify_Fingers(t *testing.T) {
	tests := []struct {
		name       string
		tipY, refY float64
		want       bool
	}{
		{"tip above PIP is extended", 0.35, 0.40, false},
		{"tip below PIP is curled", 0.45, 0.40, true},
		{"tip level with PIP is extended", 0.40, 0.40, false},
		{"image edges", 1.0, 0.0, true},
	}

	for _, f := range Fingers[Index:] {
		for _, tt := range tests {
			t.Run(f.String()+"/"+tt.name, func(t *testing.T) {
				pts := detector.OpenHandLandmarks(detector.HandednessRight).Points
				pts[f.Tip()].Y = tt.tipY
				pts[f.Ref()].Y = tt.refY

				for _, h := range Hands {
					got, err := Classify(h, pts)
					if err != nil {
						t.Fatalf("Classify() error = %v", err)
					}
					if got[f] != tt.want {
						t.Errorf("%s %s curled = %v, want %v", h, f, got[f], tt.want)
					}
				}
			})
		}
	}
}

func TestClassify_IgnoresZ(t *testing.T) {
	pts := detector.OpenHandLandmarks(detector.HandednessRight).Points
	for i := range pts {
		pts[i].Z = -42
	}
	got, err := Classify(HandRight, pts)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != (Curl{}) {
		t.Errorf("Classify() = %v, want all extended", got)
	}
}

func TestClassify_LandmarkCount(t *testing.T) {
	for _, n := range []int{0, 20, 22} {
		_, err := Classify(HandRight, make([]detector.Point3D, n))
		if !errors.Is(err, ErrLandmarkCount) {
			t.Errorf("%d points: error = %v, want ErrLandmarkCount", n, err)
		}
	}
}

func TestClassify_UnknownHand(t *testing.T) {
	_, err := Classify(Hand(7), make([]detector.Point3D, detector.NumLandmarks))
	if !errors.Is(err, ErrUnknownHand) {
		t.Errorf("error = %v, want ErrUnknownHand", err)
	}
}

func TestFingerJoints(t *testing.T) {
	want := map[Finger][2]int{
		Thumb:  {4, 3},
		Index:  {8, 6},
		Middle: {12, 10},
		Ring:   {16, 14},
		Pinky:  {20, 18},
	}
	for f, pair := range want {
		if f.Tip() != pair[0] || f.Ref() != pair[1] {
			t.Errorf("%s: tip/ref = %d/%d, want %d/%d", f, f.Tip(), f.Ref(), pair[0], pair[1])
		}
	}
}

func TestParseHand(t *testing.T) {
	tests := []struct {
		label   string
		want    Hand
		wantErr bool
	}{
		{"Left", HandLeft, false},
		{"Right", HandRight, false},
		{"left", HandLeft, false},
		{"RIGHT", HandRight, false},
		{"", 0, true},
		{"Ambidextrous", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseHand(tt.label)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownHand) {
					t.Errorf("ParseHand(%q) error = %v, want ErrUnknownHand", tt.label, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHand(%q) error = %v", tt.label, err)
			}
			if got != tt.want {
				t.Errorf("ParseHand(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}
