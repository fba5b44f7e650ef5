package loop

import (
	"slices"
	"testing"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) Update(dt float64)      { *r.log = append(*r.log, r.name+".update") }
func (r recorder) FixedUpdate(dt float64) { *r.log = append(*r.log, r.name+".fixed") }
func (r recorder) LateUpdate(dt float64)  { *r.log = append(*r.log, r.name+".late") }

func TestTickPhaseOrder(t *testing.T) {
	var log []string
	s := NewScheduler(0.02, recorder{"a", &log})
	s.Add(recorder{"b", &log})
	s.Add(nil)

	if steps := s.Tick(0.02); steps != 1 {
		t.Fatalf("steps = %d, want 1", steps)
	}
	want := []string{"a.update", "b.update", "a.fixed", "b.fixed", "a.late", "b.late"}
	if !slices.Equal(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	if len(s.Participants()) != 2 {
		t.Fatalf("participants = %d, want 2", len(s.Participants()))
	}
}

func TestTickAccumulates(t *testing.T) {
	cases := []struct {
		name   string
		frames []float64
		want   []int
	}{
		{"matched", []float64{0.02, 0.02, 0.02}, []int{1, 1, 1}},
		{"half_rate", []float64{0.01, 0.01, 0.01, 0.01}, []int{0, 1, 0, 1}},
		{"double_rate", []float64{0.04}, []int{2}},
		{"stall_is_capped", []float64{1, 0.02}, []int{maxStepsPerTick, 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var log []string
			s := NewScheduler(0.02, recorder{"a", &log})
			for i, dt := range c.frames {
				if got := s.Tick(dt); got != c.want[i] {
					t.Fatalf("frame %d: steps = %d, want %d", i, got, c.want[i])
				}
			}
		})
	}
}

func TestDefaultFixedStep(t *testing.T) {
	if got := NewScheduler(0).FixedStep(); got != DefaultFixedStep {
		t.Fatalf("FixedStep = %v, want %v", got, DefaultFixedStep)
	}
}

func TestResetDropsPartialStep(t *testing.T) {
	var log []string
	s := NewScheduler(0.02, recorder{"a", &log})
	s.Tick(0.01)
	s.Reset()
	if steps := s.Tick(0.01); steps != 0 {
		t.Fatalf("steps after Reset = %d, want 0", steps)
	}
	if steps := s.Tick(0.01); steps != 1 {
		t.Fatalf("steps = %d, want 1", steps)
	}
}
