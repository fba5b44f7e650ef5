package loop

// Phased is anything driven by the three per-frame phases.
type Phased interface {
	Update(dt float64)
	FixedUpdate(dt float64)
	LateUpdate(dt float64)
}

const (
	DefaultFixedStep = 1.0 / 60
	// maxStepsPerTick bounds catch-up after a stall.
	maxStepsPerTick = 5
)

// Scheduler runs its participants through Update, zero or more fixed steps
// and LateUpdate each Tick, in registration order within each phase.
type Scheduler struct {
	participants []Phased
	fixedStep    float64
	accumulator  float64
}

func NewScheduler(fixedStep float64, participants ...Phased) *Scheduler {
	if fixedStep <= 0 {
		fixedStep = DefaultFixedStep
	}
	copied := append([]Phased(nil), participants...)
	return &Scheduler{participants: copied, fixedStep: fixedStep}
}

func (s *Scheduler) Add(p Phased) {
	if p == nil {
		return
	}
	s.participants = append(s.participants, p)
}

func (s *Scheduler) FixedStep() float64 { return s.fixedStep }

// Tick advances one frame of dt seconds and returns how many fixed steps ran.
// Time beyond maxStepsPerTick steps is dropped.
func (s *Scheduler) Tick(dt float64) int {
	for _, p := range s.participants {
		p.Update(dt)
	}

	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.fixedStep-1e-9 && steps < maxStepsPerTick {
		for _, p := range s.participants {
			p.FixedUpdate(s.fixedStep)
		}
		s.accumulator -= s.fixedStep
		steps++
	}
	if steps == maxStepsPerTick && s.accumulator > s.fixedStep {
		s.accumulator = 0
	}
	if s.accumulator < 0 {
		s.accumulator = 0
	}

	for _, p := range s.participants {
		p.LateUpdate(dt)
	}
	return steps
}

// Reset drops accumulated time.
func (s *Scheduler) Reset() { s.accumulator = 0 }

func (s *Scheduler) Participants() []Phased {
	participants := make([]Phased, 0, len(s.participants))
	return append(participants, s.participants...)
}
