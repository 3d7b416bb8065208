package fermat

type (
	// ProgressFollower observes a running Factor call. StepStart is called once
	// with the number of ticks the search can take before it hits its iteration
	// bound, Tick once per 65536 iterations of the difference of squares loop,
	// and StepDone when Factor returns, whether or not it found factors.
	ProgressFollower interface {
		StepStart(desc string, intermediates int)
		Tick()
		StepDone()
	}

	// EmptyFollower ignores all progress reports.
	EmptyFollower struct{}
)

func (*EmptyFollower) StepStart(_ string, _ int) {}
func (*EmptyFollower) Tick()                     {}
func (*EmptyFollower) StepDone()                 {}

// Follower is used when Options does not specify one. Replace it to follow every
// factorization of the process, for example to drive a progress bar in a command.
var Follower ProgressFollower = &EmptyFollower{}
