package fermat

import "sync/atomic"

type TestFollower struct {
	started, done int
	intermediates int
	count         int64
}

func (t *TestFollower) StepStart(desc string, intermediates int) {
	t.started++
	t.intermediates = intermediates
}

func (t *TestFollower) Tick() {
	atomic.AddInt64(&t.count, 1)
}

func (t *TestFollower) StepDone() {
	t.done++
}
