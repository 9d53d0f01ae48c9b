package media

// Pool runs blocking work (probes, downloads) off the update-handling path.
// A fixed number of workers drains a bounded queue; Submit blocks once the
// queue is full, so load backs up instead of spawning unboundedly.
type Pool struct {
	jobs chan func()
}

func NewPool(workers, queue int) *Pool {
	p := &Pool{jobs: make(chan func(), queue)}
	for range workers {
		go func() {
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

func (p *Pool) Close() {
	close(p.jobs)
}
