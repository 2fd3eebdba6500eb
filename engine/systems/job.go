package systems

import (
	"context"
	"fmt"
	"sync"

	"github.com/spaghettifunk/assetforge/engine/core"
)

// JobTask is one unit of work for the job system.
type JobTask struct {
	Name string
	// OnStart does the work.
	OnStart func(ctx context.Context) error
	// OnComplete runs after a successful OnStart.
	OnComplete func()
	// OnFailure receives the error returned by OnStart.
	OnFailure func(err error)
}

type JobSystem struct {
	ctx        context.Context
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mutex  sync.Mutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system already shut down")

// NewJobSystem starts numWorkers workers. Jobs observe ctx; once it is
// cancelled queued jobs fail with the context error without running.
func NewJobSystem(ctx context.Context, numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		ctx:        ctx,
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	err := js.ctx.Err()
	if err == nil {
		err = job.OnStart(js.ctx)
	}
	if err != nil {
		core.LogError("Job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

// Submit queues a job, blocking while the queue is full.
func (js *JobSystem) Submit(jt JobTask) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}

// Shutdown waits for every queued job to finish.
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}
