// Package workerpool runs a fixed-size pool of goroutines against a
// shared task channel under tomb supervision. Adapted from fenrir's
// original worker-pool prototype: the task channel and per-worker
// select loop are kept, rebuilt here as a self-contained package so
// its one caller, the gateway, can import it directly.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// TaskChanSize bounds the number of pending tasks waiting for a free
// worker; once it is reached, AddTask (and so its caller) blocks.
const TaskChanSize = 100

// Func is the unit of work a pool runs for each task.
type Func = func(t *tomb.Tomb, task any) error

// Pool runs a fixed number of goroutines, each pulling tasks off a
// shared channel until the tomb starts dying.
type Pool struct {
	size  int
	tasks chan any
	work  Func
}

// New constructs a Pool with room for TaskChanSize queued tasks.
func New(size int) *Pool {
	return &Pool{
		size:  size,
		tasks: make(chan any, TaskChanSize),
	}
}

// AddTask enqueues a task for the next free worker.
func (p *Pool) AddTask(task any) {
	p.tasks <- task
}

// Setup starts size worker goroutines supervised by t, each running
// work against tasks pulled off the pool's channel. Blocks until t
// starts dying.
func (p *Pool) Setup(t *tomb.Tomb, work Func) {
	p.work = work
	log.Info().Int("workers", p.size).Msg("starting worker pool")
	for i := 0; i < p.size; i++ {
		t.Go(func() error {
			return p.run(t)
		})
	}
	<-t.Dying()
}

// run is a single worker's loop: pull a task, do the work, repeat
// until the tomb dies. A worker never exits on a task's error: an
// error returned by work is logged and the worker takes the next task.
func (p *Pool) run(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := p.work(t, task); err != nil {
				log.Error().Err(err).Msg("worker task failed")
			}
		}
	}
}
