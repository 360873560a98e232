package workerpool_test

import (
	"sync/atomic"
	"testing"
	"time"

	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/workerpool"
)

func TestPoolRunsEveryTask(t *testing.T) {
	const tasks = 50
	var processed atomic.Int64

	p := workerpool.New(4)
	tb := &tomb.Tomb{}
	go p.Setup(tb, func(_ *tomb.Tomb, task any) error {
		processed.Add(task.(int64))
		return nil
	})

	var want int64
	for i := int64(1); i <= tasks; i++ {
		p.AddTask(i)
		want += i
	}

	deadline := time.After(time.Second)
	for processed.Load() != want {
		select {
		case <-deadline:
			t.Fatalf("timed out: processed=%d want=%d", processed.Load(), want)
		default:
			time.Sleep(time.Millisecond)
		}
	}

	tb.Kill(nil)
}
