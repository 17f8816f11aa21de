package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/hrdash/internal/adapters/mq/queue"
	"github.com/okian/hrdash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingRenderer struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (r *recordingRenderer) Prerender(_ context.Context, job queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, job.ChartID)
	if r.fail[job.ChartID] {
		return errors.New("no data")
	}
	return nil
}

func (r *recordingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestPool(t *testing.T) {
	Convey("Given a pool of three workers", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		r := &recordingRenderer{fail: map[string]bool{"broken": true}}
		pool := NewPool(3, q, r, WithName("test-pool"))

		Convey("When jobs are queued and the pool is shut down", func() {
			pool.Start(ctx)
			for _, id := range []string{"a", "b", "broken", "c"} {
				So(q.Enqueue(ctx, queue.Job{ChartID: id}), ShouldBeTrue)
			}
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then every job was attempted before the workers exited", func() {
				So(r.count(), ShouldEqual, 4)
				So(pool.Processed(), ShouldEqual, 3)
				So(pool.Failed(), ShouldEqual, 1)
			})

			Convey("Then a second shutdown returns immediately", func() {
				So(pool.Shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When shut down without being started", func() {
			q.Enqueue(ctx, queue.Job{ChartID: "late"})
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then queued work is still drained", func() {
				So(r.count(), ShouldEqual, 1)
			})
		})

		Convey("When the context ends", func() {
			short, stop := context.WithCancel(ctx)
			pool.Start(short)
			stop()

			Convey("Then the workers exit without the queue closing", func() {
				select {
				case <-pool.Done():
				case <-time.After(2 * time.Second):
					t.Fatal("workers did not stop")
				}
				So(q.IsClosed(), ShouldBeFalse)
			})
		})
	})
}
