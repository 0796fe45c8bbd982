package task

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finvo/bridge/src/utils/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestTaskTestSuite(t *testing.T) {
	suite.Run(t, new(TaskTestSuite))
}

type TaskTestSuite struct {
	suite.Suite
	config *config.Config
}

func (s *TaskTestSuite) SetupSuite() {
	s.config = config.Default()
}

func (s *TaskTestSuite) TestLifecycle() {
	task := NewTask(s.config, "test-task").
		WithSubtaskFunc(func() error {
			return nil
		})

	err := task.Start()
	assert.Nil(s.T(), err)

	task.StopWait()

	<-task.CtxRunning.Done()
}

func (s *TaskTestSuite) TestSubtaskStopsWithParent() {
	stopped := make(chan struct{})

	child := NewTask(s.config, "child").
		WithSubtaskFunc(func() error {
			<-time.After(time.Hour)
			return nil
		}).
		WithOnStop(func() {
			close(stopped)
		})

	parent := NewTask(s.config, "parent").
		WithSubtask(child)

	err := parent.Start()
	s.Require().NoError(err)

	parent.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		s.FailNow("child was not stopped")
	}
}

func (s *TaskTestSuite) TestConditionalSubtask() {
	child := NewTask(s.config, "child")

	parent := NewTask(s.config, "parent").
		WithConditionalSubtask(false, child)
	s.Empty(parent.subtasks)

	parent = NewTask(s.config, "parent").
		WithConditionalSubtask(true, child)
	s.Len(parent.subtasks, 1)
}

func (s *TaskTestSuite) TestWorkerPool() {
	var counter atomic.Int64

	task := NewTask(s.config, "workers").
		WithWorkerPool(2, 10)

	err := task.Start()
	s.Require().NoError(err)

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		task.SubmitToWorker(func() {
			counter.Add(1)
			done <- struct{}{}
		})
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	s.Equal(int64(5), counter.Load())

	task.StopWait()
}

func (s *TaskTestSuite) TestPeriodicSubtask() {
	var runs atomic.Int64

	task := NewTask(s.config, "periodic").
		WithPeriodicSubtaskFunc(time.Millisecond, func() error {
			runs.Add(1)
			return nil
		})

	err := task.Start()
	s.Require().NoError(err)

	time.Sleep(50 * time.Millisecond)
	task.StopWait()

	s.GreaterOrEqual(runs.Load(), int64(2))
}

var errTest = errors.New("test error")

func (s *TaskTestSuite) TestRetryExhaustsElapsedTime() {
	attempts := 0

	err := NewRetry().
		WithInitialInterval(5 * time.Millisecond).
		WithMaxElapsedTime(50 * time.Millisecond).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			return err
		}).
		Run(func() error {
			attempts++
			return errTest
		})

	s.Error(err)
	s.Greater(attempts, 1)
}

func (s *TaskTestSuite) TestRetryMaxRetries() {
	attempts := 0

	err := NewRetry().
		WithInitialInterval(time.Millisecond).
		WithMaxRetries(2).
		Run(func() error {
			attempts++
			return errTest
		})

	s.Error(err)
	s.Equal(3, attempts)
}
