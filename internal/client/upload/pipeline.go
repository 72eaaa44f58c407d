// Package upload validates, queues and concurrently transmits batches of
// documents.
//
// Every valid file becomes an UploadTask with its own status record. While
// a transfer is outstanding a ticker advances its progress by a fixed step
// up to ProgressCap; only the server's success answer moves it to 100.
// Transfers run independently: a failure never stops its siblings.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/events"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// ProgressCap is the highest progress an unconfirmed transfer may show.
const ProgressCap = 90

type Options struct {
	Tick        time.Duration
	Step        int
	Concurrency int
	Timeout     time.Duration
}

// Batch is the set of tasks created by one Submit call.
type Batch struct {
	ID    string
	Tasks []models.UploadTask
}

type batchState struct {
	members map[string]struct{}
	closed  bool
}

type Pipeline struct {
	api  client.FileAPI
	bus  *events.Bus
	log  logging.Logger
	opts Options

	newTicker func(time.Duration) Ticker
	newID     func() string

	mu      sync.Mutex
	order   []string
	tasks   map[string]*models.UploadTask
	batches map[string]*batchState

	wg sync.WaitGroup
}

func New(api client.FileAPI, bus *events.Bus, opts Options, log logging.Logger) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Pipeline{
		api:       api,
		bus:       bus,
		log:       log,
		opts:      opts,
		newTicker: newTimeTicker,
		newID:     uuid.NewString,
		tasks:     make(map[string]*models.UploadTask),
		batches:   make(map[string]*batchState),
	}
}

// Submit validates cands and starts transferring the valid ones in the
// background. Rejected files never become tasks; they are returned as a
// *RejectionReport, possibly together with a started batch. With no valid
// file the returned Batch is empty.
//
// Transfers are not bound to ctx cancellation; each one runs under the
// configured timeout instead.
func (p *Pipeline) Submit(ctx context.Context, cands []Candidate) (Batch, error) {
	valid, report := Validate(cands)

	var err error
	if report != nil {
		err = report
		p.log.Info(ctx, "files rejected before upload", "count", len(report.Rejected))
	}
	if len(valid) == 0 {
		return Batch{}, err
	}

	batch := Batch{ID: p.newID()}
	state := &batchState{members: make(map[string]struct{}, len(valid))}

	p.mu.Lock()
	for _, c := range valid {
		task := &models.UploadTask{
			ID:       p.newID(),
			BatchID:  batch.ID,
			Filename: c.Name,
			Size:     c.Size,
			Status:   models.UploadUploading,
		}
		p.tasks[task.ID] = task
		p.order = append(p.order, task.ID)
		state.members[task.ID] = struct{}{}
		batch.Tasks = append(batch.Tasks, *task)
	}
	p.batches[batch.ID] = state
	p.mu.Unlock()

	bg := context.WithoutCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		var g errgroup.Group
		g.SetLimit(p.opts.Concurrency)
		for i, c := range valid {
			taskID := batch.Tasks[i].ID
			g.Go(func() error {
				p.transfer(bg, taskID, c)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return batch, err
}

// Wait blocks until every submitted transfer has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) transfer(ctx context.Context, taskID string, c Candidate) {
	if !p.active(taskID) {
		p.log.Debug(ctx, "task removed before transfer started", "task_id", taskID, "filename", c.Name)
		return
	}

	stop := p.startProgress(taskID)
	stored, err := p.send(ctx, c)
	stop()

	p.finish(ctx, taskID, c.Name, stored, err)
}

func (p *Pipeline) send(ctx context.Context, c Candidate) (*models.StoredFile, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	if c.Open == nil {
		return nil, fmt.Errorf("%s: no content", c.Name)
	}
	r, err := c.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Name, err)
	}
	defer r.Close()

	return p.api.UploadFile(ctx, c.Name, r)
}

func (p *Pipeline) startProgress(taskID string) func() {
	t := p.newTicker(p.opts.Tick)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case <-t.C():
				p.advance(taskID)
			}
		}
	}()

	return func() {
		close(done)
		t.Stop()
		<-exited
	}
}

func (p *Pipeline) advance(taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task, ok := p.tasks[taskID]
	if !ok || task.Status != models.UploadUploading {
		return
	}
	task.Progress = min(task.Progress+p.opts.Step, ProgressCap)
}

func (p *Pipeline) finish(ctx context.Context, taskID, filename string, stored *models.StoredFile, err error) {
	var publish []events.Event

	p.mu.Lock()
	task, ok := p.tasks[taskID]
	if !ok {
		p.mu.Unlock()
		p.log.Warn(ctx, "ignoring result of removed upload", "task_id", taskID, "filename", filename, "error", err)
		return
	}

	if err != nil {
		task.Status = models.UploadError
		task.Err = errorText(err)
	} else {
		task.Status = models.UploadSuccess
		task.Progress = 100
		publish = append(publish, events.Event{Kind: events.UploadSucceeded, ID: taskID, Name: filename})
	}
	if e, fire := p.settleBatchLocked(task.BatchID); fire {
		publish = append(publish, e)
	}
	p.mu.Unlock()

	if err != nil {
		p.log.Warn(ctx, "upload failed", "task_id", taskID, "filename", filename, "error", err)
	} else {
		var chunks int
		if stored != nil {
			chunks = stored.ChunksCreated
		}
		p.log.Info(ctx, "upload succeeded", "task_id", taskID, "filename", filename, "chunks", chunks)
	}

	for _, e := range publish {
		p.bus.Publish(e)
	}
}

// Remove drops a task. An outstanding transfer keeps running but its result
// is ignored.
func (p *Pipeline) Remove(taskID string) error {
	p.mu.Lock()
	task, ok := p.tasks[taskID]
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("upload task %s: %w", taskID, common.ErrNotFound)
	}

	delete(p.tasks, taskID)
	for i, id := range p.order {
		if id == taskID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	if b, ok := p.batches[task.BatchID]; ok {
		delete(b.members, taskID)
	}
	e, fire := p.settleBatchLocked(task.BatchID)
	p.mu.Unlock()

	if fire {
		p.bus.Publish(e)
	}
	return nil
}

// settleBatchLocked closes the batch once every remaining member is
// terminal. A batch with remaining members fires BatchCompleted exactly
// once; one emptied by removals closes silently.
func (p *Pipeline) settleBatchLocked(batchID string) (events.Event, bool) {
	b, ok := p.batches[batchID]
	if !ok || b.closed {
		return events.Event{}, false
	}

	if len(b.members) == 0 {
		b.closed = true
		delete(p.batches, batchID)
		return events.Event{}, false
	}

	for id := range b.members {
		if !p.tasks[id].Status.Terminal() {
			return events.Event{}, false
		}
	}

	b.closed = true
	delete(p.batches, batchID)
	return events.Event{Kind: events.BatchCompleted, ID: batchID}, true
}

func (p *Pipeline) active(taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tasks[taskID]
	return ok
}

// Tasks returns the current tasks in submission order.
func (p *Pipeline) Tasks() []models.UploadTask {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.UploadTask, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.tasks[id])
	}
	return out
}

func (p *Pipeline) Task(taskID string) (models.UploadTask, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tasks[taskID]
	if !ok {
		return models.UploadTask{}, false
	}
	return *t, true
}

func errorText(err error) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return err.Error()
}
