package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/models"
	"flashquiz-backend/internal/services"
)

// QueueName is the redis list PDF jobs are pushed to.
const QueueName = "queue:pdf-flashcards"

// Queue pushes jobs onto the redis list consumed by Pool.
type Queue struct {
	redis *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{redis: client}
}

func (q *Queue) Enqueue(ctx context.Context, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.redis.LPush(ctx, jobQueueName(job.Type), data).Err(); err != nil {
		return fmt.Errorf("push job %s: %w", job.ID, err)
	}
	return nil
}

type textExtractor interface {
	ExtractTextFromPath(path string) (string, error)
}

type cardAdder interface {
	AddFlashcard(ctx context.Context, req models.CreateFlashcardRequest) services.Envelope
}

type Pool struct {
	redis       *redis.Client
	queue       *Queue
	extract     textExtractor
	generator   services.CardGenerator
	cards       cardAdder
	events      services.Publisher
	storagePath string
	workerCount int
	log         *logger.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	extract textExtractor,
	generator services.CardGenerator,
	cards cardAdder,
	events services.Publisher,
	storagePath string,
	workerCount int,
	log *logger.Logger,
) *Pool {
	if events == nil {
		events = services.NopPublisher()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		queue:       NewQueue(redisClient),
		extract:     extract,
		generator:   generator,
		cards:       cards,
		events:      events,
		storagePath: storagePath,
		workerCount: workerCount,
		log:         log.With("component", "worker"),
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Info("worker pool started", "workers", p.workerCount, "queue", QueueName)
}

// Stop signals the workers and waits for in-flight jobs. A worker blocked
// in BLPOP notices the signal once its poll times out.
func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.log.With("worker", id)

	for {
		select {
		case <-p.stopChan:
			log.Debug("worker shutting down")
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 5*time.Second, QueueName).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warn("blpop", "error", err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Warn("failed to parse job", "error", err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		log.Info("processing job", "job_id", job.ID, "type", job.Type, "attempt", job.RetryCount+1)
		p.run(ctx, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// run processes one job and reports the outcome.
func (p *Pool) run(ctx context.Context, job *models.Job) {
	var (
		created int
		err     error
	)
	switch job.Type {
	case models.JobTypePDFFlashcards:
		created, err = p.processPDF(ctx, job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		p.handleFailure(ctx, job, err)
		return
	}
	p.handleSuccess(ctx, job, created)
}

// processPDF extracts the uploaded document's text and stores one flashcard
// per generated draft. It fails only when nothing could be created.
func (p *Pool) processPDF(ctx context.Context, job *models.Job) (int, error) {
	if job.FilePath == "" {
		return 0, fmt.Errorf("job has no file path")
	}
	fullPath := filepath.Join(p.storagePath, job.FilePath)

	text, err := p.extract.ExtractTextFromPath(fullPath)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", job.FileName, err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("no text found in %s", job.FileName)
	}

	drafts, err := p.generator.Generate(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("generate flashcards: %w", err)
	}
	if len(drafts) == 0 {
		return 0, fmt.Errorf("no flashcards could be generated from %s", job.FileName)
	}

	source := "pdf:" + job.FileName
	created := 0
	var lastErr error
	for _, d := range drafts {
		req := models.CreateFlashcardRequest{Question: d.Question, Answer: d.Answer, Source: source}
		if d.Topic != "" {
			topic := d.Topic
			req.Topic = &topic
		}
		env := p.cards.AddFlashcard(ctx, req)
		if !env.Success {
			lastErr = env.Err()
			continue
		}
		created++
	}
	if created == 0 {
		return 0, fmt.Errorf("store generated flashcards: %w", lastErr)
	}
	return created, nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, created int) {
	job.Status = "completed"
	p.events.Publish(ctx, models.WSMessage{
		Type: "flashcards_generated",
		Payload: models.FlashcardsGeneratedEvent{
			JobID:    job.ID,
			PDFID:    job.ReferenceID,
			Created:  created,
			FileName: job.FileName,
		},
	})
	p.log.Info("job completed", "job_id", job.ID, "flashcards", created)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	maxRetries := job.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	if job.RetryCount < maxRetries && p.redis != nil {
		job.Status = "pending"
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		p.log.Warn("job failed, retrying", "job_id", job.ID, "attempt", job.RetryCount, "backoff", backoff, "error", errMsg)

		retry := *job
		time.AfterFunc(backoff, func() {
			if err := p.queue.Enqueue(context.Background(), &retry); err != nil {
				p.log.Error("requeue job", "job_id", retry.ID, "error", err)
			}
		})
		return
	}

	job.Status = "failed"
	p.log.Error("job failed permanently", "job_id", job.ID, "error", errMsg)
	p.events.Publish(ctx, models.WSMessage{
		Type: "job_failed",
		Payload: models.JobFailedEvent{
			JobID:        job.ID,
			ErrorMessage: errMsg,
		},
	})
}

func jobQueueName(jobType string) string {
	switch jobType {
	case models.JobTypePDFFlashcards:
		return QueueName
	default:
		return "queue:" + jobType
	}
}
