package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rensmac/tasktalk/internal/agent"
	"github.com/rs/zerolog/log"
)

// ErrChatTimeout is returned when a chat exchange exceeds its overall
// deadline; the handler translates it to a transport-level timeout status.
var ErrChatTimeout = errors.New("chat request timed out")

const busyMessage = "Sorry, I'm handling too many requests right now. Please try again in a moment."

type chatJob struct {
	ctx     context.Context
	message string
	token   string
	reply   chan string
}

// ChatService runs agent resolutions on a bounded worker pool so a slow
// language-model provider cannot stall the whole service. A timed-out
// exchange is abandoned from the caller's perspective; the worker finishes
// (or times out on its own provider deadline) in the background.
type ChatService struct {
	agent   *agent.Agent
	jobs    chan chatJob
	timeout time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

// NewChatService creates a chat service with the given pool size and per-
// request deadline, and starts its workers.
func NewChatService(a *agent.Agent, workers, queueSize int, timeout time.Duration) *ChatService {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	s := &ChatService{
		agent:   a,
		jobs:    make(chan chatJob, queueSize),
		timeout: timeout,
		stop:    make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *ChatService) worker() {
	defer s.wg.Done()
	for {
		select {
		case job := <-s.jobs:
			text := s.agent.Resolve(job.ctx, job.message, job.token)
			select {
			case job.reply <- text:
			default:
				// Caller already gave up.
			}
		case <-s.stop:
			return
		}
	}
}

// Handle processes one chat message and returns the rendered response text.
// Only exceeding the overall deadline produces an error; every business or
// provider failure comes back as response text.
func (s *ChatService) Handle(ctx context.Context, message, token string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	job := chatJob{
		ctx:     ctx,
		message: message,
		token:   token,
		reply:   make(chan string, 1),
	}

	select {
	case s.jobs <- job:
	default:
		log.Warn().Msg("chat queue full, rejecting message")
		return busyMessage, nil
	}

	select {
	case text := <-job.reply:
		return text, nil
	case <-ctx.Done():
		log.Warn().Dur("timeout", s.timeout).Msg("chat request timed out")
		return "", ErrChatTimeout
	}
}

// Close stops the worker pool and waits for in-flight resolutions.
func (s *ChatService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
