package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
)

// ErrQueueFull indica que a fila do remetente está cheia
var ErrQueueFull = errors.New("fila do cliente cheia")

// ErrClosed indica que o scheduler foi encerrado
var ErrClosed = errors.New("scheduler encerrado")

// Handler processa uma mensagem enfileirada
type Handler[T any] func(ctx context.Context, msg T)

// Scheduler mantém uma fila FIFO e um worker por chave. Mensagens da mesma
// chave são processadas na ordem de chegada; chaves diferentes rodam em paralelo.
type Scheduler[T any] struct {
	logger    logger.Logger
	handler   Handler[T]
	queueSize int
	idle      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers map[string]*worker[T]
	closed  bool
}

type worker[T any] struct {
	ch chan T
}

// NewScheduler cria um scheduler. Workers sem mensagens por idle encerram.
func NewScheduler[T any](log logger.Logger, queueSize int, idle time.Duration, handler Handler[T]) *Scheduler[T] {
	if queueSize <= 0 {
		queueSize = 32
	}
	if idle <= 0 {
		idle = 2 * time.Minute
	}
	if log == nil {
		log = logger.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler[T]{
		logger:    log,
		handler:   handler,
		queueSize: queueSize,
		idle:      idle,
		ctx:       ctx,
		cancel:    cancel,
		workers:   make(map[string]*worker[T]),
	}
}

// Enqueue coloca a mensagem na fila da chave sem bloquear
func (s *Scheduler[T]) Enqueue(key string, msg T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	w, ok := s.workers[key]
	if !ok {
		w = &worker[T]{ch: make(chan T, s.queueSize)}
		s.workers[key] = w
		s.wg.Add(1)
		go s.run(key, w)
	}

	select {
	case w.ch <- msg:
		return nil
	default:
		s.logger.Warn("Fila do cliente cheia", "key", key, "queue_size", s.queueSize)
		return ErrQueueFull
	}
}

func (s *Scheduler[T]) run(key string, w *worker[T]) {
	defer s.wg.Done()

	timer := time.NewTimer(s.idle)
	defer timer.Stop()

	for {
		select {
		case msg, ok := <-w.ch:
			if !ok {
				return
			}
			s.handle(key, msg)
			resetTimer(timer, s.idle)
		case <-timer.C:
			// Enqueue envia sob o mesmo lock, então a fila vazia aqui é definitiva
			s.mu.Lock()
			if len(w.ch) > 0 {
				s.mu.Unlock()
				timer.Reset(s.idle)
				continue
			}
			delete(s.workers, key)
			s.mu.Unlock()
			return
		}
	}
}

func (s *Scheduler[T]) handle(key string, msg T) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Pânico ao processar mensagem", "key", key, "panic", r)
		}
	}()
	s.handler(s.ctx, msg)
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// Workers retorna o número de workers ativos
func (s *Scheduler[T]) Workers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

// Close recusa novas mensagens e aguarda os workers esvaziarem as filas.
// Se ctx expirar antes, o contexto dos handlers é cancelado.
func (s *Scheduler[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		for _, w := range s.workers {
			close(w.ch)
		}
	}
	s.mu.Unlock()
	defer s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
