package session

import (
	"context"
	"sync"
	"time"

	"github.com/hugohenrick/atendente-pedidos/pkg/conversation"
	"github.com/hugohenrick/atendente-pedidos/pkg/logger"
)

// DefaultIdleTimeout é o tempo sem atividade após o qual a sessão expira
const DefaultIdleTimeout = 30 * time.Minute

// Factory cria a máquina de uma nova sessão
type Factory func(customerKey string) *conversation.Machine

// Session é a conversa de um cliente em memória
type Session struct {
	CustomerKey  string
	Machine      *conversation.Machine
	CreatedAt    time.Time
	LastActivity time.Time
}

// View é uma cópia somente leitura de uma sessão
type View struct {
	CustomerKey  string               `json:"customerKey"`
	State        conversation.State   `json:"state"`
	Context      conversation.Context `json:"context"`
	CreatedAt    time.Time            `json:"createdAt"`
	LastActivity time.Time            `json:"lastActivity"`
}

type entry struct {
	// lock de capacidade 1; permite aguardar com ctx e TryLock no sweep
	lock    chan struct{}
	session *Session
}

func newEntry() *entry {
	return &entry{lock: make(chan struct{}, 1)}
}

func (e *entry) acquire(ctx context.Context) error {
	select {
	case e.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *entry) tryAcquire() bool {
	select {
	case e.lock <- struct{}{}:
		return true
	default:
		return false
	}
}

func (e *entry) release() {
	<-e.lock
}

// Store mantém uma sessão por chave de cliente.
// O mapa é protegido por mu; cada sessão tem o seu próprio lock.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	timeout time.Duration
	factory Factory
	now     func() time.Time
	logger  logger.Logger
}

// Option configura o Store
type Option func(*Store)

// WithIdleTimeout define o tempo de expiração por inatividade
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock substitui o relógio usado para expiração
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger define o logger do Store
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore cria um novo Store
func NewStore(factory Factory, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		timeout: DefaultIdleTimeout,
		factory: factory,
		now:     time.Now,
		logger:  logger.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) fresh(key string) *Session {
	now := s.now()
	return &Session{
		CustomerKey:  key,
		Machine:      s.factory(key),
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (s *Store) expired(sess *Session) bool {
	return sess == nil || s.now().Sub(sess.LastActivity) > s.timeout
}

func (s *Store) entryFor(key string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = newEntry()
		s.entries[key] = e
	}
	return e
}

func (s *Store) current(key string, e *entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key] == e
}

// lock obtém o lock da entrada viva da chave, recriando a sessão se expirou
func (s *Store) lock(ctx context.Context, key string) (*entry, error) {
	for {
		e := s.entryFor(key)
		if err := e.acquire(ctx); err != nil {
			return nil, err
		}
		// Reset ou Sweep podem ter removido a entrada enquanto aguardávamos
		if !s.current(key, e) {
			e.release()
			continue
		}
		if s.expired(e.session) {
			if e.session != nil {
				s.logger.Debug("Sessão expirada substituída", "customer_key", key)
			}
			e.session = s.fresh(key)
		}
		return e, nil
	}
}

// Get retorna a sessão viva da chave ou uma nova em Idle se não existir ou
// tiver expirado. Não atualiza LastActivity; alterações devem usar Acquire ou Update.
func (s *Store) Get(key string) *Session {
	e, err := s.lock(context.Background(), key)
	if err != nil {
		return s.fresh(key)
	}
	defer e.release()
	return e.session
}

// Acquire retorna a sessão com o lock da chave obtido. A função retornada
// libera o lock e registra a atividade; deve ser chamada exatamente uma vez.
func (s *Store) Acquire(ctx context.Context, key string) (*Session, func(), error) {
	e, err := s.lock(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.session.LastActivity = s.now()
			e.release()
		})
	}
	return e.session, release, nil
}

// Update executa fn com o lock da sessão e atualiza LastActivity
func (s *Store) Update(key string, fn func(*Session)) {
	sess, release, err := s.Acquire(context.Background(), key)
	if err != nil {
		return
	}
	defer release()
	fn(sess)
}

// Reset remove a sessão; o próximo acesso cria uma nova
func (s *Store) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Sweep remove as sessões expiradas que não estão em uso e retorna quantas removeu
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if !e.tryAcquire() {
			continue
		}
		if s.expired(e.session) {
			delete(s.entries, key)
			removed++
		}
		e.release()
	}
	return removed
}

// Run executa Sweep periodicamente até o contexto ser cancelado
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Limpeza de sessões iniciada", "interval", interval.String(), "idle_timeout", s.timeout.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Limpeza de sessões encerrada")
			return nil
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Info("Sessões expiradas removidas", "removed", removed, "active", s.Len())
			}
		}
	}
}

// Len retorna o número de sessões em memória
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot retorna uma cópia da sessão da chave sem criá-la.
// Retorna false quando não existe ou já expirou.
func (s *Store) Snapshot(ctx context.Context, key string) (View, bool, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return View{}, false, nil
	}

	if err := e.acquire(ctx); err != nil {
		return View{}, false, err
	}
	defer e.release()

	if !s.current(key, e) || s.expired(e.session) {
		return View{}, false, nil
	}

	state, c := e.session.Machine.Snapshot()
	return View{
		CustomerKey:  key,
		State:        state,
		Context:      c,
		CreatedAt:    e.session.CreatedAt,
		LastActivity: e.session.LastActivity,
	}, true, nil
}
