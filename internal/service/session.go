package service

import (
	"sync"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/cache"
	"github.com/Bristo123/smart-task-analyser/internal/model"
	"github.com/Bristo123/smart-task-analyser/internal/view"
)

// Session guarda o estado de uma sessão do navegador.
// A lista de tarefas é um snapshot imutável: só Update a substitui.
type Session struct {
	id string

	mu        sync.Mutex
	tasks     []model.TaskDraft
	strategy  string
	jsonInput string
	page      *view.Page

	// tokens monotônicos das análises: nextToken é o último emitido,
	// appliedToken o da última resposta aplicada à página
	nextToken    uint64
	appliedToken uint64
	inFlight     int

	feedbackLocked bool

	errMsg string
	notice string
	alert  string
}

// SessionView é uma cópia do estado para renderização
type SessionView struct {
	ID             string            `json:"session_id"`
	Tasks          []model.TaskDraft `json:"tasks"`
	Strategy       string            `json:"strategy"`
	JSONInput      string            `json:"json_input"`
	Page           *view.Page        `json:"page,omitempty"`
	Loading        bool              `json:"loading"`
	FeedbackLocked bool              `json:"feedback_locked"`
	Error          string            `json:"error,omitempty"`
	Notice         string            `json:"notice,omitempty"`
	Alert          string            `json:"alert,omitempty"`
}

// NewSession cria uma sessão vazia
func NewSession(id string) *Session {
	return &Session{
		id:       id,
		tasks:    []model.TaskDraft{},
		strategy: model.StrategySmartBalance,
	}
}

// ID retorna o identificador da sessão
func (s *Session) ID() string {
	return s.id
}

// Tasks retorna o snapshot atual da lista de tarefas
func (s *Session) Tasks() []model.TaskDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks
}

// Update substitui a lista de tarefas pelo resultado de fn.
// fn recebe uma cópia e pode alterá-la livremente.
func (s *Session) Update(fn func([]model.TaskDraft) []model.TaskDraft) []model.TaskDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := make([]model.TaskDraft, len(s.tasks))
	copy(current, s.tasks)

	next := fn(current)
	if next == nil {
		next = []model.TaskDraft{}
	}
	s.tasks = next
	return next
}

// AddDraft acrescenta uma tarefa ao final da lista e retorna o novo tamanho
func (s *Session) AddDraft(d model.TaskDraft) int {
	tasks := s.Update(func(ts []model.TaskDraft) []model.TaskDraft {
		return append(ts, d.Normalize())
	})
	return len(tasks)
}

// Strategy retorna a última estratégia selecionada
func (s *Session) Strategy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

// SetInput guarda a estratégia e o JSON colado para reexibição no formulário
func (s *Session) SetInput(jsonInput, strategy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jsonInput = jsonInput
	s.strategy = strategy
}

// Input retorna o JSON colado e a estratégia da última análise
func (s *Session) Input() (jsonInput, strategy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jsonInput, s.strategy
}

// Page retorna a última página renderizada (nil se ainda não houve análise)
func (s *Session) Page() *view.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// beginAnalysis emite um novo token e marca a análise como em andamento
func (s *Session) beginAnalysis() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextToken++
	s.inFlight++
	s.errMsg = ""
	return s.nextToken
}

// finishAnalysis encerra a análise do token. Respostas mais antigas que a
// última aplicada são descartadas (stale) sem tocar na página.
// Retorna se a resposta foi descartada e se ainda há análises pendentes.
func (s *Session) finishAnalysis(token uint64, page *view.Page, err error) (stale, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight > 0 {
		s.inFlight--
	}
	loading = s.inFlight > 0

	if token < s.appliedToken {
		return true, loading
	}
	s.appliedToken = token

	if err != nil {
		s.errMsg = model.UserMessage(err)
		return false, loading
	}
	page.Version = token
	s.page = page
	s.errMsg = ""
	return false, loading
}

// Loading indica se há análise em andamento
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// lockFeedback desabilita os controles de feedback; false se já estavam desabilitados
func (s *Session) lockFeedback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedbackLocked {
		return false
	}
	s.feedbackLocked = true
	return true
}

func (s *Session) unlockFeedback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbackLocked = false
}

// FeedbackLocked indica se os controles de feedback estão desabilitados
func (s *Session) FeedbackLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackLocked
}

// SetError define a mensagem de erro exibida inline
func (s *Session) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// SetNotice define a notificação transitória (toast)
func (s *Session) SetNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// SetAlert define o alerta bloqueante
func (s *Session) SetAlert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = msg
}

// Snapshot copia o estado atual. Notice e alert são consumidos quando consume é true;
// o erro inline persiste até a próxima análise.
func (s *Session) Snapshot(consume bool) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		ID:             s.id,
		Tasks:          s.tasks,
		Strategy:       s.strategy,
		JSONInput:      s.jsonInput,
		Page:           s.page,
		Loading:        s.inFlight > 0,
		FeedbackLocked: s.feedbackLocked,
		Error:          s.errMsg,
		Notice:         s.notice,
		Alert:          s.alert,
	}
	if consume {
		s.notice = ""
		s.alert = ""
	}
	return v
}

// SessionStore mantém as sessões em memória com expiração por inatividade
type SessionStore struct {
	cache *cache.Cache[*Session]
}

// NewSessionStore cria o store com o TTL informado
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{cache: cache.New[*Session](ttl)}
}

// Get retorna a sessão existente
func (st *SessionStore) Get(id string) (*Session, bool) {
	return st.cache.Get(id)
}

// GetOrCreate retorna a sessão id, criando-a se necessário
func (st *SessionStore) GetOrCreate(id string) *Session {
	return st.cache.GetOrCreate(id, func() *Session { return NewSession(id) })
}

// Delete remove a sessão
func (st *SessionStore) Delete(id string) {
	st.cache.Delete(id)
}

// Size retorna o número de sessões guardadas
func (st *SessionStore) Size() int {
	return st.cache.Size()
}

// Stop encerra a limpeza periódica
func (st *SessionStore) Stop() {
	st.cache.Stop()
}
