package service

import (
	"context"
	"time"

	"github.com/Bristo123/smart-task-analyser/internal/logger"
	"github.com/Bristo123/smart-task-analyser/internal/metrics"
	"github.com/Bristo123/smart-task-analyser/internal/model"
)

const (
	// DefaultReanalyzeDelay é a espera entre um feedback aceito e a nova análise
	DefaultReanalyzeDelay = 300 * time.Millisecond

	// DefaultFeedbackCooldown é o tempo em que os controles ficam desabilitados após um envio
	DefaultFeedbackCooldown = 600 * time.Millisecond
)

// FeedbackSender envia o voto ao backend
type FeedbackSender interface {
	SendFeedback(ctx context.Context, signal model.FeedbackSignal) error
}

// Scheduler executa fn após d
type Scheduler func(d time.Duration, fn func())

func afterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// FeedbackService envia feedback útil/não útil e dispara a reanálise
type FeedbackService struct {
	sender         FeedbackSender
	analysis       *AnalysisService
	notifier       Notifier
	history        HistoryRecorder
	reanalyzeDelay time.Duration
	cooldown       time.Duration
	schedule       Scheduler
}

// NewFeedbackService cria o serviço de feedback
func NewFeedbackService(sender FeedbackSender, analysis *AnalysisService, notifier Notifier, history HistoryRecorder, reanalyzeDelay, cooldown time.Duration) *FeedbackService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if history == nil {
		history = NopHistory{}
	}
	return &FeedbackService{
		sender:         sender,
		analysis:       analysis,
		notifier:       notifier,
		history:        history,
		reanalyzeDelay: reanalyzeDelay,
		cooldown:       cooldown,
		schedule:       afterFunc,
	}
}

// WithScheduler troca o agendador (usado em testes)
func (s *FeedbackService) WithScheduler(schedule Scheduler) *FeedbackService {
	s.schedule = schedule
	return s
}

// Send envia o feedback de title.
//  1. desabilita os controles de feedback da sessão
//  2. envia o voto ao backend
//  3. falha: alerta com a mensagem do backend ou a genérica
//  4. sucesso: notificação e uma reanálise após reanalyzeDelay
//  5. em qualquer caso, reabilita os controles cooldown depois da resposta
//
// Retorna a notificação exibida em caso de sucesso.
func (s *FeedbackService) Send(ctx context.Context, sess *Session, title string, helpful bool) (string, error) {
	log := logger.Get(ctx)

	if !sess.lockFeedback() {
		metrics.Get().IncrementFeedbackRejected()
		log.Debug().Str("title", title).Msg("Feedback ignorado: controles desabilitados")
		return "", model.ErrFeedbackLocked
	}
	s.notifier.FeedbackControls(sess.ID(), true)

	sessionID := sess.ID()
	signal := model.FeedbackSignal{Title: title, Helpful: helpful}
	err := s.sender.SendFeedback(ctx, signal)
	metrics.Get().IncrementFeedback(err == nil)

	// A contagem do cooldown só começa depois da resposta do backend
	s.schedule(s.cooldown, func() {
		sess.unlockFeedback()
		s.notifier.FeedbackControls(sessionID, false)
	})

	if herr := s.history.RecordFeedback(ctx, sessionID, signal, err); herr != nil {
		log.Warn().Err(herr).Msg("Falha ao registrar histórico do feedback")
	}

	if err != nil {
		alert := model.FeedbackAlert(err)
		sess.SetAlert(alert)
		s.notifier.Alert(sessionID, alert)
		log.Error().
			Err(err).
			Str("title", title).
			Bool("helpful", helpful).
			Msg("Falha ao enviar feedback")
		return "", err
	}

	notice := model.MsgMarkedNotHelpful + title
	if helpful {
		notice = model.MsgMarkedHelpful + title
	}
	sess.SetNotice(notice)
	s.notifier.Notice(sessionID, notice)

	followUp := logger.Detach(ctx)
	s.schedule(s.reanalyzeDelay, func() {
		if _, err := s.analysis.Reanalyze(followUp, sess); err != nil {
			logger.Get(followUp).Warn().Err(err).Msg("Reanálise após feedback falhou")
		}
	})

	log.Info().
		Str("title", title).
		Bool("helpful", helpful).
		Msg("Feedback aceito, reanálise agendada")
	return notice, nil
}

// SendControl resolve o controle clicado pela página da versão informada e envia o feedback.
// Um clique vindo de uma página já substituída é ErrUnknownControl.
func (s *FeedbackService) SendControl(ctx context.Context, sess *Session, version uint64, controlID string) (string, error) {
	action, ok := sess.Page().Resolve(version, controlID)
	if !ok {
		metrics.Get().IncrementFeedbackRejected()
		sess.SetAlert(model.MsgUnknownControl)
		logger.Get(ctx).Warn().
			Str("control", controlID).
			Uint64("version", version).
			Msg("Controle de feedback desconhecido ou de página desatualizada")
		return "", model.ErrUnknownControl
	}
	return s.Send(ctx, sess, action.Title, action.Helpful)
}
