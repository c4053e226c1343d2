package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/logger"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
)

var (
	ErrSessionNotJoinable = errors.New("session is not accepting players")
	ErrSessionNotWaiting  = errors.New("session has already started")
	ErrSessionNotActive   = errors.New("session is not active")
	ErrNoActiveRound      = errors.New("no active round")
	ErrUnknownGameType    = errors.New("unknown game type")
	ErrNotInSession       = errors.New("player does not belong to this session")
)

// Store interfaces are satisfied by the pgx repositories; tests plug in
// fakes.
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	GetByCode(ctx context.Context, code string) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
	SetStatus(ctx context.Context, id int64, status domain.SessionStatus, currentRound int) error
	Delete(ctx context.Context, id int64) error
}

type RoundStore interface {
	Create(ctx context.Context, round *domain.Round) error
	GetByID(ctx context.Context, id int64) (*domain.Round, error)
	GetActive(ctx context.Context, sessionID int64) (*domain.Round, error)
	ListBySession(ctx context.Context, sessionID int64) ([]*domain.Round, error)
	Start(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) (bool, error)
}

type PlayerStore interface {
	engine.PlayerStore
	Create(ctx context.Context, p *domain.Player) error
	GetByID(ctx context.Context, id int64) (*domain.Player, error)
}

type OutcomeStore interface {
	engine.OutcomeStore
	ListBySession(ctx context.Context, sessionID int64) ([]*domain.Outcome, error)
}

// The round-budget timer is keyed under this phase name.
const roundPhase = "round"

// SessionService owns the session lifecycle: creating and filling
// sessions, starting rounds, routing player actions to the right engine
// and driving guarded round resolution from all three triggers
// (submissions complete, timer, administrator).
type SessionService struct {
	sessions SessionStore
	rounds   RoundStore
	players  PlayerStore
	subs     engine.SubmissionStore
	outcomes OutcomeStore
	notifier notify.Notifier

	arena     *engine.Arena
	resolver  *engine.Resolver
	scheduler *engine.Scheduler

	mu      sync.Mutex
	engines map[int64]engine.Game
	rng     *rand.Rand
}

func NewSessionService(sessions SessionStore, rounds RoundStore, players PlayerStore, subs engine.SubmissionStore, outcomes OutcomeStore, notifier notify.Notifier) *SessionService {
	return &SessionService{
		sessions:  sessions,
		rounds:    rounds,
		players:   players,
		subs:      subs,
		outcomes:  outcomes,
		notifier:  notifier,
		arena:     engine.NewArena(),
		resolver:  engine.NewResolver(outcomes, players),
		scheduler: engine.NewScheduler(),
		engines:   make(map[int64]engine.Game),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateParams describe a new session.
type CreateParams struct {
	GameType     domain.GameType
	Config       domain.Config
	NumRounds    int
	RoundSeconds int
}

func (s *SessionService) Create(ctx context.Context, params CreateParams) (*domain.Session, error) {
	if !registered(params.GameType) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameType, params.GameType)
	}
	if params.NumRounds <= 0 {
		params.NumRounds = 1
	}
	if params.RoundSeconds <= 0 {
		params.RoundSeconds = 180
	}
	if params.Config == nil {
		params.Config = domain.Config{}
	}

	sess := &domain.Session{
		Code:         s.newCode(),
		GameType:     params.GameType,
		Config:       params.Config,
		NumRounds:    params.NumRounds,
		RoundSeconds: params.RoundSeconds,
		Status:       domain.SessionWaiting,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("session created", "session_id", sess.ID, "code", sess.Code, "game", sess.GameType)
	return sess, nil
}

func (s *SessionService) List(ctx context.Context) ([]*domain.Session, error) {
	return s.sessions.List(ctx)
}

func (s *SessionService) Get(ctx context.Context, id int64) (*domain.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *SessionService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	delete(s.engines, id)
	s.mu.Unlock()
	return s.sessions.Delete(ctx, id)
}

// Join adds a named player to a waiting session.
func (s *SessionService) Join(ctx context.Context, code, name string) (*domain.Player, *domain.Session, error) {
	sess, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if sess.Status != domain.SessionWaiting {
		return nil, nil, ErrSessionNotJoinable
	}
	p := &domain.Player{
		SessionID: sess.ID,
		Name:      name,
		Active:    true,
	}
	if err := s.players.Create(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("create player: %w", err)
	}
	logger.Info("player joined", "session_id", sess.ID, "player_id", p.ID, "name", name)
	return p, sess, nil
}

// Start moves a waiting session into its first round. bots adds that
// many bot players to back-fill a thin roster; bots never submit, so
// the engines' default fill decides for them.
func (s *SessionService) Start(ctx context.Context, sessionID int64, bots int) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != domain.SessionWaiting {
		return ErrSessionNotWaiting
	}

	for i := 0; i < bots; i++ {
		bot := &domain.Player{
			SessionID: sess.ID,
			Name:      fmt.Sprintf("bot-%d", i+1),
			Active:    true,
			IsBot:     true,
		}
		if err := s.players.Create(ctx, bot); err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
	}

	roster, err := s.players.ListBySession(ctx, sess.ID)
	if err != nil {
		return err
	}
	active := engine.ActivePlayers(roster)
	if len(active) == 0 {
		return errors.New("session has no players")
	}

	g, err := s.engineFor(sess)
	if err != nil {
		return err
	}
	if err := g.SetupPlayers(ctx, active); err != nil {
		return fmt.Errorf("setup players: %w", err)
	}

	sess.Status = domain.SessionActive
	if err := s.sessions.SetStatus(ctx, sess.ID, domain.SessionActive, 1); err != nil {
		return err
	}
	logger.Info("session started", "session_id", sess.ID, "players", len(active), "bots", bots)
	return s.startRound(ctx, sess, 1)
}

func (s *SessionService) startRound(ctx context.Context, sess *domain.Session, number int) error {
	// Rounds are born pending and flip to active only after the engine
	// sets them up, so a failed setup never leaves an orphaned active
	// round accepting submissions.
	round := &domain.Round{
		SessionID: sess.ID,
		Number:    number,
		Status:    domain.RoundPending,
	}
	if err := s.rounds.Create(ctx, round); err != nil {
		return fmt.Errorf("create round: %w", err)
	}

	g, err := s.engineFor(sess)
	if err != nil {
		return err
	}
	if err := g.OnRoundStart(ctx, round); err != nil {
		return fmt.Errorf("round start: %w", err)
	}
	if err := s.rounds.Start(ctx, round.ID); err != nil {
		return fmt.Errorf("start round: %w", err)
	}
	round.Status = domain.RoundActive

	// The budget timer is the backstop trigger: it forces resolution
	// for rounds where not everyone acted.
	s.scheduler.Arm(round.ID, roundPhase, sess.RoundBudget(), func() {
		if err := s.EndRound(context.Background(), round.ID, "timer"); err != nil && !errors.Is(err, engine.ErrResolving) {
			logger.Error("timer round end failed", "round_id", round.ID, "error", err)
		}
	})

	s.notifier.Notify(sess.ID, notify.Everyone(), notify.Event{
		Type: "round_start",
		Payload: map[string]any{
			"round":   number,
			"of":      sess.NumRounds,
			"seconds": sess.RoundSeconds,
		},
	})
	logger.Info("round started", "session_id", sess.ID, "round", number)
	return nil
}

// HandleAction routes one player input to the session's engine.
// Validation errors come back to the caller for a reply-only error
// event; nothing about the round changes on a rejection.
func (s *SessionService) HandleAction(ctx context.Context, sessionID, playerID int64, a engine.Action) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != domain.SessionActive {
		return ErrSessionNotActive
	}
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if player.SessionID != sess.ID {
		return ErrNotInSession
	}
	round, err := s.rounds.GetActive(ctx, sess.ID)
	if err != nil {
		return ErrNoActiveRound
	}
	g, err := s.engineFor(sess)
	if err != nil {
		return err
	}

	res, err := g.HandleAction(ctx, round, player, a)
	if err != nil {
		engine.ActionsRejected.WithLabelValues(string(sess.GameType)).Inc()
		return err
	}
	engine.ActionsAccepted.WithLabelValues(string(sess.GameType)).Inc()

	if res.Reply != nil {
		s.notifier.Notify(sess.ID, notify.Player(playerID), *res.Reply)
	}
	if res.Broadcast != nil {
		s.notifier.Notify(sess.ID, notify.Everyone(), *res.Broadcast)
	}
	if res.Complete {
		if err := s.EndRound(ctx, round.ID, "complete"); err != nil && !errors.Is(err, engine.ErrResolving) {
			return err
		}
	}
	return nil
}

// EndRound drives the guarded resolution of one round and, if this call
// won the completion, advances the session. trigger labels who forced
// it: "complete", "timer", "force" or "admin". ErrResolving from a
// concurrent trigger is surfaced so callers can treat it as a no-op.
func (s *SessionService) EndRound(ctx context.Context, roundID int64, trigger string) error {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return err
	}
	if round.Status != domain.RoundActive {
		return nil // already resolved and completed
	}
	sess, err := s.sessions.GetByID(ctx, round.SessionID)
	if err != nil {
		return err
	}
	g, err := s.engineFor(sess)
	if err != nil {
		return err
	}

	outcomes, err := g.ProcessRoundEnd(ctx, round)
	if err != nil {
		return err
	}

	won, err := s.rounds.Complete(ctx, round.ID)
	if err != nil {
		return err
	}
	if !won {
		return nil // another trigger finished the bookkeeping
	}

	s.scheduler.CancelRound(round.ID)
	s.arena.Release(round.ID)
	engine.RoundsResolved.WithLabelValues(string(sess.GameType), trigger).Inc()

	s.notifier.Notify(sess.ID, notify.Everyone(), notify.Event{
		Type: "results",
		Payload: map[string]any{
			"round":   round.Number,
			"results": engine.OutcomeRows(outcomes),
		},
	})
	logger.Info("round resolved", "session_id", sess.ID, "round", round.Number, "trigger", trigger)

	// An admin-forced end closes the session outright; the other
	// triggers advance to the next round while rounds remain.
	if trigger != "admin" && round.Number < sess.NumRounds {
		if err := s.sessions.SetStatus(ctx, sess.ID, domain.SessionActive, round.Number+1); err != nil {
			return err
		}
		return s.startRound(ctx, sess, round.Number+1)
	}
	return s.endSession(ctx, sess, round.Number)
}

// ForceEndRound cuts the active round short from the console. Missing
// submissions resolve to defaults and the session advances as if the
// budget timer had fired.
func (s *SessionService) ForceEndRound(ctx context.Context, sessionID int64) error {
	round, err := s.rounds.GetActive(ctx, sessionID)
	if err != nil {
		return ErrNoActiveRound
	}
	if err := s.EndRound(ctx, round.ID, "force"); err != nil && !errors.Is(err, engine.ErrResolving) {
		return err
	}
	return nil
}

// EndSession force-ends a session from the console: the active round,
// if any, resolves with defaults first.
func (s *SessionService) EndSession(ctx context.Context, sessionID int64) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status == domain.SessionEnded {
		return nil
	}
	if round, err := s.rounds.GetActive(ctx, sess.ID); err == nil {
		if err := s.EndRound(ctx, round.ID, "admin"); err != nil && !errors.Is(err, engine.ErrResolving) {
			return err
		}
		return nil
	}
	return s.endSession(ctx, sess, sess.CurrentRound)
}

func (s *SessionService) endSession(ctx context.Context, sess *domain.Session, finalRound int) error {
	if err := s.sessions.SetStatus(ctx, sess.ID, domain.SessionEnded, finalRound); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.engines, sess.ID)
	s.mu.Unlock()

	roster, err := s.players.ListBySession(ctx, sess.ID)
	if err != nil {
		return err
	}
	standings := make([]map[string]any, 0, len(roster))
	for _, p := range engine.ActivePlayers(roster) {
		standings = append(standings, map[string]any{
			"player_id": p.ID,
			"name":      p.Name,
			"profit":    p.Profit,
		})
	}
	s.notifier.Notify(sess.ID, notify.Everyone(), notify.Event{
		Type: "session_end",
		Payload: map[string]any{
			"rounds":    finalRound,
			"standings": standings,
		},
	})
	logger.Info("session ended", "session_id", sess.ID, "rounds", finalRound)
	return nil
}

// State builds a reconnect snapshot for one player (0 for the observer
// view): session header plus the engine's view of the current round.
func (s *SessionService) State(ctx context.Context, sessionID, playerID int64) (map[string]any, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snap := map[string]any{
		"session_id":    sess.ID,
		"code":          sess.Code,
		"game_type":     string(sess.GameType),
		"status":        string(sess.Status),
		"current_round": sess.CurrentRound,
		"num_rounds":    sess.NumRounds,
	}
	if sess.Status == domain.SessionWaiting {
		roster, err := s.players.ListBySession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		snap["players"] = len(engine.ActivePlayers(roster))
		return snap, nil
	}

	round, err := s.currentRound(ctx, sess)
	if err != nil || round == nil {
		return snap, nil
	}
	g, err := s.engineFor(sess)
	if err != nil {
		return nil, err
	}
	game, err := g.GameState(ctx, round, playerID)
	if err != nil {
		return nil, err
	}
	snap["game"] = game
	return snap, nil
}

// Rounds returns a session's rounds in play order.
func (s *SessionService) Rounds(ctx context.Context, sessionID int64) ([]*domain.Round, error) {
	return s.rounds.ListBySession(ctx, sessionID)
}

// Outcomes returns every persisted outcome of a session, for export.
func (s *SessionService) Outcomes(ctx context.Context, sessionID int64) ([]*domain.Outcome, error) {
	return s.outcomes.ListBySession(ctx, sessionID)
}

// Players returns the session roster.
func (s *SessionService) Players(ctx context.Context, sessionID int64) ([]*domain.Player, error) {
	return s.players.ListBySession(ctx, sessionID)
}

func (s *SessionService) currentRound(ctx context.Context, sess *domain.Session) (*domain.Round, error) {
	if round, err := s.rounds.GetActive(ctx, sess.ID); err == nil {
		return round, nil
	}
	rounds, err := s.rounds.ListBySession(ctx, sess.ID)
	if err != nil || len(rounds) == 0 {
		return nil, err
	}
	return rounds[len(rounds)-1], nil
}

// engineFor returns the session's engine instance, building it on first
// touch. Rebuilding after a restart is safe: engines reconstruct round
// state from the submission log.
func (s *SessionService) engineFor(sess *domain.Session) (engine.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.engines[sess.ID]; ok {
		return g, nil
	}
	deps := engine.Deps{
		State:     s.arena,
		Resolver:  s.resolver,
		Scheduler: s.scheduler,
		Subs:      s.subs,
		Players:   s.players,
		Outcomes:  s.outcomes,
		Notifier:  s.notifier,
		EndRound: func(roundID int64, trigger string) {
			if err := s.EndRound(context.Background(), roundID, trigger); err != nil && !errors.Is(err, engine.ErrResolving) {
				logger.Error("engine round end failed", "round_id", roundID, "error", err)
			}
		},
	}
	g, err := engine.New(deps, sess)
	if err != nil {
		return nil, err
	}
	s.engines[sess.ID] = g
	return g, nil
}

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func (s *SessionService) newCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, 6)
	for i := range b {
		b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func registered(t domain.GameType) bool {
	for _, typ := range engine.Types() {
		if typ == t {
			return true
		}
	}
	return false
}
