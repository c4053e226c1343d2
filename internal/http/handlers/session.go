package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	"github.com/JoshuaAmmons/econ-games/internal/service"
)

type createSessionRequest struct {
	GameType     string         `json:"game_type" binding:"required"`
	Config       map[string]any `json:"config"`
	NumRounds    int            `json:"num_rounds"`
	RoundSeconds int            `json:"round_seconds"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "game_type required"})
		return
	}
	sess, err := h.Sessions.Create(c.Request.Context(), service.CreateParams{
		GameType:     domain.GameType(req.GameType),
		Config:       domain.Config(req.Config),
		NumRounds:    req.NumRounds,
		RoundSeconds: req.RoundSeconds,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.Sessions.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	players, err := h.Sessions.Players(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "players": players})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Sessions.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type startSessionRequest struct {
	Bots int `json:"bots"`
}

func (h *Handler) StartSession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req startSessionRequest
	_ = c.ShouldBindJSON(&req) // body optional
	if req.Bots < 0 || req.Bots > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bots out of range"})
		return
	}
	if err := h.Sessions.Start(c.Request.Context(), id, req.Bots); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"started": id})
}

// EndRound cuts the active round short; absent submissions fall back to
// each game's defaults.
func (h *Handler) EndRound(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Sessions.ForceEndRound(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended_round": id})
}

func (h *Handler) EndSession(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.Sessions.EndSession(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": id})
}

type joinRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// Join adds a player to a waiting session by its code and issues the
// player token used for the websocket and state endpoints.
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and name required"})
		return
	}
	player, sess, err := h.Sessions.Join(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := service.GeneratePlayerToken(player.ID, sess.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"player":  player,
		"session": sess,
	})
}

// State returns the reconnect snapshot for the authenticated player.
func (h *Handler) State(c *gin.Context) {
	playerID := c.GetInt64("player_id")
	sessionID := c.GetInt64("session_id")
	snap, err := h.Sessions.State(c.Request.Context(), sessionID, playerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ExportCSV streams every outcome of a session as CSV rows:
// session_id,round,player_id,player,profit,details.
func (h *Handler) ExportCSV(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	outcomes, err := h.Sessions.Outcomes(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	rounds, err := h.Sessions.Rounds(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	players, err := h.Sessions.Players(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	roundNumber := make(map[int64]int, len(rounds))
	for _, r := range rounds {
		roundNumber[r.ID] = r.Number
	}
	playerName := make(map[int64]string, len(players))
	for _, p := range players {
		playerName[p.ID] = p.Name
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=session_%d_outcomes.csv", id))

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"session_id", "round", "player_id", "player", "profit", "details"})
	for _, o := range outcomes {
		details := ""
		if len(o.Details) > 0 {
			if b, err := json.Marshal(o.Details); err == nil {
				details = string(b)
			}
		}
		_ = w.Write([]string{
			strconv.FormatInt(id, 10),
			strconv.Itoa(roundNumber[o.RoundID]),
			strconv.FormatInt(o.PlayerID, 10),
			playerName[o.PlayerID],
			strconv.FormatFloat(o.Profit, 'f', 2, 64),
			details,
		})
	}
	w.Flush()
}

// GameTypes lists the registered game types so the console can populate
// its picker.
func (h *Handler) GameTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"game_types": engine.Types()})
}
