package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/JoshuaAmmons/econ-games/internal/db"
	"github.com/JoshuaAmmons/econ-games/internal/domain"
	"github.com/JoshuaAmmons/econ-games/internal/engine"
	_ "github.com/JoshuaAmmons/econ-games/internal/games"
	"github.com/JoshuaAmmons/econ-games/internal/notify"
	"github.com/JoshuaAmmons/econ-games/internal/repository"
	"github.com/JoshuaAmmons/econ-games/internal/service"
)

// Dev fixture: creates a waiting session with a couple of players and
// prints the join code plus ready-to-use player tokens.
func main() {
	gameType := flag.String("game", "public_goods", "game type to seed")
	rounds := flag.Int("rounds", 3, "number of rounds")
	players := flag.Int("players", 2, "players to pre-join")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(jwtSecret)

	found := false
	for _, t := range engine.Types() {
		if t == domain.GameType(*gameType) {
			found = true
		}
	}
	if !found {
		log.Fatalf("unknown game type %q; known: %v", *gameType, engine.Types())
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	sessions := service.NewSessionService(
		repository.NewSessionRepository(pool),
		repository.NewRoundRepository(pool),
		repository.NewPlayerRepository(pool),
		repository.NewSubmissionRepository(pool),
		repository.NewOutcomeRepository(pool),
		notify.Nop{},
	)

	ctx := context.Background()
	sess, err := sessions.Create(ctx, service.CreateParams{
		GameType:  domain.GameType(*gameType),
		NumRounds: *rounds,
	})
	if err != nil {
		log.Fatalf("create session: %v", err)
	}
	log.Printf("session id=%d code=%s game=%s rounds=%d", sess.ID, sess.Code, sess.GameType, sess.NumRounds)

	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for i := 0; i < *players; i++ {
		name := names[i%len(names)]
		p, _, err := sessions.Join(ctx, sess.Code, name)
		if err != nil {
			log.Fatalf("join %s: %v", name, err)
		}
		token, err := service.GeneratePlayerToken(p.ID, sess.ID)
		if err != nil {
			log.Fatalf("token %s: %v", name, err)
		}
		log.Printf("player %s id=%d token=%s", name, p.ID, token)
	}
}
