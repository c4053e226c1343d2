package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Manual end-to-end probe against a running server: authenticates as
// admin, creates and fills a public goods session, plays one round over
// the websocket and prints what each player saw.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	adminSecret := os.Getenv("ADMIN_TOKEN")
	if adminSecret == "" {
		log.Fatal("ADMIN_TOKEN not set")
	}
	base := fmt.Sprintf("http://127.0.0.1:%s/api/v1", port)

	adminJWT := postJSON(base+"/auth/admin", "", map[string]any{"token": adminSecret})["token"].(string)

	created := postJSON(base+"/sessions", adminJWT, map[string]any{
		"game_type":     "public_goods",
		"num_rounds":    1,
		"round_seconds": 60,
	})
	sessionID := int64(created["id"].(float64))
	code := created["code"].(string)
	log.Printf("session %d code=%s", sessionID, code)

	type player struct {
		name  string
		token string
		conn  *websocket.Conn
	}
	players := []*player{{name: "smokeA"}, {name: "smokeB"}}
	for _, p := range players {
		joined := postJSON(base+"/join", "", map[string]any{"code": code, "name": p.name})
		p.token = joined["token"].(string)
	}

	for _, p := range players {
		url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, p.token)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			log.Fatalf("dial %s: %v", p.name, err)
		}
		defer conn.Close()
		p.conn = conn
		drainUntil(conn, "state")
	}

	postJSON(fmt.Sprintf("%s/sessions/%d/start", base, sessionID), adminJWT, map[string]any{})
	for _, p := range players {
		drainUntil(p.conn, "round_start")
	}

	for i, p := range players {
		msg := fmt.Sprintf(`{"type":"action","kind":"decision","value":%d}`, (i+1)*5)
		if err := p.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			log.Fatalf("write %s: %v", p.name, err)
		}
	}

	for _, p := range players {
		results := drainUntil(p.conn, "results")
		out, _ := json.Marshal(results)
		log.Printf("%s got: %s", p.name, out)
	}

	log.Println("smoke test finished")
}

func postJSON(url, bearer string, body map[string]any) map[string]any {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		log.Fatalf("POST %s: status %d", url, res.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		log.Fatalf("POST %s: decode: %v", url, err)
	}
	return out
}

func drainUntil(conn *websocket.Conn, typ string) map[string]any {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		var obj map[string]any
		if json.Unmarshal(msg, &obj) != nil {
			continue
		}
		if t, ok := obj["type"].(string); ok && t == typ {
			return obj
		}
	}
	log.Fatalf("timed out waiting for %q", typ)
	return nil
}
