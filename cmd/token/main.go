// Command token mints an access token signed with JWT_SECRET for a user id.
// It is meant for local development and smoke tests against a running
// server; production tokens come from the identity provider.
package main

import (
    "flag"
    "fmt"
    "log"
    "os"
    "time"

    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/config"
    "github.com/PranavParalkar/Gamesta-IdeaSpark-sub000/internal/utils"
)

func main() {
    userID := flag.String("user", "", "opaque user id placed in the sub claim")
    ttl := flag.Duration("ttl", time.Hour, "token lifetime")
    flag.Parse()

    config.LoadDotEnv(".env")
    secret := os.Getenv("JWT_SECRET")
    if secret == "" {
        log.Fatal("JWT_SECRET is not set")
    }
    tok, err := utils.NewAccessToken(secret, *userID, *ttl)
    if err != nil {
        log.Fatalf("mint token: %v", err)
    }
    fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format(time.RFC3339))
    fmt.Println(tok.Token)
}
