// Command apitoken prints a bearer token for the write endpoints, signed with
// API_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"meeting-scheduler-api/internal/auth"
)

func main() {
	_ = godotenv.Load()
	sub := flag.String("sub", "operator", "token subject")
	scope := flag.String("scope", "write", "token scope claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	secret := os.Getenv("API_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "API_SECRET is required")
		os.Exit(1)
	}
	if *ttl < 0 {
		fmt.Fprintln(os.Stderr, "-ttl must not be negative")
		os.Exit(1)
	}
	tok, err := auth.MakeToken(*sub, *scope, secret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
