// Command admintoken prints a bearer token for the admin routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jengzang/flights-backend-go/internal/config"
	"github.com/jengzang/flights-backend-go/internal/middleware"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	token, err := middleware.IssueToken([]byte(cfg.JWTSecret), *subject, middleware.AdminRole, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
