package main

import (
	"flag"
	"fmt"
	"os"

	"empires-server/internal/auth"
	"empires-server/internal/shared/config"
)

// token issues a commander token signed with the server's JWT secret.
func main() {
	empireID := flag.Int("empire", 0, "empire id the token acts for")
	username := flag.String("username", "", "commander name")
	admin := flag.Bool("admin", false, "grant the admin role")
	flag.Parse()

	if err := config.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	if *empireID <= 0 || *username == "" {
		fmt.Fprintln(os.Stderr, "token: -empire and -username are required")
		os.Exit(2)
	}

	role := auth.RolePlayer
	if *admin {
		role = auth.RoleAdmin
	}

	cfg := config.GlobalConfig.Auth
	signed, err := auth.GenerateJWT(cfg.JWTSecret, *empireID, *username, role, cfg.TokenExpiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
