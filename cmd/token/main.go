package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"

	"github.com/zouhourab1996-stack/neural-post-ai/internal/auth"
	"github.com/zouhourab1996-stack/neural-post-ai/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	flags := flag.NewFlagSet("token", flag.ContinueOnError)
	scope := flags.String("scope", auth.ScopeAll, "scope to grant: *, generate, daily or indexing")
	ttl := flags.Duration("ttl", 24*time.Hour, "token lifetime; 0 never expires")
	if err := flags.Parse(args); err != nil {
		return eris.Wrap(err, "parsing flags")
	}

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	signer, err := auth.NewSigner(cfg.TriggerSecret)
	if err != nil {
		return err
	}

	token, err := signer.Issue(*scope, *ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
