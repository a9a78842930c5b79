package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fekuna/omnipos-commerce/config"
	"github.com/fekuna/omnipos-commerce/migrations"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/joho/godotenv"
)

const usage = `usage: migrate [flags] up | down | version

flags:
`

func main() {
	steps := flag.Int("steps", 1, "Number of migrations to roll back with down")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.LoadEnv()
	pg := &postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	}
	url := pg.URL()

	switch flag.Arg(0) {
	case "up":
		if err := migrations.Up(url); err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Printf("migrations applied to %s", cfg.Postgres.DBName)
	case "down":
		if *steps < 1 {
			log.Fatalf("steps must be positive")
		}
		if err := migrations.Down(url, *steps); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Printf("rolled back %d migration(s)", *steps)
	case "version":
		v, dirty, err := migrations.Version(url)
		if err != nil {
			log.Fatalf("migrate version: %v", err)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
}
