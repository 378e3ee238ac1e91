package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/BartekS5/gaexport/internal/cli"
	"github.com/BartekS5/gaexport/internal/etl"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(etl.ExitCode(err))
	}
}
