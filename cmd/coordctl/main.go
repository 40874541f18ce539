// Package main implements coordctl, a one-shot CLI for issuing a signed
// call against a coordinator and printing the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/clearport/session_layer/coordinator/client"
	"github.com/clearport/session_layer/internal/signer"
)

func main() {
	_ = godotenv.Load()

	url := flag.String("url", os.Getenv("COORDINATOR_URL"), "Coordinator WebSocket URL")
	keyHex := flag.String("key", os.Getenv("COORDINATOR_PRIVATE_KEY"), "Hex-encoded private key")
	method := flag.String("method", "get_config", "Method to call")
	paramsJSON := flag.String("params", "", "Params as a JSON value (optional)")
	timeout := flag.Duration("timeout", 30*time.Second, "Call timeout")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *url == "" || *keyHex == "" {
		flag.Usage()
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	key, err := signer.FromHex(*keyHex)
	if err != nil {
		log.Fatal().Err(err).Msg("parse private key")
	}

	var params any
	if *paramsJSON != "" {
		if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
			log.Fatal().Err(err).Msg("parse params")
		}
	}

	c, err := client.New(client.Config{
		URL:            *url,
		Key:            key,
		AppName:        "coordctl",
		RequestTimeout: *timeout,
		Backoff: client.BackoffConfig{
			BaseDelay:   time.Second,
			MaxDelay:    time.Second,
			MaxAttempts: 1,
		},
		Logger:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer c.Disconnect()

	result, err := c.Call(ctx, *method, params)
	if err != nil {
		log.Fatal().Err(err).Str("method", *method).Msg("call failed")
	}

	var pretty json.RawMessage = result
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		out = result
	}
	fmt.Println(string(out))
}
