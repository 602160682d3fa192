package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:3000/clientes -timeout=2m
func main() {
	url := flag.String("url", "http://localhost:3000/clientes", "the endpoint that must answer with 200 OK")
	interval := flag.Duration("interval", 5*time.Second, "the pause between two attempts")
	timeout := flag.Duration("timeout", 0, "give up after this long (0 waits forever)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	client := &http.Client{Timeout: *interval}
	start := time.Now()
	for {
		res, err := client.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				log.Info().Str("url", *url).Dur("waited", time.Since(start)).Msg("service is available")
				return
			}
			log.Info().Str("url", *url).Int("status", res.StatusCode).Msg("service answered but is not ready")
		} else {
			log.Info().Err(err).Str("url", *url).Msg("service not reachable")
		}
		if *timeout > 0 && time.Since(start) >= *timeout {
			log.Fatal().Dur("waited", time.Since(start)).Msg("service did not become available")
		}
		log.Info().Dur("waited", time.Since(start)).Msg("waiting")
		time.Sleep(*interval)
	}
}
