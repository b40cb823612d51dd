// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/restfire/restfire"
	"github.com/restfire/restfire/config"
	"github.com/restfire/restfire/lifecycle"
	"github.com/restfire/restfire/request"
	"github.com/restfire/restfire/transient"
)

var color2xx = color.New(color.FgGreen)
var color3xx = color.New(color.FgYellow)
var color4xx = color.New(color.FgRed)
var colorNeutral = color.New(color.FgCyan)

func main() {
	method := pflag.StringP("request", "X", "", "request method (default GET)")
	headers := pflag.StringArrayP("header", "H", nil, "request header as 'Name: value', repeatable")
	data := pflag.StringP("data", "d", "", "request body; @path reads the body from a file")
	output := pflag.StringP("output", "o", "", "write the response body to a file instead of stdout")
	save := pflag.String("save", "", "write the full raw response to a file")
	timings := pflag.Bool("timings", false, "print per-phase timings to stderr")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()
	args := pflag.Args()
	if len(args) != 1 {
		fatalf("Usage: restfire [flags] <url>\n")
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	body, err := readBody(*data)
	if err != nil {
		fatalf("Failed to read request body: %s\n", err)
	}

	req, err := request.New(*method, args[0], body)
	if err != nil {
		fatalf("Failed to create request: %s\n", err)
	}
	req.Header = make(request.Header, len(*headers))
	for _, h := range *headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			fatalf("Malformed header %q, want 'Name: value'\n", h)
		}
		req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	store := lifecycle.NewStore()
	client := &restfire.Client{
		Config:    config.SourceFunc(config.FromEnv),
		Lifecycle: store,
		Logger:    logger,
	}

	// first interrupt cancels the in-flight request, second kills the
	// process via the default handler
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		store.CancelCurrent()
		signal.Stop(sig)
	}()

	resp, err := client.Do(context.Background(), req)
	if err != nil {
		switch transient.Categorize(err) {
		case transient.Timeout:
			fatalf("Request timed out: %s\n", err)
		case transient.ConnRefused:
			fatalf("Connection refused: %s\n", err)
		case transient.ConnReset:
			fatalf("Connection reset: %s\n", err)
		default:
			fatalf("Request failed: %s\n", err)
		}
	}

	_, _ = statusColor(resp.StatusCode).Fprintf(os.Stderr, "HTTP/%s %d %s\n",
		resp.HTTPVersion, resp.StatusCode, resp.StatusMessage)
	_, _ = colorNeutral.Fprintf(os.Stderr, "%d header bytes, %d body bytes\n",
		resp.HeadersSizeInBytes, resp.BodySizeInBytes)
	if *timings {
		printTimings(resp.TimingPhases)
	}

	if *save != "" {
		if err := os.WriteFile(*save, []byte(resp.RawText()), 0o644); err != nil {
			fatalf("Failed to save raw response: %s\n", err)
		}
	}

	var out io.Writer = os.Stdout
	if *output != "" && *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			fatalf("Failed to create output file: %s\n", err)
		}
		defer f.Close()
		out = f
	}
	if resp.Body != "" {
		_, _ = fmt.Fprintln(out, resp.Body)
	}
}

func readBody(data string) (interface{}, error) {
	if data == "" {
		return nil, nil
	}
	if strings.HasPrefix(data, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(data, "@"))
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return data, nil
}

func printTimings(p restfire.TimingPhases) {
	phases := []struct {
		name string
		d    time.Duration
	}{
		{"wait", p.Wait},
		{"dns", p.DNS},
		{"tcp", p.TCP},
		{"request", p.Request},
		{"first byte", p.FirstByte},
		{"download", p.Download},
		{"total", p.Total},
	}
	for _, ph := range phases {
		_, _ = colorNeutral.Fprintf(os.Stderr, "%-10s %s\n", ph.name, ph.d.Round(time.Microsecond))
	}
}

func fatalf(format string, args ...interface{}) {
	_, _ = color.New(color.FgRed).Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return color2xx
	case code >= 300 && code < 400:
		return color3xx
	case code >= 400:
		return color4xx
	default:
		return colorNeutral
	}
}
