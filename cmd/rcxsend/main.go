// rcxsend connects to an rcxctl relay and sends command bytes, standing in
// for the controller GUI during manual testing.
//
// Usage: rcxsend [--addr host:2222] [--delay 500ms] forward stop 0x10 ...
package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/danmuck/rcxctl/internal/command"
	"github.com/danmuck/rcxctl/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

var errNoCommands = errors.New("rcxsend: no commands given")

type options struct {
	addr        string
	delay       time.Duration
	dialTimeout time.Duration
}

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rcxsend: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, usageOut io.Writer) error {
	opts, codes, err := parseArgs(args, usageOut)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return send(opts, codes)
}

func parseArgs(args []string, usageOut io.Writer) (options, []command.Code, error) {
	var opts options
	flagSet := pflag.NewFlagSet("rcxsend", pflag.ContinueOnError)
	flagSet.SetOutput(usageOut)
	flagSet.StringVarP(&opts.addr, "addr", "a", "127.0.0.1:2222", "relay address host:port")
	flagSet.DurationVarP(&opts.delay, "delay", "d", 0, "pause between commands")
	flagSet.DurationVar(&opts.dialTimeout, "dial-timeout", 5*time.Second, "connect timeout")
	flagSet.Usage = func() {
		fmt.Fprintf(usageOut, "Usage: rcxsend [flags] command...\n\nCommands: ")
		for i, code := range command.All() {
			if i > 0 {
				fmt.Fprint(usageOut, ", ")
			}
			fmt.Fprint(usageOut, code.Name())
		}
		fmt.Fprintf(usageOut, ", or a byte literal such as 0x21\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.delay < 0 {
		return options{}, nil, fmt.Errorf("rcxsend: negative delay %s", opts.delay)
	}
	if flagSet.NArg() == 0 {
		return options{}, nil, errNoCommands
	}

	codes := make([]command.Code, 0, flagSet.NArg())
	for _, raw := range flagSet.Args() {
		code, err := command.Parse(raw)
		if err != nil {
			return options{}, nil, err
		}
		codes = append(codes, code)
	}
	return opts, codes, nil
}

// send writes one byte per command, in order, on a single connection.
func send(opts options, codes []command.Code) error {
	conn, err := net.DialTimeout("tcp", opts.addr, opts.dialTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.addr, err)
	}
	defer conn.Close()

	for i, code := range codes {
		if i > 0 && opts.delay > 0 {
			time.Sleep(opts.delay)
		}
		if _, err := conn.Write([]byte{byte(code)}); err != nil {
			return fmt.Errorf("send %s: %w", code, err)
		}
		log.Info().Stringer("code", code).Str("addr", opts.addr).Msg("rcxsend sent")
	}
	return nil
}
