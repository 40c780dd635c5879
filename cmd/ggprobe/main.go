package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/gguin/gg/session"
)

var (
	app = cli.NewApp()

	loginCommand = cli.Command{
		Name:      "login",
		Usage:     "Connect, log in and print events until disconnected",
		ArgsUsage: "<host:port>",
		Action:    runLogin,
		Flags:     []cli.Flag{uinFlag, passwordFlag, hashFlag, statusFlag, rawFlag},
	}
	hashCommand = cli.Command{
		Name:      "hash",
		Usage:     "Compute the login hash for a password and challenge, without connecting",
		ArgsUsage: "<password> <challenge>",
		Action:    runHash,
		Flags:     []cli.Flag{hashFlag},
	}
)

var (
	uinFlag = cli.Uint64Flag{
		Name:  "uin",
		Usage: "Account number",
	}
	passwordFlag = cli.StringFlag{
		Name:  "password",
		Usage: "Account password",
	}
	hashFlag = cli.StringFlag{
		Name:  "hash",
		Usage: "Hash family: gg32 or sha1",
		Value: "gg32",
	}
	statusFlag = cli.Uint64Flag{
		Name:  "status",
		Usage: "Initial presence status",
		Value: 2,
	}
	rawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "Bypass packet decoding and print every frame verbatim",
	}
)

func init() {
	app.Name = "ggprobe"
	app.Usage = "Smoke-test client for the session engine"
	app.Commands = []cli.Command{loginCommand, hashCommand}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func hashFamily(name string) session.HashFamily {
	if name == "sha1" {
		return session.HashSHA1
	}
	return session.HashGG32
}

func runLogin(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: ggprobe login [flags] <host:port>", 1)
	}
	addr := ctx.Args().Get(0)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := &session.Config{
		UIN:           uint32(ctx.Uint64(uinFlag.Name)),
		Password:      []byte(ctx.String(passwordFlag.Name)),
		Hash:          hashFamily(ctx.String(hashFlag.Name)),
		InitialStatus: uint32(ctx.Uint64(statusFlag.Name)),
		Transcoder:    session.DefaultTranscoder(),
		RawMode:       ctx.Bool(rawFlag.Name),
		ClearPassword: true,
	}

	s, err := session.Dial(host, uint16(port), cfg)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer s.Free()

	log.Info().Str("addr", addr).Msg("connected, awaiting welcome challenge")

	for {
		ev, err := s.Watch()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if ev == nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		printEvent(log, ev)
		if ev.Kind == session.EventConnFailed || ev.Kind == session.EventDisconnectAck {
			return nil
		}
	}
}

func printEvent(log zerolog.Logger, ev *session.Event) {
	switch ev.Kind {
	case session.EventConnSuccess:
		log.Info().Msg("login succeeded")
	case session.EventConnFailed:
		log.Warn().Str("reason", ev.Failed.String()).Msg("login failed")
	case session.EventMsg:
		log.Info().Uint32("from", ev.Msg.Sender).Str("body", ev.Msg.Body).Msg("message")
	case session.EventStatus:
		log.Info().Uint32("uin", ev.Status.UIN).Uint32("status", ev.Status.Status).Msg("status")
	case session.EventStatus60:
		log.Info().Uint32("uin", ev.Status60.UIN).Uint32("status", ev.Status60.Status).Msg("status60")
	case session.EventNotifyDescr:
		log.Info().Uint32("uin", ev.NotifyDescr.Entry).Str("descr", ev.NotifyDescr.Descr).Msg("notify descr")
	case session.EventRawPacket:
		log.Info().Uint32("type", ev.Raw.Type).Int("len", len(ev.Raw.Bytes)).Msg("raw frame")
	default:
		log.Debug().Int("kind", int(ev.Kind)).Msg("event")
	}
}

func runHash(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.NewExitError("usage: ggprobe hash <password> <challenge>", 1)
	}
	challenge, err := strconv.ParseUint(ctx.Args().Get(1), 0, 32)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	family := hashFamily(ctx.String(hashFlag.Name))
	buf := session.BuildHashBufForProbe(family, []byte(ctx.Args().Get(0)), uint32(challenge))
	fmt.Printf("%x\n", buf)
	return nil
}
