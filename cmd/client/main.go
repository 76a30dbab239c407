// Command client joins a server room and answers position claims typed on
// stdin, one per line: "<team> <role>", e.g. "blue attacker" or "red goalie".
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/DoyleJ11/skaters-limit/internal/client"
	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/internal/engine"
	"github.com/DoyleJ11/skaters-limit/internal/logx"
	"github.com/DoyleJ11/skaters-limit/internal/protocol"
	"github.com/DoyleJ11/skaters-limit/internal/settings"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := settings.Flags("client")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	s, err := settings.Load(flags)
	if err != nil {
		return err
	}

	local, err := config.ReadClientConfig(s.ConfigDir)
	if err != nil {
		return err
	}
	logger, _, err := logx.New(s.AppEnv, local.LogInfo)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	policy := protocol.FirstWins
	if s.Adoption == "latest" {
		policy = protocol.LatestWins
	}

	c := client.New(client.Options{
		BuildID:  s.BuildID,
		Policy:   policy,
		Roster:   client.FileRoster{Path: s.RosterFile},
		Identity: client.StaticIdentity(s.Identity),
		Notifier: client.WriterNotifier{W: os.Stdout},
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.Connect(ctx, s.ServerURL); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := c.Run(gctx)
		var kicked *client.KickedError
		if errors.As(err, &kicked) {
			fmt.Fprintln(os.Stdout, kicked.Reason)
		}
		stop()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		return c.Close()
	})

	// Stdin has no cancellable read; the prompt loop is left running and the
	// process exits once the session ends.
	go prompt(c)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func prompt(c *client.Client) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			fmt.Fprintln(os.Stdout, "usage: <blue|red> <attacker|goalie>")
			continue
		}

		team, ok := engine.ParseTeam(fields[0])
		if !ok {
			// Passed through; the gate logs it and lets the claim go.
			team = engine.Team(fields[0])
		}
		role := engine.Role(strings.ToLower(fields[1]))
		if role != engine.RoleAttacker && role != engine.RoleGoalie {
			fmt.Fprintln(os.Stdout, "role must be attacker or goalie")
			continue
		}

		if c.AuthorizeClaim(engine.Position{Team: team, Role: role}) {
			fmt.Fprintf(os.Stdout, "claim %s %s: allowed\n", team, role)
		} else {
			fmt.Fprintf(os.Stdout, "claim %s %s: denied\n", team, role)
		}
	}
}
