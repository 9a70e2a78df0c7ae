// ABOUTME: Token subcommands for inspecting and editing stored source tokens
// ABOUTME: Opens the configured store directly, so the server need not be running

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/config"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/server"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/sources"
	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/store"
)

func runTokens(ctx context.Context, out io.Writer, args []string) error {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	st, err := server.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return tokensCommand(ctx, st, out, args)
}

// tokensCommand dispatches a tokens subcommand against st
func tokensCommand(ctx context.Context, st store.Store, out io.Writer, args []string) error {
	subcmd := "list"
	if len(args) > 0 {
		subcmd = args[0]
		args = args[1:]
	}

	svc := sources.NewService(st, nil)

	switch subcmd {
	case "list", "ls":
		return tokensList(ctx, st, svc, out)
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: copilot tokens set <source> <token>")
		}
		src, err := svc.SaveToken(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "  ✓ %s\n", sources.SavedMessage(src.Name))
		return nil
	case "delete", "rm", "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: copilot tokens rm <source>")
		}
		src, err := svc.DisconnectSource(ctx, args[0])
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "  ✓ %s\n", sources.RemovedMessage(src.Name))
		return nil
	default:
		return fmt.Errorf("unknown tokens subcommand: %s (use list, set, rm)", subcmd)
	}
}

func tokensList(ctx context.Context, st store.Store, svc *sources.Service, out io.Writer) error {
	tokens, err := st.ListTokens(ctx)
	if err != nil && !errors.Is(err, store.ErrUnseal) {
		return fmt.Errorf("listing tokens: %w", err)
	}
	byKey := make(map[string]*store.Token, len(tokens))
	for _, t := range tokens {
		byKey[t.Key] = t
	}

	cyan := color.New(color.FgCyan)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "  Source Tokens")
	cyan.Fprintln(out, "  -------------")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  SOURCE\tSTATUS\tTOKEN\tUPDATED")
	for _, s := range svc.Statuses(ctx, sources.All()) {
		masked, updated := "-", "-"
		if t, ok := byKey[s.TokenKey()]; ok {
			masked = maskToken(t.Value)
			updated = t.UpdatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", s.Name, s.Status, masked, updated)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return nil
}

// maskToken hides all but the last four characters
func maskToken(v string) string {
	if v == "" {
		return "-"
	}
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", 8) + v[len(v)-4:]
}
