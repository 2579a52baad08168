package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/passthrough-contract/interactions"
	"github.com/urfave/cli"
)

func listCommand() cli.Command {
	return cli.Command{
		Name:   "list",
		Usage:  "print interactions registered in the local mirror",
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	st, err := storage.NewStore(e.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}
	defer func() { _ = st.Close() }()

	return printInteractions(c.App.Writer, interactions.New(interactions.Prm{
		Logger: e.log,
		Store:  st,
	}))
}

func printInteractions(w io.Writer, eng *interactions.Engine) error {
	list, err := eng.Interactions()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTARGET\tENDPOINT\tSTATUS\tTOKEN\tCALLERS")

	for _, x := range list {
		k, ok := eng.Key(x.Target, x.Endpoint)
		if !ok {
			continue
		}

		token := "-"
		if h, ok := eng.AllowedToken(x.Target, x.Endpoint); ok {
			token = "0x" + h.StringLE()
		}

		callers := "*"
		if cs, _ := eng.AllowedCallers(x.Target, x.Endpoint); len(cs) > 0 {
			ss := make([]string, len(cs))
			for i := range cs {
				ss[i] = address.Uint160ToString(cs[i])
			}
			callers = strings.Join(ss, ",")
		}

		fmt.Fprintf(tw, "%s\t0x%s\t%s\t%s\t%s\t%s\n",
			k, x.Target.StringLE(), x.Endpoint, eng.Status(x.Target, x.Endpoint), token, callers)
	}

	return tw.Flush()
}
