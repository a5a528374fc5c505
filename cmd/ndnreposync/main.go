// Command ndnreposync is the repo sync daemon's control tool (spec.md
// §8's "CLI (control tool)"): sends a single start, check, or stop
// command Interest to a running ndnreposyncd and reports the reply,
// exiting nonzero on timeout or a non-success status.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"

	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/sync/command"
	"github.com/WeiqiJust/NDN-Repo/sync/names"
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	color.Output = colorable.NewColorableStdout()
}

func main() {
	app := cli.NewApp()
	app.Name = "ndnreposync"
	app.Usage = "start, check, or stop a repo sync daemon"
	app.ArgsUsage = "<repoPrefix>"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "s", Usage: "send a start command"},
		cli.BoolFlag{Name: "c", Usage: "send a check command"},
		cli.IntFlag{Name: "l", Value: 4000, Usage: "Interest lifetime, in milliseconds"},
		cli.StringFlag{Name: "n", Usage: "request a creator-name override (random 64-bit suffix)"},
		cli.StringFlag{Name: "k", Usage: "path to the daemon's command.pub file (enables ECDH command auth)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ndnreposync: %v", err))
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("expected exactly one argument: <repoPrefix>", 2)
	}
	repoPrefix := ctx.Args().Get(0)

	verb := command.Stop
	switch {
	case ctx.Bool("s"):
		verb = command.Start
	case ctx.Bool("c"):
		verb = command.Check
	}

	client := &command.Client{
		CommandPrefix: names.Join(repoPrefix, "command"),
		Face:          face.DefaultNetwork().NewFace(true),
		Lifetime:      time.Duration(ctx.Int("l")) * time.Millisecond,
	}
	if keyPath := ctx.String("k"); keyPath != "" {
		raw, err := os.ReadFile(keyPath)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("read daemon pubkey %s: %v", keyPath, err), 2)
		}
		pub, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("decode daemon pubkey %s: %v", keyPath, err), 2)
		}
		client.DaemonPublic = pub
	}

	status, err := client.Send(verb, command.Params{OverrideCreator: ctx.String("n") != ""})
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ndnreposync: %v", err))
		return cli.NewExitError("", 1)
	}

	switch status {
	case command.StatusStarted, command.StatusRunning, command.StatusStoppedOrAcked:
		fmt.Println(color.GreenString(status.String()))
		return nil
	default:
		fmt.Println(color.RedString(status.String()))
		return cli.NewExitError("", 1)
	}
}
