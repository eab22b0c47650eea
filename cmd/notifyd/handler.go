package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	notify "github.com/esiqveland/notifyd"
	"github.com/esiqveland/notifyd/server"
)

// newHandler logs every notification. With a selector command it also
// offers the notification's actions through it.
func newHandler(selector []string, log zerolog.Logger) server.Handler {
	return server.HandlerFunc(func(ctx context.Context, n server.Notification, ctl server.Controls) (notify.Reason, bool) {
		defer ctl.Release()
		log.Info().
			Uint32("id", n.ID).
			Str("app", n.AppName).
			Str("summary", n.Summary).
			Stringer("urgency", n.Hints.Urgency).
			Msg(n.Body)

		if len(selector) == 0 || len(n.Actions) == 0 {
			<-ctx.Done()
			return 0, false
		}
		for {
			key, err := selectAction(ctx, selector, n)
			if err != nil {
				log.Debug().Err(err).Uint32("id", n.ID).Msg("no action selected")
				return 0, false
			}
			if !ctl.InvokeAction(key) || !n.Persistent {
				return 0, false
			}
		}
	})
}

// selectAction pipes the actions to the selector as "key\tlabel" lines and
// returns the key of the line it prints. A failing selector or an empty
// selection is an error.
func selectAction(ctx context.Context, command []string, n server.Notification) (string, error) {
	lines := make([]string, len(n.Actions))
	for i, a := range n.Actions {
		lines[i] = a.Key + "\t" + a.Label
	}

	out := bytes.Buffer{}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n"))
	cmd.Stdout = &out
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("NOTIFY_ID=%d", n.ID),
		"NOTIFY_APP_NAME="+n.AppName,
		"NOTIFY_SUMMARY="+n.Summary,
		"NOTIFY_BODY="+n.Body,
	)
	if err := cmd.Run(); err != nil {
		return "", err
	}

	choice := strings.TrimRight(out.String(), "\n")
	key := strings.SplitN(choice, "\t", 2)[0]
	if key == "" {
		return "", fmt.Errorf("selector %s printed no action", command[0])
	}
	return key, nil
}
