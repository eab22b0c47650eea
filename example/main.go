package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	notify "github.com/esiqveland/notifyd"
)

func main() {
	err := runMain()
	if err != nil {
		log.Printf("\nerror: %v\n", err)
		os.Exit(1)
	}
}

func runMain() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := notify.New(
		notify.NewTransport(conn),
		// override with custom logger
		notify.WithLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()),
	)
	if err != nil {
		return err
	}

	DebugServerFeatures(ctx, client)

	// Create a Notification to send
	n := notify.Notification{
		AppName: "Test GO App",
		AppIcon: "mail-unread",
		Summary: "Test",
		Body:    "This is a test of the DBus bindings for go with sound.",
		Actions: []notify.Action{
			{Key: "cancel", Label: "Cancel"},
			{Key: "open", Label: "Open"},
		},
		ExpireTimeout: time.Second * 5,
	}
	n.SetUrgency(notify.UrgencyCritical)
	n.AddHint(notify.HintSoundWithName("trash-empty"))

	absFilePath, err := filepath.Abs("./small.png")
	if err != nil {
		return err
	}
	n.AddHint(notify.HintImageFilePath(absFilePath))

	h, err := client.Show(ctx, n)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	log.Printf("sent notification id: %v", h.ID())

	// Listen for actions invoked, then for the close.
	if err := h.WaitForAction(ctx, func(resp notify.ActionResponse) {
		log.Printf("first response for %v: %v", h.ID(), resp)
	}); err != nil {
		return err
	}
	if err := h.OnClose(ctx, func(reason notify.Reason) {
		log.Printf("NotificationClosed: %v Reason: %v", h.ID(), reason)
	}); err != nil && !errors.Is(err, notify.ErrHandleConsumed) {
		return err
	}
	return nil
}

func DebugServerFeatures(ctx context.Context, client *notify.Client) {
	// List server features!
	caps, err := client.GetCapabilities(ctx)
	if err != nil {
		log.Printf("error fetching capabilities: %v", err)
	}
	for x := range caps {
		fmt.Printf("Registered capability: %v\n", caps[x])
	}

	info, err := client.GetServerInformation(ctx)
	if err != nil {
		log.Printf("error getting server information: %v", err)
	}
	fmt.Printf("Name:    %v\n", info.Name)
	fmt.Printf("Vendor:  %v\n", info.Vendor)
	fmt.Printf("Version: %v\n", info.Version)
	fmt.Printf("Spec:    %v\n", info.SpecVersion)
}
