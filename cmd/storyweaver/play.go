package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/endings"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/export"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/player"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

var errQuit = errors.New("quit")

const playHelp = `commands:
  <enter>, next          advance a linear step
  <n>                    pick option n of a choice
  pos <lat>,<lng>        report a position
  interact <target>      interact with a character or object
  goto <step-id>         jump to a step
  restart                start over
  quit`

func playCmd() *cobra.Command {
	var user string
	var from string
	var preview bool
	cmd := &cobra.Command{
		Use:   "play <story-id>",
		Short: "Play a story in the terminal",
		Long:  "Play a story step by step, reading commands from stdin.\n\n" + playHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args[0], user, from, preview)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Record the ending reached for this user")
	cmd.Flags().StringVar(&from, "from", "", "Start at this step instead of the begin step")
	cmd.Flags().BoolVar(&preview, "preview", false, "Play the raw story graph instead of the compiled choreography")
	return cmd
}

func runPlay(cmd *cobra.Command, id, user, from string, preview bool) error {
	ctx := context.Background()

	cfg, logger, err := loadProject()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	doc, err := loadStory(ctx, db, id)
	if err != nil {
		return err
	}
	exportOpts, err := exportOptions(cfg, logger)
	if err != nil {
		return err
	}
	bundle, err := export.Build(ctx, doc, exportOpts)
	if err != nil {
		return err
	}

	opts := []player.Option{
		player.WithGeofenceRadius(cfg.Player.GeofenceRadius),
		player.WithPollInterval(cfg.Player.PollInterval),
		player.WithLogger(logger),
	}
	var session *player.Session
	if preview {
		session, err = player.NewGraphSession(doc.Nodes, doc.Edges, append(opts, player.WithResolver(player.ResolverFromDocument(doc)))...)
	} else {
		session, err = player.NewSession(bundle.Choreography, append(opts, player.WithResolver(player.ResolverFromAR(bundle.AR)))...)
	}
	if err != nil {
		return err
	}
	defer session.Close()

	if from != "" {
		if err := session.JumpTo(from); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	ending, err := playLoop(session, cmd.InOrStdin(), out)
	if err != nil || ending == "" || user == "" {
		return err
	}

	tracker := endings.NewTracker(db, endings.WithLogger(logger))
	rec, err := tracker.RecordEnding(ctx, user, doc.ID, ending, bundle.Choreography.Endings(), bundle.Choreography.ExperienceName)
	if err != nil {
		return err
	}
	logger.Debug("ending recorded", zap.String("user", user), zap.String("story", doc.ID))
	fmt.Fprintf(out, "Endings seen by %s: %d of %d\n", user, len(rec.EndingsSeen), len(rec.AllEndings))
	return nil
}

// playLoop renders the session and applies one command per input line
// until an ending is reached. It returns the ending, or "" when the input
// ran out or the player quit first.
func playLoop(session *player.Session, in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		snap := session.Snapshot()
		printSnapshot(out, snap)
		if snap.State == player.StateTerminal {
			return snap.Ending, nil
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return "", scanner.Err()
		}
		err := playCommand(session, strings.TrimSpace(scanner.Text()))
		if errors.Is(err, errQuit) {
			return "", nil
		}
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	}
}

func playCommand(session *player.Session, line string) error {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch verb {
	case "", "next":
		return session.Advance()
	case "quit", "q":
		return errQuit
	case "restart":
		return session.Reset()
	case "goto":
		return session.JumpTo(arg)
	case "pos":
		p, err := parseLatLng(arg)
		if err != nil {
			return err
		}
		session.UpdatePosition(p)
		return nil
	case "interact":
		if arg == "" {
			return fmt.Errorf("interact needs a target")
		}
		if !session.Interact(player.Event{CharacterID: arg, ObjectName: arg}) {
			return fmt.Errorf("nothing is waiting on %s", arg)
		}
		return nil
	case "help":
		return errors.New(playHelp)
	}

	n, err := strconv.Atoi(verb)
	if err != nil {
		return fmt.Errorf("unknown command %q (try help)", line)
	}
	return session.Choose(n - 1)
}

func parseLatLng(value string) (story.LatLng, error) {
	latText, lngText, ok := strings.Cut(value, ",")
	if !ok {
		return story.LatLng{}, fmt.Errorf("invalid position %q: expected lat,lng", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return story.LatLng{}, fmt.Errorf("invalid latitude %q", latText)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return story.LatLng{}, fmt.Errorf("invalid longitude %q", lngText)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return story.LatLng{}, fmt.Errorf("position %q out of range", value)
	}
	return story.LatLng{Lat: lat, Lng: lng}, nil
}

func printSnapshot(out io.Writer, snap player.Snapshot) {
	step := snap.Current
	speaker := ""
	if step.Actor != nil {
		speaker = step.Actor.Name + ": "
	}

	switch step.Action {
	case choreography.ActionBegin:
		fmt.Fprintf(out, "[%s] story begins\n", step.ID)
	case choreography.ActionText:
		fmt.Fprintf(out, "[%s] %s%s\n", step.ID, speaker, step.Data.Text)
	case choreography.ActionChoice:
		fmt.Fprintf(out, "[%s] %s%s\n", step.ID, speaker, step.Data.Text)
		for i, option := range step.Data.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, option.Label)
		}
	case choreography.ActionEnd:
		fmt.Fprintf(out, "[%s] The end: %s\n", step.ID, snap.Ending)
	}

	if gate := snap.Gate; gate != nil {
		switch {
		case gate.Err != nil:
			fmt.Fprintf(out, "  blocked: %v\n", gate.Err)
		case gate.Kind == player.GateGeofence && gate.Measured:
			fmt.Fprintf(out, "  waiting: reach %s (%.1f m away)\n", gate.Target, gate.Distance)
		case gate.Kind == player.GateGeofence:
			fmt.Fprintf(out, "  waiting: reach %s\n", gate.Target)
		default:
			fmt.Fprintf(out, "  waiting: %s %s\n", gate.Interaction, gate.Target)
		}
	}
}
