package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/service"
)

const prompt = "you> "

// runChat reads one turn per line until EOF or /quit. The session lives only
// for the duration of the loop.
func runChat(ctx context.Context, in io.Reader, out io.Writer, assistant *service.TurnProcessor, creds domain.Credentials) error {
	sess := domain.Session{ID: "cli"}
	scanner := bufio.NewScanner(in)

	_, _ = fmt.Fprint(out, prompt)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())

		var input service.TurnInput
		switch {
		case line == "":
			_, _ = fmt.Fprint(out, prompt)
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/draft":
			printDraft(out, sess)
			_, _ = fmt.Fprint(out, prompt)
			continue
		case strings.HasPrefix(line, "/voice "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/voice "))
			audio, err := os.ReadFile(path)
			if err != nil {
				_, _ = fmt.Fprintf(out, "cannot read %s: %v\n%s", path, err, prompt)
				continue
			}
			input = service.TurnInput{Modality: domain.ModalityAudio, Audio: audio, MIMEType: audioType(path)}
		default:
			input = service.TurnInput{Modality: domain.ModalityText, Text: line}
		}

		next, result, err := assistant.Process(ctx, sess, creds, input)
		if err != nil {
			return err
		}
		sess = next
		_, _ = fmt.Fprintf(out, "coach> %s\n", result.Reply)
		if result.Draft != nil {
			printItems(out, result.Draft.Items)
			_, _ = fmt.Fprintln(out, "(reply with \"passt\" or \"ok\" to upload)")
		}
		_, _ = fmt.Fprint(out, prompt)
	}
	return scanner.Err()
}

func printDraft(out io.Writer, sess domain.Session) {
	draft, ok := sess.Drafts.Peek()
	if !ok {
		_, _ = fmt.Fprintln(out, "No pending plan.")
		return
	}
	printItems(out, draft.Items)
}

func printItems(out io.Writer, items []domain.WorkoutProposal) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%dmin\n", item.Day(), item.SportType, item.Title, item.DurationSeconds/60)
	}
	_ = w.Flush()
}

func printEvents(out io.Writer, events []domain.RemoteEvent) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tNAME")
	for _, e := range events {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.StartDateLocal, e.Category, e.Name)
	}
	return w.Flush()
}

func audioType(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "audio/") {
		return t
	}
	return "audio/wav"
}
