package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"thingsync/internal/commands"
	"thingsync/internal/config"
	"thingsync/internal/exitcode"
	"thingsync/internal/extract"
)

// listSource serves canned records per Things list name.
type listSource struct {
	byList map[string][]extract.Record
}

func (s *listSource) Count(ctx context.Context, list string) (int, error) {
	return len(s.byList[list]), nil
}

func (s *listSource) Task(ctx context.Context, index int, list string) (extract.Record, error) {
	records := s.byList[list]
	if index < 1 || index > len(records) {
		return extract.Record{}, fmt.Errorf("index %d out of range", index)
	}
	return records[index-1], nil
}

func TestExtractCommand_SingleView(t *testing.T) {
	src := &listSource{byList: map[string][]extract.Record{
		"Today": {
			{Title: "לקנות חלב", LocalID: "uuid-1"},
			{Title: "English task", LocalID: "uuid-2"},
		},
	}}

	cfg := &config.Config{
		Dir:      t.TempDir(),
		StateDir: t.TempDir(),
		Logger:   slog.New(slog.DiscardHandler),
	}

	cmd := &commands.ExtractCmd{}
	cmd.SetSource(src)
	cmd.SetView("today")

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "today: 1 tasks") {
		t.Errorf("output: %q", out.String())
	}

	records, err := extract.ReadCSV(cfg.ViewCSVPath("today"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].LocalID != "uuid-1" {
		t.Errorf("unexpected CSV contents: %+v", records)
	}
}

func TestExtractCommand_LaterViewFiltersEarlierTitles(t *testing.T) {
	src := &listSource{byList: map[string][]extract.Record{
		"Today":    {{Title: "משימה חוזרת", LocalID: "uuid-1"}},
		"Upcoming": {{Title: "משימה חוזרת", LocalID: "uuid-2"}, {Title: "חדשה", LocalID: "uuid-3"}},
	}}

	cfg := &config.Config{
		Dir:      t.TempDir(),
		StateDir: t.TempDir(),
		Logger:   slog.New(slog.DiscardHandler),
	}

	cmd := &commands.ExtractCmd{}
	cmd.SetSource(src)

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, nil, nil, &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}

	upcoming, err := extract.ReadCSV(cfg.ViewCSVPath("upcoming"))
	if err != nil {
		t.Fatal(err)
	}
	if len(upcoming) != 1 || upcoming[0].LocalID != "uuid-3" {
		t.Errorf("duplicate title not filtered: %+v", upcoming)
	}
}

func TestExtractCommand_UnknownView(t *testing.T) {
	cmd := &commands.ExtractCmd{}
	cmd.SetView("inbox")

	_, stderr, code := runCommand(t, cmd, nil, nil, false)
	if code != exitcode.UserError {
		t.Fatalf("expected UserError, got %d", code)
	}
	if !strings.Contains(stderr, "unknown view") {
		t.Errorf("stderr: %q", stderr)
	}
}
