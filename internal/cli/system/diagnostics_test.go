package system

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/threethings/internal/cli"
	"github.com/julianstephens/threethings/internal/config"
	"github.com/julianstephens/threethings/internal/models"
)

func TestDoctorSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threethings.db")
	ctx, out := contextFor(t, config.Backend{Kind: config.BackendSQLite, Location: path})
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run() failed: %v", err)
	}

	out.Reset()
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("DoctorCmd.Run() failed: %v\n%s", err, out.String())
	}
	for _, want := range []string{"✓ Store reachable", "✓ Schema version", "✓ State document", "⚠ Backups present"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("doctor output missing %q:\n%s", want, out.String())
		}
	}
}

type contextOut struct {
	ctx *cli.Context
	out *bytes.Buffer
}

func seedMemory(t *testing.T, state models.AppState) (*contextOut, error) {
	t.Helper()
	ctx, out := contextFor(t, config.Backend{Kind: config.BackendMemory, Location: ":memory:"})
	data, err := models.EncodeState(state)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.Store.Write(context.Background(), data, 0); err != nil {
		return nil, err
	}
	return &contextOut{ctx, out}, nil
}

func TestDoctorReportsConflicts(t *testing.T) {
	state := models.NewState("2024-05-01")
	state.History = []models.DayRecord{models.NewDay("2024-04-29"), models.NewDay("2024-04-30")}
	c, err := seedMemory(t, state)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := (&DoctorCmd{}).Run(c.ctx); err == nil {
		t.Error("DoctorCmd.Run() succeeded with an unsorted history")
	}
	if !strings.Contains(c.out.String(), "❌ State document") {
		t.Errorf("doctor output = %s", c.out.String())
	}
}

func TestValidateFix(t *testing.T) {
	state := models.NewState("2024-05-01")
	state.History = []models.DayRecord{models.NewDay("2024-04-29"), models.NewDay("2024-04-30"), models.NewDay("2024-04-29")}
	c, err := seedMemory(t, state)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := (&ValidateCmd{}).Run(c.ctx); err == nil {
		t.Error("ValidateCmd.Run() without --fix succeeded")
	}
	if err := (&ValidateCmd{Fix: true}).Run(c.ctx); err != nil {
		t.Fatalf("ValidateCmd{Fix}.Run() failed: %v", err)
	}

	got, err := c.ctx.Adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(got.History) != 2 || got.History[0].Date != "2024-04-30" {
		t.Errorf("history after fix = %+v", got.History)
	}

	c.out.Reset()
	if err := (&ValidateCmd{}).Run(c.ctx); err != nil {
		t.Errorf("ValidateCmd.Run() after fix failed: %v", err)
	}
	if !strings.Contains(c.out.String(), "No conflicts detected.") {
		t.Errorf("validate output = %q", c.out.String())
	}
}

func TestDebugDump(t *testing.T) {
	state := models.NewState("2024-05-01")
	state.History = []models.DayRecord{models.NewDay("2024-04-30")}
	c, err := seedMemory(t, state)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := (&DebugDumpCmd{Date: "2024-04-30"}).Run(c.ctx); err != nil {
		t.Fatalf("DebugDumpCmd.Run() failed: %v", err)
	}
	var day models.DayRecord
	if err := json.Unmarshal(c.out.Bytes(), &day); err != nil {
		t.Fatalf("output is not a day record: %v\n%s", err, c.out.String())
	}
	if day.Date != "2024-04-30" {
		t.Errorf("dumped date = %q", day.Date)
	}

	if err := (&DebugDumpCmd{Date: "1999-01-01"}).Run(c.ctx); err == nil {
		t.Error("DebugDumpCmd.Run() for a missing date succeeded")
	}
}
