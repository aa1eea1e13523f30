package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalog/renalog/internal/config"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/output"
	"github.com/renalog/renalog/internal/runtime"
	"github.com/renalog/renalog/internal/storage"
)

// execute runs the CLI against a database in a temporary directory.
func execute(t *testing.T, dbDir string, args ...string) error {
	t.Helper()
	t.Setenv("RENALOG_DATABASE", dbDir)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("log:\n  level: error\n"), 0o644))

	rootCmd.SetArgs(append([]string{"--config", cfgFile, "--format", "json"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return Execute()
}

// =============================================================================
// Command Tests
// =============================================================================

func TestProfileSetPersists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, dir, "profile", "set", "--name", "Ana", "--age", "70", "--start", "2023-01-15"))

	db, err := storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	profile, corrupt, err := storage.NewProfileRepo(db).Get()
	require.NoError(t, err)
	assert.False(t, corrupt)
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, 70, profile.Age)
	assert.Equal(t, model.TreatmentStartDate, profile.Treatment.Kind)
}

func TestMedAddAndTake(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, dir, "med", "add", "Sevelamer", "--dosage", "800 mg", "--at", "08:00"))

	db, err := storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	meds, _, err := storage.NewMedicationRepo(db).List()
	require.NoError(t, err)
	require.Len(t, meds, 1)
	id := meds[0].ShortID()
	require.NoError(t, db.Close())

	require.NoError(t, execute(t, dir, "med", "take", id))

	db, err = storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()
	meds, _, err = storage.NewMedicationRepo(db).List()
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.True(t, meds[0].TakenToday)
	assert.Equal(t, "08:00", meds[0].ReminderTime)
}

func TestUsageErrorsExitWithUsageCode(t *testing.T) {
	dir := t.TempDir()

	err := execute(t, dir, "med", "take", "nothing-matches")
	require.Error(t, err)
	assert.Equal(t, runtime.ExitUsage, ExitCode(err))

	err = execute(t, dir, "profile", "set", "--age", "old")
	require.Error(t, err)
	assert.Equal(t, runtime.ExitUsage, ExitCode(err))
}

func TestNotifyPermissionGrant(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, dir, "notify", "permission", "grant"))

	db, err := storage.Open(storage.Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()
	p, err := storage.NewPermissionRepo(db).Permission()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionGranted, p)
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestNeedsDatabase(t *testing.T) {
	assert.True(t, needsDatabase(recordAddCmd))
	assert.True(t, needsDatabase(medTakeCmd))
	assert.False(t, needsDatabase(daemonRunCmd))
	assert.False(t, needsDatabase(daemonStatusCmd))
	assert.False(t, needsDatabase(configShowCmd))
	assert.False(t, needsDatabase(versionCmd))
}

func TestParseFlags(t *testing.T) {
	assert.Equal(t, output.FormatJSON, parseFormat("json"))
	assert.Equal(t, output.FormatPlain, parseFormat("plain"))
	assert.Equal(t, output.FormatCLI, parseFormat("anything"))

	assert.Equal(t, output.ColorAlways, parseColorMode("always"))
	assert.Equal(t, output.ColorNever, parseColorMode("never"))
	assert.Equal(t, output.ColorAuto, parseColorMode(""))
}

func TestLastRecords(t *testing.T) {
	records := []*model.HealthRecord{{Date: "2024-05-01"}, {Date: "2024-05-02"}, {Date: "2024-05-03"}}

	assert.Len(t, lastRecords(records, 0), 3)
	assert.Len(t, lastRecords(records, 5), 3)
	last := lastRecords(records, 2)
	require.Len(t, last, 2)
	assert.Equal(t, "2024-05-02", last[0].Date)
}

func TestAudioMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"note.m4a", "audio/mp4", true},
		{"NOTE.MP3", "audio/mpeg", true},
		{"note.webm", "audio/webm", true},
		{"note.txt", "", false},
		{"note", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := audioMimeType(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportCSV(t *testing.T) {
	fluid := 2.5
	records := []*model.HealthRecord{
		{Key: "record:abc", Date: "2024-05-01", Weight: 72.4, DryWeight: 70, FluidRemoval: &fluid, Systolic: 128, Diastolic: 82, Notes: "fine, tired"},
		{Key: "record:def", Date: "2024-05-03", Weight: 73, DryWeight: 70},
	}

	var buf bytes.Buffer
	require.NoError(t, exportCSV(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,date,weight_kg,dry_weight_kg,fluid_removal_l,systolic,diastolic,notes", lines[0])
	assert.Equal(t, `abc,2024-05-01,72.4,70,2.5,128,82,"fine, tired"`, lines[1])
	assert.Equal(t, "def,2024-05-03,73,70,,,,", lines[2])
}

func TestMaskedConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AI.APIKey = "AIzaSyD-very-secret-key"
	cfg.Notify.WebhookURL = "https://hooks.slack.com/services/T000/B000/XXXXXXXX"

	masked := maskedConfig(cfg)
	assert.NotContains(t, masked.AI.APIKey, "very-secret")
	assert.NotContains(t, masked.Notify.WebhookURL, "XXXXXXXX")
	assert.Equal(t, "AIzaSyD-very-secret-key", cfg.AI.APIKey)
}

func TestTailFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644))

	lines, err := tailFile(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)
}

func TestCompleteFrequencies(t *testing.T) {
	got, directive := completeFrequencies(medAddCmd, nil, "t")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.ElementsMatch(t, []string{"twice daily", "three times daily"}, got)
}
