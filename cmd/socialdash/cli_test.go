package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"social-dashboard-backend/internal/engagement"
)

const sampleCSV = "post id,Post-Type,LIKES,shares,Comments,date_posted\n" +
	"1,Reel,100,10,5,2024-01-01\n" +
	"2,Static,50,5,2,2024-01-02\n"

// runCLI executes the root command in-process and captures its output.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("LANGFLOW_PAYLOAD", "")
	t.Setenv("MOCK_COUNT", "12")
	t.Setenv("MOCK_SEED", "1")

	cmd := newRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand_HelpListsCommands(t *testing.T) {
	stdout, _, err := runCLI(t, "--help")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"serve", "migrate", "seed-demo", "summary", "export", "generate"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help should mention %q, got:\n%s", want, stdout)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	stdout, _, _ := runCLI(t, "--version")
	if !strings.Contains(stdout, "socialdash version "+version) {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestSummaryCommand_PrintsTotalsAndShares(t *testing.T) {
	stdout, _, err := runCLI(t, "summary", "--file", writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Posts: 2", "Likes: 150  Shares: 15  Comments: 7", "50.00%"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("summary should contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestSummaryCommand_FilterByType(t *testing.T) {
	stdout, _, err := runCLI(t, "summary", "-f", writeSample(t), "--type", "Reel")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Likes: 100  Shares: 10  Comments: 5") {
		t.Errorf("expected Reel totals, got:\n%s", stdout)
	}

	stdout, _, _ = runCLI(t, "summary", "-f", writeSample(t), "--type", "Story")
	if !strings.Contains(stdout, "No posts match") || !strings.Contains(stdout, "Likes: 0") {
		t.Errorf("unknown type should print the zero state, got:\n%s", stdout)
	}
}

func TestSummaryCommand_MissingFileFails(t *testing.T) {
	_, _, err := runCLI(t, "summary", "--file", filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Error("missing file should be an error")
	}
}

func TestSummaryCommand_MockDataWithoutFile(t *testing.T) {
	stdout, _, err := runCLI(t, "summary")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Posts: 12") {
		t.Errorf("summary without a file should use MOCK_COUNT posts, got:\n%s", stdout)
	}
}

func TestExportCommand_NormalizesColumns(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")
	stdout, _, err := runCLI(t, "export", "--file", writeSample(t), "--out", out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Wrote 2 posts") {
		t.Errorf("unexpected output %q", stdout)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "Post_ID,Post_Type,Likes,Shares,Comments,Date_Posted\n" +
		"1,Reel,100,10,5,2024-01-01\n" +
		"2,Static,50,5,2,2024-01-02\n"
	if string(got) != want {
		t.Errorf("exported CSV mismatch:\n%s", got)
	}
}

func TestGenerateCommand_SeedIsDeterministic(t *testing.T) {
	first, _, err := runCLI(t, "generate", "--count", "5", "--seed", "7")
	if err != nil {
		t.Fatal(err)
	}
	second, _, _ := runCLI(t, "generate", "-n", "5", "--seed", "7")
	if first != second {
		t.Error("same seed should generate the same CSV")
	}

	ds, err := engagement.Ingest(strings.NewReader(first))
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 5 {
		t.Errorf("expected 5 generated posts, got %d", ds.Len())
	}
}

func TestGenerateCommand_RejectsNegativeCount(t *testing.T) {
	if _, _, err := runCLI(t, "generate", "--count", "-1"); err == nil {
		t.Error("negative count should fail")
	}
}
