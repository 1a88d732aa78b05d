package index

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func leadsTo(idx *models.JournalIndex) map[string][]string {
	out := make(map[string][]string, len(idx.Experiments))
	for _, e := range idx.Experiments {
		out[e.ID] = e.LeadsTo
	}
	return out
}

func TestBuild_ReverseEdges(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "002-b.md", testutil.Experiment("002", `["001"]`))

	idx, err := Build(store, quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string][]string{"001": {"002"}, "002": {}}
	if diff := cmp.Diff(want, leadsTo(idx)); diff != "" {
		t.Errorf("leads_to mismatch (-want +got):\n%s", diff)
	}
	if idx.Project != "lab-journal" {
		t.Errorf("project = %q", idx.Project)
	}
}

func TestBuild_FileOrderDrivesLeadsToOrder(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "003-c.md", testutil.Experiment("003", `["001"]`))
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "002-b.md", testutil.Experiment("002", `["001", "001"]`))

	idx, err := Build(store, quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var ids []string
	for _, e := range idx.Experiments {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"001", "002", "003"}, ids); diff != "" {
		t.Errorf("experiment order mismatch:\n%s", diff)
	}
	// Duplicate declarations are not deduplicated.
	if diff := cmp.Diff([]string{"002", "002", "003"}, idx.Experiments[0].LeadsTo); diff != "" {
		t.Errorf("leads_to order mismatch:\n%s", diff)
	}
}

func TestBuild_SkipsInvalidDocuments(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "002-noid.md", "---\nslug: placeholder\ndepends_on: [\"001\"]\n---\n")
	testutil.WriteExperiment(t, root, "003-nofm.md", "# just markdown\n")
	testutil.WriteExperiment(t, root, "004-d.md", testutil.Experiment("004", `["placeholder", "001"]`))
	testutil.WriteExperiment(t, root, "notes.txt", "ignored")

	var logs bytes.Buffer
	idx, err := Build(store, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string][]string{"001": {"004"}, "004": {}}
	if diff := cmp.Diff(want, leadsTo(idx)); diff != "" {
		t.Errorf("leads_to mismatch (-want +got):\n%s", diff)
	}
	for _, name := range []string{"skip 002-noid.md", "skip 003-nofm.md"} {
		if !strings.Contains(logs.String(), name) {
			t.Errorf("missing skip diagnostic %q in %s", name, logs.String())
		}
	}
	if !strings.Contains(logs.String(), "count=2") {
		t.Errorf("missing count diagnostic in %s", logs.String())
	}
}

func TestBuild_DanglingDependencyTolerated(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", `["999"]`))

	idx, err := Build(store, quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(idx.Experiments) != 1 || len(idx.Experiments[0].LeadsTo) != 0 {
		t.Errorf("unexpected index: %+v", idx)
	}
}

func TestBuild_DuplicateIDsShareReverseEdges(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "001-b.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "002-c.md", testutil.Experiment("002", `["001"]`))

	idx, err := Build(store, quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, e := range idx.Experiments[:2] {
		if diff := cmp.Diff([]string{"002"}, e.LeadsTo); diff != "" {
			t.Errorf("%s leads_to mismatch:\n%s", e.Source, diff)
		}
	}
}

func TestBuild_MissingDirectoryFails(t *testing.T) {
	_, store := testutil.TestJournal(t)
	if err := os.RemoveAll(filepath.Join(store.Root(), "experiments")); err != nil {
		t.Fatal(err)
	}
	if _, err := Build(store, quietLogger()); err == nil {
		t.Error("expected error for missing experiments directory")
	}
}

func TestEncode_Format(t *testing.T) {
	idx := &models.JournalIndex{
		Project: "lab-journal",
		Experiments: []models.Experiment{{
			ID: "001", Slug: "a<b", DependsOn: nil, Tags: []string{"x"}, LeadsTo: []string{},
		}},
	}
	data, err := Encode(idx)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{
  "project": "lab-journal",
  "experiments": [
    {
      "id": "001",
      "slug": "a<b",
      "type": "",
      "status": "",
      "conclusion_type": "",
      "conclusion": "",
      "depends_on": [],
      "tags": [
        "x"
      ],
      "created": "",
      "leads_to": []
    }
  ]
}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("encoded index mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_EmptyIndex(t *testing.T) {
	data, err := Encode(&models.JournalIndex{Project: "p"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "{\n  \"project\": \"p\",\n  \"experiments\": []\n}\n" {
		t.Errorf("data = %q", data)
	}
}

func TestBuildEncode_Idempotent(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "002-b.md", testutil.Experiment("002", `["001"]`))

	var outputs [][]byte
	for range 2 {
		idx, err := Build(store, quietLogger())
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		data, err := Encode(idx)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Errorf("rebuild not byte-identical:\n%s\n---\n%s", outputs[0], outputs[1])
	}

	var decoded models.JournalIndex
	if err := json.Unmarshal(outputs[0], &decoded); err != nil {
		t.Fatalf("index is not valid JSON: %v", err)
	}
	if len(decoded.Experiments) != 2 {
		t.Errorf("decoded %d experiments", len(decoded.Experiments))
	}
}
