package index

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/labjournal/internal/models"
	"github.com/starford/labjournal/internal/testutil"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog()
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_SchemaCreation(t *testing.T) {
	c := testCatalog(t)
	var count int
	for _, table := range []string{"experiments", "tags", "edges"} {
		if err := c.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestCatalog_LeadsToMatchesBuilder(t *testing.T) {
	root, store := testutil.TestJournal(t)
	testutil.WriteExperiment(t, root, "001-a.md", testutil.Experiment("001", "[]"))
	testutil.WriteExperiment(t, root, "002-b.md", testutil.Experiment("002", `["001"]`))
	testutil.WriteExperiment(t, root, "003-c.md", testutil.Experiment("003", `["001", "002"]`))

	idx, err := Build(store, quietLogger())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := testCatalog(t)
	if err := Load(c, store, idx, quietLogger()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	n, err := c.Count()
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v; want 3", n, err)
	}
	for _, e := range idx.Experiments {
		got, err := c.LeadsTo(e.ID)
		if err != nil {
			t.Fatalf("LeadsTo(%s): %v", e.ID, err)
		}
		if diff := cmp.Diff(e.LeadsTo, got); diff != "" {
			t.Errorf("LeadsTo(%s) mismatch (-builder +catalog):\n%s", e.ID, diff)
		}
	}

	results, err := c.Search("", Filter{}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != len(idx.Experiments) {
		t.Fatalf("results = %d, want %d", len(results), len(idx.Experiments))
	}
	for i, r := range results {
		if diff := cmp.Diff(idx.Experiments[i].LeadsTo, r.LeadsTo); diff != "" {
			t.Errorf("result %s leads_to mismatch (-builder +search):\n%s", r.ID, diff)
		}
	}
}

func TestCatalog_SearchText(t *testing.T) {
	c := testCatalog(t)
	_ = c.Insert(0, models.Experiment{ID: "001", Slug: "warmup", Status: "pending"}, "001: warmup", "The uniqueword appears here.")
	_ = c.Insert(1, models.Experiment{ID: "002", Slug: "sweep", Status: "concluded"}, "002: sweep", "Nothing special.")

	results, err := c.Search("uniqueword", Filter{}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "001" {
		t.Errorf("search results = %+v, want 1 hit for 001", results)
	}
}

func TestCatalog_SearchFilters(t *testing.T) {
	c := testCatalog(t)
	_ = c.Insert(0, models.Experiment{ID: "001", Type: "hypothesis", Status: "pending", Tags: []string{"lr"}}, "", "")
	_ = c.Insert(1, models.Experiment{ID: "002", Type: "exploration", Status: "concluded", Tags: []string{"lr", "data"}}, "", "")
	_ = c.Insert(2, models.Experiment{ID: "003", Type: "exploration", Status: "concluded"}, "", "")

	cases := []struct {
		name string
		f    Filter
		want []string
	}{
		{"all", Filter{}, []string{"001", "002", "003"}},
		{"status", Filter{Status: "concluded"}, []string{"002", "003"}},
		{"tag", Filter{Tag: "lr"}, []string{"001", "002"}},
		{"type and tag", Filter{Type: "exploration", Tag: "data"}, []string{"002"}},
		{"no match", Filter{Status: "abandoned"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := c.Search("", tc.f, 10)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			got := []string{}
			for _, r := range results {
				got = append(got, r.ID)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalog_LeadsToUnknownID(t *testing.T) {
	c := testCatalog(t)
	got, err := c.LeadsTo("nope")
	if err != nil {
		t.Fatalf("LeadsTo: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil", got)
	}
}

func TestCatalog_SearchPunctuatedQuery(t *testing.T) {
	c := testCatalog(t)
	_ = c.Insert(0, models.Experiment{ID: "001"}, "", "Ran the lr-sweep with cosine decay.")
	_ = c.Insert(1, models.Experiment{ID: "002"}, "", "Only lr was changed.")

	for _, q := range []string{"lr-sweep", `"lr-sweep`, "lr-sweep)"} {
		results, err := c.Search(q, Filter{}, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if q == "lr-sweep" && (len(results) != 1 || results[0].ID != "001") {
			t.Errorf("Search(%q) = %+v, want only 001", q, results)
		}
	}
}

func TestCatalog_SearchSlugAndConclusion(t *testing.T) {
	c := testCatalog(t)
	_ = c.Insert(0, models.Experiment{ID: "001", Slug: "warmup-cosine"}, "", "nothing here")
	_ = c.Insert(1, models.Experiment{ID: "002", Slug: "other", Conclusion: "loss diverged early"}, "", "nothing here")

	cases := map[string]string{"warmup": "001", "diverged": "002"}
	for q, want := range cases {
		results, err := c.Search(q, Filter{}, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 1 || results[0].ID != want {
			t.Errorf("Search(%q) = %+v, want only %s", q, results, want)
		}
	}
}
