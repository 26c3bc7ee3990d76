package prompt

import (
	"strings"
	"testing"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

func TestBuildRelationalEmbedsSchema(t *testing.T) {
	got := Build(TaskTranslateRelational, "  top relationship managers ", schema.Portfolios())
	if !strings.Contains(got, schema.Portfolios().Describe()) {
		t.Fatalf("prompt missing schema block: %s", got)
	}
	if !strings.HasSuffix(got, "Question: top relationship managers\nSQL Query:") {
		t.Fatalf("prompt suffix = %q", got[len(got)-60:])
	}
}

func TestBuildDocumentListsFields(t *testing.T) {
	got := Build(TaskTranslateDocument, "high risk clients", schema.Clients())
	if !strings.Contains(got, "Use only the fields: name, risk, age, city, preferences") {
		t.Fatalf("prompt missing field list: %s", got)
	}
	if !strings.HasSuffix(got, "MongoDB Filter:") {
		t.Fatalf("prompt should end with filter label: %s", got)
	}
}

func TestBuildClassifyMentionsBothStores(t *testing.T) {
	got := Build(TaskClassify, "who are the high risk clients", nil)
	if !strings.Contains(got, "Collection: clients") || !strings.Contains(got, "Table: portfolios") {
		t.Fatalf("classify prompt missing a store: %s", got)
	}
	if !strings.Contains(got, "mongo or sql") {
		t.Fatalf("classify prompt missing reply constraint: %s", got)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	for _, task := range []Task{TaskClassify, TaskTranslateDocument, TaskTranslateRelational, TaskNarrate} {
		a := Build(task, "q", schema.Clients())
		b := Build(task, "q", schema.Clients())
		if a != b {
			t.Fatalf("Build(%s) not deterministic", task)
		}
	}
}
