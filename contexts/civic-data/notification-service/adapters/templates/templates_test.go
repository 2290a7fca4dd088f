package templates

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"openknesset/contexts/civic-data/notification-service/domain/entities"
)

func TestSectionTitles(t *testing.T) {
	renderer := NewRenderer("oknesset.org")

	cases := map[entities.EntityType]string{
		entities.EntityTypeMember: "Followed MKs",
		entities.EntityTypeAgenda: "Followed Agendas",
		entities.EntityTypeOther:  "Other Updates",
	}
	for bucket, want := range cases {
		text, html := renderer.SectionTitle(bucket)
		if text != want {
			t.Fatalf("bucket %s: unexpected title %q", bucket, text)
		}
		if !strings.Contains(html, want) {
			t.Fatalf("bucket %s: unexpected HTML title %q", bucket, html)
		}
	}
}

func TestActionFragmentVerbFallback(t *testing.T) {
	renderer := NewRenderer("oknesset.org")
	action := entities.Action{
		ActorName:   "MK Seven",
		Verb:        "joined committee",
		Description: "the finance committee",
		TargetURL:   "/committees/3",
		Timestamp:   time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
	}

	// No activity/joined_committee/ template exists, so the generic one
	// renders verb and description verbatim.
	text, html, err := renderer.ActionFragment(action)
	if err != nil {
		t.Fatalf("action fragment failed: %v", err)
	}
	if !strings.Contains(text, "MK Seven joined committee the finance committee") {
		t.Fatalf("generic fallback not used: %q", text)
	}
	if !strings.Contains(html, "http://oknesset.org/committees/3") {
		t.Fatalf("HTML fragment missing target link: %q", html)
	}
}

func TestActionFragmentVerbSpecificTemplate(t *testing.T) {
	renderer := NewRenderer("oknesset.org")
	text, _, err := renderer.ActionFragment(entities.Action{
		ActorName:   "MK Seven",
		Verb:        "voted",
		Description: "the budget bill",
	})
	if err != nil {
		t.Fatalf("action fragment failed: %v", err)
	}
	if !strings.Contains(text, "MK Seven voted on the budget bill") {
		t.Fatalf("verb-specific template not used: %q", text)
	}
}

func TestEntityHeaderFallsBackToModelHeader(t *testing.T) {
	renderer := NewRenderer("oknesset.org")
	text, html, err := renderer.EntityHeader(entities.FollowedEntity{
		Type: entities.EntityTypeMember,
		ID:   "mk-7",
		Name: "MK Seven",
	})
	if err != nil {
		t.Fatalf("entity header failed: %v", err)
	}
	if !strings.Contains(text, "MK Seven") {
		t.Fatalf("header missing entity name: %q", text)
	}
	if !strings.Contains(html, "MK Seven") {
		t.Fatalf("HTML header missing entity name: %q", html)
	}
}

func TestRendererFromFSOverridesDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		"notify/member_section.txt":  {Data: []byte("Members you follow\n")},
		"notify/member_section.html": {Data: []byte("<h2>Members you follow</h2>\n")},
	}
	renderer, err := NewRendererFromFS(fsys, "oknesset.org")
	if err != nil {
		t.Fatalf("renderer from fs failed: %v", err)
	}
	text, _ := renderer.SectionTitle(entities.EntityTypeMember)
	if text != "Members you follow" {
		t.Fatalf("override not used: %q", text)
	}
	// Buckets without templates fall back to static titles.
	text, html := renderer.SectionTitle(entities.EntityTypeOther)
	if text != "Other Updates" || html != "<h2>Other Updates</h2>" {
		t.Fatalf("static fallback not used: %q / %q", text, html)
	}
}

func TestMissingTemplateIsAnError(t *testing.T) {
	renderer, err := NewRendererFromFS(fstest.MapFS{}, "oknesset.org")
	if err != nil {
		t.Fatalf("renderer from fs failed: %v", err)
	}
	if _, _, err := renderer.Header(entities.Recipient{Username: "dana"}); err == nil {
		t.Fatalf("expected error for missing frame template")
	}
}
