package feed

import (
	"testing"
	"time"
)

func TestVerifier_Run(t *testing.T) {
	generator := NewGenerator()
	verifier := NewVerifier()

	items := []Item{
		generator.Item("bow week1", testThing(), time.Now()),
		generator.Item("bow week1", testThing(), time.Now()),
	}
	data, err := generator.Marshal(generator.Document(items, Metadata{Title: "t"}))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := verifier.Run(data, 2); err != nil {
		t.Errorf("Expected generated feed to verify, got: %v", err)
	}
	if err := verifier.Run(data, 3); err == nil {
		t.Error("Expected item count mismatch to fail")
	}
}

func TestVerifier_RejectsOtherFormats(t *testing.T) {
	verifier := NewVerifier()

	rss := `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`
	if err := verifier.Run([]byte(rss), 0); err == nil {
		t.Error("Expected RSS document to be rejected")
	}
	if err := verifier.Run([]byte("not a feed"), 0); err == nil {
		t.Error("Expected garbage to be rejected")
	}
}
