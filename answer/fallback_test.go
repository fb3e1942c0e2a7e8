package answer

import (
	"strings"
	"testing"

	"github.com/wakalAIagency/tamhid-chat-api/core"
)

func TestBuildContextNumbersAndCitesMatches(t *testing.T) {
	matches := []core.Match{
		{Content: "first chunk", Metadata: core.ChunkMetadata{SourceURL: "https://example.com/a", Source: "a.md"}},
		{Content: "second chunk", Metadata: core.ChunkMetadata{Source: "b.md"}},
		{Content: "third chunk"},
	}

	got := BuildContext(matches)
	want := "[[1]]\nfirst chunk\n(Source: https://example.com/a)\n\n" +
		"[[2]]\nsecond chunk\n(Source: b.md)\n\n" +
		"[[3]]\nthird chunk\n(Source: N/A)"
	if got != want {
		t.Fatalf("BuildContext() = %q, want %q", got, want)
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Fatalf("BuildContext(nil) = %q, want empty", got)
	}
}

func TestSourcesDedupPreservesOrder(t *testing.T) {
	matches := []core.Match{
		{Metadata: core.ChunkMetadata{SourceURL: "https://example.com/a"}},
		{Metadata: core.ChunkMetadata{Source: "b.md"}},
		{Metadata: core.ChunkMetadata{SourceURL: "https://example.com/a"}},
		{Metadata: core.ChunkMetadata{}},
	}

	got := Sources(matches)
	if len(got) != 2 || got[0] != "https://example.com/a" || got[1] != "b.md" {
		t.Fatalf("Sources() = %v", got)
	}
}

func TestWhatsAppURLEncodesSpacesAsPercent20(t *testing.T) {
	got := WhatsAppURL("96895525211", "مرحبا، أريد المساعدة في خدمات تمهيد")
	if !strings.HasPrefix(got, "https://wa.me/96895525211?text=") {
		t.Fatalf("unexpected URL prefix: %q", got)
	}
	if strings.Contains(got, "+") {
		t.Fatalf("URL should use %%20 for spaces, got %q", got)
	}
	if !strings.Contains(got, "%20") {
		t.Fatalf("URL should contain encoded spaces, got %q", got)
	}
}

func TestIsNoAnswer(t *testing.T) {
	cfg := DefaultFallbackConfig()

	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"sentinel", "NO_ANSWER", true},
		{"sentinel embedded", "I must say no_answer here.", true},
		{"dont know upper", "I DON'T KNOW what that is.", true},
		{"arabic refusal", "عذراً، لا أعرف الإجابة", true},
		{"arabic no info", "لا أملك معلومات كافية", true},
		{"empty", "", true},
		{"whitespace", "   \n", true},
		{"real answer", "تمهيد تقدم خدمات التوثيق والترجمة.", false},
		{"english answer", "We offer translation services.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.IsNoAnswer(tt.reply); got != tt.want {
				t.Fatalf("IsNoAnswer(%q) = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestFallbackTextCarriesContactLink(t *testing.T) {
	cfg := DefaultFallbackConfig()
	text := cfg.Text()
	if !strings.Contains(text, cfg.ContactURL) {
		t.Fatalf("fallback text should embed the contact URL, got %q", text)
	}
	if !strings.Contains(text, "[اضغط هنا للتواصل](") {
		t.Fatalf("fallback text should be a Markdown link, got %q", text)
	}
}
