package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Self Test" {
		t.Errorf("T(AppTitle) = %q, want 'Self Test'", got)
	}
	if got := T(ctx, "StatusPass"); got != "Passed" {
		t.Errorf("T(StatusPass) = %q, want 'Passed'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "AppTitle"); got != "Самопроверка" {
		t.Errorf("T(AppTitle) = %q, want 'Самопроверка'", got)
	}
	if got := Tp(ctx, "ExamsAvailable", 5); got != "Доступно 5 экзаменов." {
		t.Errorf("Tp(ExamsAvailable, 5) = %q", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "ImportProblems", 1); got != "The exam has 1 problem." {
		t.Errorf("Tp(ImportProblems, 1) = %q", got)
	}
	if got := Tp(ctx, "ImportProblems", 3); got != "The exam has 3 problems." {
		t.Errorf("Tp(ImportProblems, 3) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ExamImported", map[string]any{"Filename": "go.json"})
	if got != "Imported go.json." {
		t.Errorf("Td(ExamImported) = %q, want 'Imported go.json.'", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestUnsupportedLanguageFallsBack(t *testing.T) {
	ctx := initLang(t, "de")

	if got := T(ctx, "AppTitle"); got != "Self Test" {
		t.Errorf("T(AppTitle) = %q, want English fallback", got)
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(T(r.Context(), "AppTitle")))
	}))

	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"default", "/", "", "Self Test"},
		{"header", "/", "ru-RU,ru;q=0.9,en;q=0.5", "Самопроверка"},
		{"query wins", "/?lang=en", "ru", "Self Test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSupportedListsMessageFiles(t *testing.T) {
	for _, lang := range []string{"en", "fr"} {
		if err := Init(lang); err != nil {
			t.Fatalf("Init(%s): %v", lang, err)
		}
		var got []string
		for _, tag := range Supported() {
			got = append(got, tag.String())
		}
		if len(got) != 2 || got[0] != "en" || got[1] != "ru" {
			t.Errorf("Init(%s): Supported() = %v, want [en ru]", lang, got)
		}
	}
	t.Cleanup(func() { Init("en") })
}
