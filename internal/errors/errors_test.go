package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "type mismatch",
			code:    "R001",
			wantMsg: "Type mismatch on set",
			wantCat: CategoryStore,
		},
		{
			name:    "listener panic",
			code:    "R020",
			wantMsg: "Listener panicked during broadcast",
			wantCat: CategoryListener,
		},
		{
			name:    "duplicate identifier",
			code:    "W001",
			wantMsg: "Duplicate store identifier",
			wantCat: CategoryDiagnostic,
		},
		{
			name:    "unknown error code",
			code:    "R999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryStore, "store %q not ready", "user")
	if err.Message != `store "user" not ready` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestReworkError_Error(t *testing.T) {
	err := New("R001").WithStore("user").WithDetail("record vs string")
	want := `R001: Type mismatch on set (store "user"): record vs string`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &ReworkError{Message: "plain"}
	if plain.Error() != "plain" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "plain")
	}
}

func TestReworkError_Is(t *testing.T) {
	sentinel := New("R001")
	err := fmt.Errorf("set failed: %w", New("R001").WithStore("user"))

	if !stderrors.Is(err, sentinel) {
		t.Error("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New("R002")) {
		t.Error("expected different codes not to match")
	}
	if stderrors.Is(err, &ReworkError{Message: "no code"}) {
		t.Error("expected codeless target not to match")
	}
}

func TestReworkError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("R020").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R120") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("R002")
	if FromError(orig, "R120") != orig {
		t.Error("FromError should return ReworkError unchanged")
	}

	wrapped := FromError(stderrors.New("io"), "R120")
	if wrapped.Code != "R120" || wrapped.Wrapped == nil {
		t.Errorf("unexpected wrap: %+v", wrapped)
	}
}

func TestWarning(t *testing.T) {
	if !New("W001").Warning() {
		t.Error("W001 should be a warning")
	}
	if New("R001").Warning() {
		t.Error("R001 should not be a warning")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("R001").
		WithStore("user").
		WithSuggestion("Pass a record").
		Format()

	for _, want := range []string{"ERROR R001: Type mismatch on set", "store user", "Hint: Pass a record", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	warn := New("W001").Format()
	if !strings.Contains(warn, "WARNING W001") {
		t.Errorf("expected warning label, got:\n%s", warn)
	}
}

func TestFormatCompact(t *testing.T) {
	got := New("R002").WithStore("cart").FormatCompact()
	want := "R002: Unknown store identifier [cart]"
	if got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("R001").WithStore("user").FormatJSON()

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", err)
	}
	if decoded["code"] != "R001" || decoded["store"] != "user" {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("words lost: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce nil")
	}
}

func TestAllCodesHaveTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.DocURL == "" {
			t.Errorf("code %s has incomplete template", code)
		}
	}
}

func TestGetAllCodes_Sorted(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) != len(registry) {
		t.Fatalf("len = %d, want %d", len(codes), len(registry))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	if _, ok := GetTemplate("R999"); ok {
		t.Error("GetTemplate(R999) should not be found")
	}
}

func TestColorsEnabled(t *testing.T) {
	DisableColors()
	if ColorsEnabled() {
		t.Error("ColorsEnabled() = true after DisableColors")
	}
	if got := red("x"); got != "x" {
		t.Errorf("red() = %q with colors off", got)
	}
	EnableColors()
	if !ColorsEnabled() {
		t.Error("ColorsEnabled() = false after EnableColors")
	}
}
