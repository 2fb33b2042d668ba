package errors

import (
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
			name:    "structural error",
			code:    CodeNoContainer,
			wantMsg: "Context write without container",
			wantCat: CategoryStructural,
		},
		{
			name:    "render error",
			code:    CodeRenderFailed,
			wantMsg: "Component render failed",
			wantCat: CategoryRender,
		},
		{
			name:    "config error",
			code:    CodeInvalidConfig,
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "W999",
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
	err := Newf(CategoryCLI, "file %q not found", "a.yaml")
	if err.Message != `file "a.yaml" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeUnknownNodeType).WithDetailf("got %T", 1.5i)
	got := err.Error()
	if got != "W001: Unknown node type (got complex128)" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := New(CodeConfigRead).Wrap(fmt.Errorf("permission denied"))
	if !strings.HasSuffix(wrapped.Error(), ": permission denied") {
		t.Errorf("Error() = %q, want wrapped suffix", wrapped.Error())
	}
}

func TestIsAndUnwrap(t *testing.T) {
	base := fmt.Errorf("boom")
	err := fmt.Errorf("outer: %w", New(CodeTransport).Wrap(base))

	if !stderrors.Is(err, New(CodeTransport)) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New(CodeNoHost)) {
		t.Error("errors.Is matched a different code")
	}
	if !stderrors.Is(err, base) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if !HasCode(err, CodeTransport) {
		t.Error("HasCode should find W060")
	}
	if HasCode(base, CodeTransport) {
		t.Error("HasCode matched a plain error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeTransport) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(CodeNoHost)
	if got := FromError(fmt.Errorf("ctx: %w", orig), CodeTransport); got != orig {
		t.Error("FromError should return the existing WeaveError")
	}

	got := FromError(fmt.Errorf("plain"), CodeTransport)
	if got.Code != CodeTransport || got.Wrapped == nil {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New(CodeNoContainer).WithDetail("key theme").Format()
	for _, want := range []string{"ERROR W003: Context write without container", "key theme", "Hint: "} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestRegistryCodesHaveCategories(t *testing.T) {
	for code, tmpl := range registry {
		if tmpl.Category == "" {
			t.Errorf("code %s has no category", code)
		}
		if tmpl.Message == "" {
			t.Errorf("code %s has no message", code)
		}
	}
}
