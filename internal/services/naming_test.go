package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStorageName(t *testing.T) {
	at := time.UnixMilli(1714555800123)
	tests := []struct {
		client, original, want string
	}{
		{"Ana Gomez", "chair.png", "Ana_Gomez_1714555800123.png"},
		{"  Ana \t\n Gomez ", "photo.final.JPG", "_Ana_Gomez__1714555800123.JPG"},
		{"Ana Gomez", "x.webp", "Ana_Gomez_1714555800123.webp"},
		{"Ana", "noext", "Ana_1714555800123.noext"},
		{"Ana", "trailing.", "Ana_1714555800123."},
		{"Jose\u0301", "a.png", "Jos\u00e9_1714555800123.png"},
		{"Ali/Sons Traders", "cat.png", "Ali_Sons_Traders_1714555800123.png"},
		{`..\evil`, "a.png", "_evil_1714555800123.png"},
		{".hidden", "a.png", "hidden_1714555800123.png"},
		{"a:b*c?", "a.p/g", "a_b_c__1714555800123.p_g"},
	}
	for _, tc := range tests {
		if got := StorageName(tc.client, tc.original, at); got != tc.want {
			t.Errorf("StorageName(%q, %q) = %q; want %q", tc.client, tc.original, got, tc.want)
		}
	}
}

func TestStorageName_SinglePathElement(t *testing.T) {
	at := time.UnixMilli(1)
	for _, client := range []string{"Ali/Sons Traders", `C:\Users\x`, "../../etc", "a\x00b", "..", "/"} {
		got := StorageName(client, "cat.png", at)
		if got != filepath.Base(got) || strings.HasPrefix(got, ".") || strings.ContainsAny(got, `/\`) {
			t.Errorf("StorageName(%q) = %q is not a plain file name", client, got)
		}
	}
}

func TestSnowflakeIDs_Monotonic(t *testing.T) {
	if _, err := NewSnowflakeIDs(5000); err == nil {
		t.Fatalf("expected error for out-of-range node")
	}
	g, err := NewSnowflakeIDs(1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	prev := g.NextID()
	for i := 0; i < 1000; i++ {
		id := g.NextID()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}
