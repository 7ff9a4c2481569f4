package store

import (
	"encoding/json"
	"strconv"
	"testing"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i], _ = it["id"].(string)
	}
	return out
}

func TestNewestFirst(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		limit int
		want  []string
	}{
		{
			name:  "empty",
			items: nil,
			limit: 20,
			want:  []string{},
		},
		{
			name: "descending with mixed number types",
			items: []Item{
				{"id": "a", "createdAt": json.Number("2")},
				{"id": "b", "createdAt": 3.0},
				{"id": "c", "createdAt": int64(1)},
			},
			limit: 20,
			want:  []string{"b", "a", "c"},
		},
		{
			name: "ties keep input order",
			items: []Item{
				{"id": "a", "createdAt": 5},
				{"id": "b", "createdAt": 7},
				{"id": "c", "createdAt": 5},
				{"id": "d", "createdAt": 7},
			},
			limit: 0,
			want:  []string{"b", "d", "a", "c"},
		},
		{
			name: "missing createdAt sorts last",
			items: []Item{
				{"id": "a"},
				{"id": "b", "createdAt": 1},
			},
			limit: 20,
			want:  []string{"b", "a"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(NewestFirst(tc.items, tc.limit))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v want %v", got, tc.want)
				}
			}
		})
	}
}

func TestNewestFirstTruncatesAndDoesNotMutate(t *testing.T) {
	var items []Item
	for i := 1; i <= 25; i++ {
		items = append(items, Item{"id": strconv.Itoa(i), "createdAt": i})
	}

	got := NewestFirst(items, 20)
	if len(got) != 20 {
		t.Fatalf("len=%d want 20", len(got))
	}
	if CreatedAt(got[0]) != 25 || CreatedAt(got[19]) != 6 {
		t.Fatalf("range = %v..%v want 25..6", CreatedAt(got[0]), CreatedAt(got[19]))
	}
	if items[0]["id"] != "1" {
		t.Fatalf("input was reordered")
	}
}

func TestOldestFirst(t *testing.T) {
	got := ids(OldestFirst([]Item{
		{"id": "x", "createdAt": 3},
		{"id": "y", "createdAt": 1},
		{"id": "z", "createdAt": 2},
	}))
	if got[0] != "y" || got[1] != "z" || got[2] != "x" {
		t.Fatalf("got %v", got)
	}
}
