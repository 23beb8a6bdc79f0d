package engine

import (
	"strings"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{"1,500", 1500, true},
		{"1500.75", 1500, true}, // fractional part truncated, never rounded
		{"5,000", 5000, true},
		{"0", 0, true},
		{"12,345,678.99", 12345678, true},
		{"abc", 0, false},
		{"", 0, false},
		{"  250  ", 250, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseAmount(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseAmount(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"2024-01-01 10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), true},
		{"08/01/2024 16:31:46", time.Date(2024, 1, 8, 16, 31, 46, 0, time.UTC), true},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseDate(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("parseDate(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRawDateRegions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "date label",
			body: "Completed. Date: 2024-01-01 10:00:00.",
			want: "2024-01-01 10:00:00",
		},
		{
			name: "at clause",
			body: "has been completed at 2024-03-01 14:00:11. Fee was 0 RWF.",
			want: "2024-03-01 14:00:11",
		},
		{
			name: "bare ISO timestamp",
			body: "processed 2024-06-10 21:23:51 successfully",
			want: "2024-06-10 21:23:51",
		},
		{
			name: "no date",
			body: "Your payment of 1,500 RWF to Jane Smith has been completed.",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rawDate(tt.body); got != tt.want {
				t.Errorf("rawDate(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestRawReference(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"transaction id label", "Done. Transaction ID: 123456.", "123456"},
		{"txid label", "TxId: 73214484437. Done.", "73214484437"},
		{"financial id label", "Financial Transaction Id: 51732411227.", "51732411227"},
		{"ref label", "Ref: AB12CD", "AB12CD"},
		{"financial label wins over bare txid", "TxId: 111. Financial Transaction Id: 222.", "222"},
		{"absent", "Your payment has been completed.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rawReference(tt.body); got != tt.want {
				t.Errorf("rawReference(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestRawFee(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"colon label", "has been completed. Fee: 20 RWF. Date: 2024-01-02.", "20"},
		{"fee was", "completed at 2024-03-01 14:00:11. Fee was 0 RWF.", "0"},
		{"fee paid", "withdrawn 20,000 RWF. Fee paid: 200 RWF.", "200"},
		{"absent", "no fee mentioned", ""},
		{"fee inside another word", "payment to Black Coffee: 300 RWF completed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rawFee(tt.body); got != tt.want {
				t.Errorf("rawFee(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestRawBalance(t *testing.T) {
	body := "withdrawn 20,000 RWF on 2024-04-02. Your new balance: 5,000 RWF. Fee paid: 200 RWF."

	if got := rawBalance(body); got != "5,000" {
		t.Errorf("rawBalance() = %q, want %q", got, "5,000")
	}
	if got := rawBalance("no balance mentioned"); got != "" {
		t.Errorf("rawBalance() = %q, want empty", got)
	}
}

func TestFallbackIDStable(t *testing.T) {
	body := "Your payment of 1,500 RWF to Jane Smith has been completed."

	first := fallbackID(body)
	if !strings.HasPrefix(first, "TX") || len(first) != 18 {
		t.Fatalf("fallbackID() = %q, want TX prefix and 16 hex digits", first)
	}
	for i := 0; i < 5; i++ {
		if got := fallbackID(body); got != first {
			t.Fatalf("fallbackID() run %d = %q, want %q", i, got, first)
		}
	}

	if fallbackID("some other body") == first {
		t.Error("fallbackID() collided for different bodies")
	}
}
