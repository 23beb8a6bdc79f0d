package gcs

import "testing"

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://exports/2024/01/momo.xml", "exports", "2024/01/momo.xml", false},
		{"gs://exports/momo.xml", "exports", "momo.xml", false},
		{"gs://exports", "", "", true},
		{"gs://exports/", "", "", true},
		{"http://exports/momo.xml", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = (%q, %q), want (%q, %q)", tt.uri, bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

func TestFilenameFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://exports/2024/01/momo.xml", "momo.xml"},
		{"gs://exports/momo.xml", "momo.xml"},
		{"gs://exports", "exports"},
	}

	for _, tt := range tests {
		if got := FilenameFromURI(tt.uri); got != tt.want {
			t.Errorf("FilenameFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestURI(t *testing.T) {
	if got := URI("exports", "2024/momo.xml"); got != "gs://exports/2024/momo.xml" {
		t.Errorf("URI() = %q", got)
	}
}
