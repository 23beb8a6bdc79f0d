package main

import "testing"

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_init_dataset.sql", true, "0001", "init_dataset"},
		{"0002_create_tables.sql", true, "0002", "create_tables"},
		{"001_short_version.sql", false, "", ""},
		{"0001_missing_extension", false, "", ""},
		{"0001.sql", false, "", ""},
		{"init_0001_wrong_order.sql", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationFilePattern.FindStringSubmatch(tt.filename)
			if tt.valid {
				if matches == nil {
					t.Fatalf("%q should match", tt.filename)
				}
				if matches[1] != tt.version || matches[2] != tt.name {
					t.Errorf("got (%q, %q), want (%q, %q)", matches[1], matches[2], tt.version, tt.name)
				}
			} else if matches != nil {
				t.Errorf("%q should not match, got %v", tt.filename, matches)
			}
		})
	}
}
