package main

import "testing"

func TestParseSurface(t *testing.T) {
	tests := []struct {
		in      string
		x, y, s int
		wantErr bool
	}{
		{"10,20", 10, 20, 30, false},
		{"10,20,50", 10, 20, 50, false},
		{"10", 0, 0, 0, true},
		{"a,b", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := parseSurface(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.X != tt.x || p.Y != tt.y || p.Size != tt.s {
				t.Errorf("Expected %d,%d,%d, got %+v", tt.x, tt.y, tt.s, p)
			}
		})
	}
}
