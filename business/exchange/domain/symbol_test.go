package domain

import "testing"

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input   string
		want    Symbol
		wantErr bool
	}{
		{input: "BTC/USDT", want: Symbol{Base: "BTC", Quote: "USDT"}},
		{input: "eth/usdt", want: Symbol{Base: "ETH", Quote: "USDT"}},
		{input: "BTCUSDT", wantErr: true},
		{input: "BTC/USDT/X", wantErr: true},
		{input: "/USDT", wantErr: true},
		{input: "BTC/", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSymbol(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSymbol(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSymbol_IsLeveraged(t *testing.T) {
	tests := []struct {
		base string
		want bool
	}{
		{"BTC3L", true},
		{"ETH3S", true},
		{"BTCUP", true},
		{"BTCDOWN", true},
		{"ADABULL", true},
		{"ADABEAR", true},
		{"BTC", false},
		{"UP", false}, // bare suffix is a regular asset name
		{"DOWN", false},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			s := NewSymbol(tt.base, "USDT")
			if got := s.IsLeveraged(); got != tt.want {
				t.Errorf("IsLeveraged(%s) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}
}

func TestSymbol_String(t *testing.T) {
	s := NewSymbol("btc", "usdt")
	if s.String() != "BTC/USDT" {
		t.Errorf("String() = %s", s.String())
	}
	if s.IsZero() {
		t.Error("populated symbol must not be zero")
	}
	if !(Symbol{}).IsZero() {
		t.Error("empty symbol must be zero")
	}
}
