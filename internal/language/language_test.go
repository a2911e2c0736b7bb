package language

import "testing"

func TestLookupAliases(t *testing.T) {
	cases := map[string]string{
		"ta": "ta", "TAM": "ta", " Tamil ": "ta",
		"eng": "en", "fre": "fr", "fra": "fr", "chi": "zh", "bangla": "bn",
	}
	for input, want := range cases {
		info, ok := Lookup(input)
		if !ok || info.Code != want {
			t.Errorf("Lookup(%q) = %+v, %v; want code %q", input, info, ok, want)
		}
	}
	if _, ok := Lookup("klingon"); ok {
		t.Fatal("expected unknown language to miss")
	}
}

func TestToISO2(t *testing.T) {
	tests := []struct{ input, want string }{
		{"tam", "ta"},
		{"Telugu", "te"},
		{"xy", "xy"},
		{"xyz", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.want {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDisplayNameAndScript(t *testing.T) {
	tests := []struct{ code, name, script string }{
		{"ta", "Tamil", "Tamil"},
		{"hin", "Hindi", "Devanagari"},
		{"en", "English", "Latin"},
		{"xyz", "XYZ", ""},
		{"", "Unknown", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.code); got != tt.name {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.code, got, tt.name)
		}
		if got := Script(tt.code); got != tt.script {
			t.Errorf("Script(%q) = %q, want %q", tt.code, got, tt.script)
		}
	}
}
