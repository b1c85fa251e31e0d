package protocol

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		kind    Kind
		payload string
	}{
		{"gb notify", `GB({"t":"notify"})`, KindGB, `{"t":"notify"}`},
		{"gb empty object", "GB({})", KindGB, "{}"},
		{"gb bare prefix", "GB(", KindGB, ""},
		{"gb missing close paren", `GB({"t":"x"}`, KindGB, `{"t":"x"`},
		{"set time", "setTime(1700000000)E.setTimeZone(-5)", KindSetTime, "1700000000)E.setTimeZone(-5)"},
		{"set time bare", "setTime(", KindSetTime, ""},
		{"plain text", "hello", KindOther, "hello"},
		{"empty", "", KindOther, ""},
		{"lowercase gb", "gb({})", KindOther, "gb({})"},
		{"prefix not at start", " GB({})", KindOther, " GB({})"},
		{"partial set time", "setTim(1)", KindOther, "setTim(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.msg)
			if got.Kind != tt.kind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.msg, got.Kind, tt.kind)
			}
			if got.Payload != tt.payload {
				t.Errorf("Classify(%q).Payload = %q, want %q", tt.msg, got.Payload, tt.payload)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{KindGB: "gb", KindSetTime: "setTime", KindOther: "other"} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
