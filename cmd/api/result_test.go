package api

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseResultClassifies(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantNil  bool
		wantKind ResultKind
	}{
		{"null", `null`, true, 0},
		{"empty input", ``, true, 0},
		{"array of records", `[{"a":1}]`, false, ResultTable},
		{"empty array", `[]`, false, ResultTable},
		{"object", `{"mean":2.5}`, false, ResultKeyValue},
		{"number", `42`, false, ResultScalar},
		{"zero is still a result", `0`, false, ResultScalar},
		{"false is still a result", `false`, false, ResultScalar},
		{"string", `"done"`, false, ResultScalar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResult([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseResult(%q) error: %v", tt.raw, err)
			}
			if tt.wantNil {
				if res != nil {
					t.Fatalf("ParseResult(%q) = %+v, want nil", tt.raw, res)
				}
				return
			}
			if res == nil {
				t.Fatalf("ParseResult(%q) = nil", tt.raw)
			}
			if res.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", res.Kind, tt.wantKind)
			}
		})
	}
}

func TestParseResultKeepsKeyOrder(t *testing.T) {
	raw := `[{"zeta":1,"alpha":"x","mid":null},{"alpha":"y","zeta":2}]`
	res, err := ParseResult([]byte(raw))
	if err != nil {
		t.Fatalf("ParseResult error: %v", err)
	}
	if want := []string{"zeta", "alpha", "mid"}; !reflect.DeepEqual(res.Columns, want) {
		t.Fatalf("columns = %v, want %v", res.Columns, want)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	// second row keeps its own order; cells are positional
	if got := res.Rows[1].Keys(); !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Errorf("second row keys = %v", got)
	}
	if v, ok := res.Rows[0].Get("zeta"); !ok || v != json.Number("1") {
		t.Errorf("Get(zeta) = %v, %v", v, ok)
	}
}

func TestParseResultScalarArray(t *testing.T) {
	res, err := ParseResult([]byte(`["East","West"]`))
	if err != nil {
		t.Fatalf("ParseResult error: %v", err)
	}
	if !reflect.DeepEqual(res.Columns, []string{"value"}) {
		t.Fatalf("columns = %v", res.Columns)
	}
	if v, _ := res.Rows[1].Get("value"); v != "West" {
		t.Errorf("row 1 = %v", v)
	}
}

func TestParseResultInvalid(t *testing.T) {
	if _, err := ParseResult([]byte(`{"a":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestResultRoundTripsRaw(t *testing.T) {
	raw := `{"b":1,"a":2}`
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("marshal = %s, want %s", out, raw)
	}
}

func TestRecordMarshalKeepsOrder(t *testing.T) {
	rec := Record{{Key: "z", Value: 1}, {Key: "a", Value: "x"}}
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"z":1,"a":"x"}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestStringListTolerant(t *testing.T) {
	tests := []struct {
		raw  string
		want StringList
	}{
		{`["filter","groupby"]`, StringList{"filter", "groupby"}},
		{`"single step"`, StringList{"single step"}},
		{`[1, {"op":"sum"}]`, StringList{"1", `{"op":"sum"}`}},
		{`null`, nil},
	}
	for _, tt := range tests {
		var got StringList
		if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("unmarshal %s = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestVisualizationAcceptsStringOrObject(t *testing.T) {
	var resp ChatResponse
	if err := json.Unmarshal([]byte(`{"success":true,"message":"ok","visualization":"{\"data\":[]}"}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Visualization != `{"data":[]}` {
		t.Errorf("string form = %q", resp.Visualization)
	}
	resp = ChatResponse{}
	if err := json.Unmarshal([]byte(`{"success":true,"message":"ok","visualization":{"data":[]}}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Visualization != `{"data":[]}` {
		t.Errorf("object form = %q", resp.Visualization)
	}
	resp = ChatResponse{}
	if err := json.Unmarshal([]byte(`{"success":true,"message":"ok","visualization":null,"result":null}`), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Visualization != "" || resp.Result != nil {
		t.Errorf("null fields = %q, %+v", resp.Visualization, resp.Result)
	}
}
