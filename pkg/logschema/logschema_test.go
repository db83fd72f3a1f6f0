package logschema

import "testing"

func TestParseRecord(t *testing.T) {
	line := []byte(`{"log_schema":"tremor.log.v1","ts":"2009-01-02T00:00:00Z","level":"info","msg":"Epoch complete","event":"Epoch","component":{"type":"TRAINER","id":"x"}}`)
	rec, err := ParseRecord(line)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if rec.String(FieldEvent) != "Epoch" || rec.Component() != "TRAINER" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec.String("missing") != "" {
		t.Fatalf("expected empty string for missing field")
	}
}

func TestParseRecordRejects(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"missing msg":   `{"log_schema":"tremor.log.v1","ts":"x","level":"info"}`,
		"wrong schema":  `{"log_schema":"other.v1","ts":"x","level":"info","msg":"m"}`,
		"missing level": `{"log_schema":"tremor.log.v1","ts":"x","msg":"m"}`,
	}
	for name, line := range cases {
		if _, err := ParseRecord([]byte(line)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
