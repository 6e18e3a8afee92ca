package tsquery

import "testing"

func TestParseRecordsMultiRow(t *testing.T) {
	line := `clid=1 client_nickname=Thrall\sJr client_database_id=7|clid=2 client_nickname=Grom client_database_id=8`

	records := parseRecords(line)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["client_nickname"] != "Thrall Jr" {
		t.Fatalf("expected unescaped nickname, got %q", records[0]["client_nickname"])
	}
	if records[1]["clid"] != "2" || records[1]["client_database_id"] != "8" {
		t.Fatalf("unexpected second record: %v", records[1])
	}
}

func TestParseRecordFlagsWithoutValue(t *testing.T) {
	record := parseRecord("sgid=5 name=Grunt savedb")
	if record["sgid"] != "5" || record["name"] != "Grunt" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["savedb"]; !ok {
		t.Fatalf("expected flag key to be present: %v", record)
	}
}

func TestParseNotification(t *testing.T) {
	line := `notifycliententerview cfid=0 ctid=1 clid=42 client_unique_identifier=dGVzdA== client_nickname=Thrall`

	n := parseNotification(line)
	if n.Event != "notifycliententerview" {
		t.Fatalf("unexpected event name %q", n.Event)
	}
	if n.Args["clid"] != "42" || n.Args["client_unique_identifier"] != "dGVzdA==" {
		t.Fatalf("unexpected args: %v", n.Args)
	}
}

func TestParseErrorLine(t *testing.T) {
	id, msg := parseError(`error id=512 msg=invalid\sclientID`)
	if id != 512 || msg != "invalid clientID" {
		t.Fatalf("parseError = %d, %q", id, msg)
	}

	id, msg = parseError("error id=0 msg=ok")
	if id != 0 || msg != "ok" {
		t.Fatalf("parseError ok line = %d, %q", id, msg)
	}
}

func TestResponseErr(t *testing.T) {
	ok := &Response{ErrorID: 0, Message: "ok"}
	if ok.Err() != nil {
		t.Fatalf("expected nil error for id=0")
	}

	failed := &Response{ErrorID: 2568, Message: "insufficient client permissions"}
	err := failed.Err()
	if err == nil {
		t.Fatalf("expected error for non-zero id")
	}
	qe, isQuery := err.(*QueryError)
	if !isQuery || qe.ID != 2568 {
		t.Fatalf("unexpected error type/value: %v", err)
	}
}
