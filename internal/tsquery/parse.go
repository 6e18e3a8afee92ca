package tsquery

import (
	"strconv"
	"strings"
)

// Notification is an unsolicited server event, already split into fields.
type Notification struct {
	Event string
	Args  map[string]string
}

// Response is the reply to a single query command.
type Response struct {
	// Records holds the parsed key=value rows of the response body.
	// Commands without a body leave it empty.
	Records []map[string]string
	ErrorID int
	Message string
}

// Err returns a *QueryError when the server reported a non-zero error id.
func (r *Response) Err() error {
	if r.ErrorID == 0 {
		return nil
	}
	return &QueryError{ID: r.ErrorID, Msg: r.Message}
}

// QueryError is an error status reported by the server.
type QueryError struct {
	ID  int
	Msg string
}

func (e *QueryError) Error() string {
	return "serverquery: error id=" + strconv.Itoa(e.ID) + " msg=" + e.Msg
}

// parseRecords splits a response line into its pipe-separated records.
func parseRecords(line string) []map[string]string {
	parts := strings.Split(line, "|")
	records := make([]map[string]string, 0, len(parts))
	for _, part := range parts {
		records = append(records, parseRecord(part))
	}
	return records
}

// parseRecord splits one record into key=value pairs. Keys without a value
// (option flags) map to the empty string.
func parseRecord(s string) map[string]string {
	record := make(map[string]string)
	for _, field := range strings.Fields(s) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			record[strings.TrimPrefix(key, "-")] = ""
			continue
		}
		record[key] = Unescape(value)
	}
	return record
}

// parseNotification splits a notify* line into its event name and fields.
func parseNotification(line string) Notification {
	event, rest, _ := strings.Cut(line, " ")
	return Notification{Event: event, Args: parseRecord(rest)}
}

// parseError reads the terminating "error id=N msg=..." line.
func parseError(line string) (int, string) {
	record := parseRecord(strings.TrimPrefix(line, "error "))
	id, _ := strconv.Atoi(record["id"])
	return id, record["msg"]
}
