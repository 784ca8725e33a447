package fetcher

import "encoding/json"

// Entry is one normalized watchlist entry produced from a feed record.
type Entry struct {
	// Address is the matchable pattern. Never empty; records without
	// an address are discarded.
	Address string

	// ShortRemark is the brief warning label.
	ShortRemark string

	// NoteText is the long-form explanation.
	NoteText string

	// Source is the citation backing the remark.
	Source string

	// OriginSourceURL is the feed URL this entry was fetched from.
	OriginSourceURL string

	// OriginSourceName is the display name of that feed.
	OriginSourceName string
}

// The feed record contract, version 1.
//
// A feed payload is either a bare JSON array of records or an object
// with a "records" array (the shape used by table-backed APIs such as
// Airtable). Each record's fields may sit at the top level or under a
// "fields" wrapper. Recognized field names, first match wins:
//
//	address:     "address"
//	shortRemark: "shortRemark", "short remark"
//	noteText:    "noteText", "Note text"
//	source:      "source", "Source"
//
// Missing fields normalize to empty strings. Records with an empty
// address are discarded. A payload that matches neither shape
// normalizes to an empty list, not an error.
var (
	shortRemarkAliases = []string{"shortRemark", "short remark"}
	noteTextAliases    = []string{"noteText", "Note text"}
	sourceAliases      = []string{"source", "Source"}
)

// Normalize converts a raw feed payload into entries, stamping each
// with its origin feed URL and name.
func Normalize(payload []byte, originURL, originName string) []Entry {
	records := decodeRecords(payload)
	if len(records) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		fields := unwrapFields(record)

		address := stringField(fields, "address")
		if address == "" {
			continue
		}

		entries = append(entries, Entry{
			Address:          address,
			ShortRemark:      firstStringField(fields, shortRemarkAliases),
			NoteText:         firstStringField(fields, noteTextAliases),
			Source:           firstStringField(fields, sourceAliases),
			OriginSourceURL:  originURL,
			OriginSourceName: originName,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

// decodeRecords extracts the record list from either accepted payload
// shape. Malformed payloads yield nil.
func decodeRecords(payload []byte) []map[string]json.RawMessage {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(payload, &records); err == nil {
		return records
	}

	var wrapped struct {
		Records []map[string]json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil {
		return wrapped.Records
	}
	return nil
}

// unwrapFields returns the record's "fields" object when present,
// otherwise the record itself.
func unwrapFields(record map[string]json.RawMessage) map[string]json.RawMessage {
	raw, ok := record["fields"]
	if !ok {
		return record
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return record
	}
	return fields
}

// stringField decodes a single string-valued field, tolerating missing
// or non-string values as empty strings.
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// firstStringField returns the first non-empty value among the aliases.
func firstStringField(fields map[string]json.RawMessage, aliases []string) string {
	for _, name := range aliases {
		if s := stringField(fields, name); s != "" {
			return s
		}
	}
	return ""
}
