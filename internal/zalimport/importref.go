package zalimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/zorgadres/register/internal/platform/xmltree"
)

const serialPadding = 6

// importRef derives the import reference for one registry generation from
// the file's Tijdstempel and Volgnummer fields: the unix timestamp followed
// by the serial number zero-padded to six digits. The timestamp dominates
// the padded serial, so plain string comparison orders references
// chronologically.
func importRef(tr *xmltree.Traverser) (string, error) {
	stamp, err := tr.Text("Tijdstempel", nil)
	if err != nil {
		return "", err
	}
	serial, err := tr.Text("Volgnummer", nil)
	if err != nil {
		return "", err
	}

	ts, err := parseTimestamp(stamp)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", stamp, err)
	}

	return fmt.Sprintf("%d%s", ts.Unix(), padSerial(serial)), nil
}

// parseTimestamp accepts ISO-8601 timestamps with or without a zone
// offset; zoneless timestamps are read as UTC.
func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}

func padSerial(serial string) string {
	if len(serial) >= serialPadding {
		return serial
	}
	return strings.Repeat("0", serialPadding-len(serial)) + serial
}
