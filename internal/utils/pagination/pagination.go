// Package pagination provides opaque cursor tokens for created_at-descending
// list endpoints.
package pagination

import (
	"encoding/base64"
	"fmt"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeToken creates a base64 cursor from the created_at of the last row of
// a page.
func EncodeToken(createdAt time.Time) string {
	return base64.StdEncoding.EncodeToString([]byte(createdAt.Format(timeFormat)))
}

// DecodeToken parses a cursor back into its created_at boundary.
func DecodeToken(token string) (time.Time, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	t, err := time.Parse(timeFormat, string(decoded))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pagination token format (time parse): %w", err)
	}
	return t, nil
}
