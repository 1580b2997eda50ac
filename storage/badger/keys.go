package badger

import (
	"fmt"

	"github.com/poiesic/newsqa/core"
)

// Key prefixes for different data types
const (
	passageRecordPrefix = "pasrec"
)

// makePassageKey generates a key for a passage record by ID.
func makePassageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", passageRecordPrefix, id))
}
