package tailer

import (
	"encoding/json"

	pebblestore "github.com/ClearPeaks/knime-audit/internal/storage/pebble"
)

var cursorKey = []byte("tailer/cursor")

// Cursor records where tailing stopped: the file being read and the byte
// offset of the first unconsumed line.
type Cursor struct {
	File   string `json:"file"`
	Offset int64  `json:"offset"`
}

// CursorStore persists the tail cursor in Pebble so a restart mid-file does
// not re-emit already-seen completion lines.
type CursorStore struct {
	db *pebblestore.DB
}

// NewCursorStore wraps db as a cursor store.
func NewCursorStore(db *pebblestore.DB) *CursorStore {
	return &CursorStore{db: db}
}

// Load returns the stored cursor, or ok=false when none exists or the
// stored value is unreadable.
func (s *CursorStore) Load() (Cursor, bool) {
	b, err := s.db.Get(cursorKey)
	if err != nil {
		return Cursor{}, false
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.File == "" {
		return Cursor{}, false
	}
	return c, true
}

// Save stores the cursor.
func (s *CursorStore) Save(c Cursor) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.db.Set(cursorKey, b)
}
