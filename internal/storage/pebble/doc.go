// Package pebblestore provides a thin wrapper around Pebble with a fixed
// sync policy and point-operation helpers. It backs the tailer's persisted
// read cursor.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{DataDir: "./data"})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("k"), []byte("v"))
//	v, _ := db.Get([]byte("k"))
package pebblestore
