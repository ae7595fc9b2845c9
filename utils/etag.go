package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a weak validator from a document id and its last
// modification time. Extra values (counters that change without touching
// updated_at) are mixed in.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time, extra ...int) string {
	h := sha1.New()
	h.Write([]byte(id.Hex()))
	h.Write([]byte(strconv.FormatInt(updatedAt.UnixNano(), 10)))
	for _, v := range extra {
		h.Write([]byte{'|'})
		h.Write([]byte(strconv.Itoa(v)))
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil))[:16] + `"`
}
