package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// fieldSeparator is U+241F SYMBOL FOR UNIT SEPARATOR.
const fieldSeparator = "␟"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// JobID returns the stable identifier of a posting:
// hex SHA-1 of source␟url␟title␟company.
func (g *Generator) JobID(source, url, title, company string) string {
	key := strings.Join([]string{source, url, title, company}, fieldSeparator)
	hash := sha1.Sum([]byte(key))
	return hex.EncodeToString(hash[:])
}

// FallbackExternalID identifies hybrid rows that arrive without an
// external_id: hex MD5 of title|company|url.
func (g *Generator) FallbackExternalID(title, company, url string) string {
	hash := md5.Sum([]byte(title + "|" + company + "|" + url))
	return hex.EncodeToString(hash[:])
}
