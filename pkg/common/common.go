package common

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/pbkdf2"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"

	// LangEnglish and LangTamil are the two content languages carried by
	// the advisory tables. Language tags are normalized at the API boundary.
	LangEnglish = "en"
	LangTamil   = "ta"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a cluster-unique int64 identifier.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Int64()
}

// GetSecretSalt returns the server-side password salt. It may be overridden
// through the environment for multi-instance deployments.
func GetSecretSalt() string {
	if v := strings.TrimSpace(os.Getenv("AGRIMARKET_SECRET_SALT")); v != "" {
		return v
	}
	return "agrimarket-default-salt"
}

// Sha256HashWithSalt derives a password hash from the client-submitted
// credential. The client already sends a sha256 digest of the raw password;
// the server stretches it with pbkdf2 before storage so a database leak does
// not expose the transport credential.
func Sha256HashWithSalt(src string, salt string) string {
	key := pbkdf2.Key([]byte(src), []byte(salt), 4096, sha256.Size, sha256.New)
	return hex.EncodeToString(key)
}

// InSlice reports whether v is present in list.
func InSlice(v string, list []string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
