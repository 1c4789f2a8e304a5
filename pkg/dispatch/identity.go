package dispatch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/bims2021/AI-Autocode-Completion/internal/utils"
)

const identityFileName = "identity"

// Identity pairs the stable per-installation user ID with a fresh
// per-run session ID.
type Identity struct {
	UserID    string
	SessionID string
}

// LoadIdentity reads the persisted user ID from configDir, minting and
// saving one on first run. The session ID is always new. Persistence
// failures degrade to an ephemeral user ID rather than failing the
// caller.
func LoadIdentity(configDir string) Identity {
	id := Identity{SessionID: uuid.NewString()}

	path := filepath.Join(configDir, identityFileName)
	if data, err := os.ReadFile(path); err == nil {
		if stored := strings.TrimSpace(string(data)); stored != "" {
			if _, err := uuid.Parse(stored); err == nil {
				id.UserID = stored
				return id
			}
			log.Warnf("Ignoring malformed identity file at %s", path)
		}
	}

	id.UserID = uuid.NewString()
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Cannot create %s, user ID will not persist: %v", configDir, err)
		return id
	}
	if err := os.WriteFile(path, []byte(id.UserID+"\n"), 0644); err != nil {
		log.Warnf("Cannot persist user ID to %s: %v", path, err)
	}
	return id
}
