package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"
)

// UsersFileFormat is the seed file layout.
//
// TOML:
//
//	[[users]]
//	id = "u-1"
//	name = "Asha"
//	email = "asha@example.com"
//	role = "ADMIN"
//
// YAML:
//
//	users:
//	  - id: u-1
//	    name: Asha
//	    email: asha@example.com
//	    role: ADMIN
type UsersFileFormat struct {
	Users []models.User `toml:"users" yaml:"users"`
}

// LoadUsersFromFile upserts every user in path into the directory.
// A missing file is not an error. The format is chosen by extension.
func LoadUsersFromFile(ctx context.Context, storage interfaces.UserStorage, path string, logger arbor.ILogger) (int, error) {
	if path == "" {
		return 0, nil
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug().Str("file", path).Msg("Users file does not exist, skipping")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read users file %s: %w", path, err)
	}

	var file UsersFileFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &file)
	case ".toml":
		err = toml.Unmarshal(content, &file)
	default:
		return 0, fmt.Errorf("unsupported users file format: %s", path)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to parse users file %s: %w", path, err)
	}

	loaded := 0
	for i := range file.Users {
		user := file.Users[i]
		user.Role = models.Role(strings.ToUpper(strings.TrimSpace(string(user.Role))))
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		if err := storage.Save(ctx, &user); err != nil {
			logger.Warn().Err(err).Str("name", user.Name).Msg("Failed to save seeded user")
			continue
		}
		loaded++
	}

	logger.Info().Str("file", path).Int("count", loaded).Msg("Loaded users from file")
	return loaded, nil
}
