package config

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML document of pre-registered users.
//
//	users:
//	  - channel_id: test
//	    user_id: User1
//	    name: Eduard
//	    call_name: Ed
type SeedFile struct {
	Users []domain.UserRecord `yaml:"users"`
}

// LoadSeed reads the registrations listed in a seed file.
func LoadSeed(path string) ([]domain.UserRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	for i, u := range seed.Users {
		if u.ChannelID == "" || u.UserID == "" {
			return nil, fmt.Errorf("seed file %s: user %d needs channel_id and user_id", path, i)
		}
	}
	return seed.Users, nil
}
