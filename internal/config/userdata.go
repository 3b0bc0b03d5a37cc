package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// UserData holds user-specific settings that are stored locally
type UserData struct {
	LastTool  string    `json:"last_tool"`
	LastDir   string    `json:"last_dir"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	path string
}

// LoadUserData loads user data from ~/.tfbv/user.data. Any problem reading
// the file yields defaults.
func LoadUserData() (*UserData, error) {
	userDataPath, err := getUserDataPath()
	if err != nil {
		return createDefaultUserData(""), nil
	}
	return LoadUserDataFrom(userDataPath)
}

// LoadUserDataFrom loads user data from an explicit path
func LoadUserDataFrom(path string) (*UserData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return createDefaultUserData(path), nil
	}

	var userData UserData
	if err := json.Unmarshal(data, &userData); err != nil {
		// Invalid JSON, return default
		return createDefaultUserData(path), nil
	}
	userData.path = path

	return &userData, nil
}

// SaveUserData saves user data back to the file it was loaded from
func (ud *UserData) SaveUserData() error {
	if ud.path == "" {
		p, err := getUserDataPath()
		if err != nil {
			return err
		}
		ud.path = p
	}

	ud.UpdatedAt = time.Now()
	if ud.CreatedAt.IsZero() {
		ud.CreatedAt = ud.UpdatedAt
	}

	data, err := json.MarshalIndent(ud, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(ud.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(ud.path, data, 0644)
}

// SetLastTool records the most recently submitted tool and saves to file
func (ud *UserData) SetLastTool(tool string) error {
	ud.LastTool = tool
	return ud.SaveUserData()
}

// SetLastDir records the directory the last attachment was picked from
func (ud *UserData) SetLastDir(dir string) error {
	ud.LastDir = dir
	return ud.SaveUserData()
}

// createDefaultUserData creates a new UserData with default values
func createDefaultUserData(path string) *UserData {
	now := time.Now()
	return &UserData{
		CreatedAt: now,
		UpdatedAt: now,
		path:      path,
	}
}

// getUserDataPath returns the path to the user.data file
func getUserDataPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	// Use the same directory as config file
	return filepath.Join(homeDir, ".tfbv", "user.data"), nil
}
