package pkg

import "github.com/google/uuid"

// GenerateGameID - generates a unique identifier for a game.
func GenerateGameID() string {
	return uuid.NewString()
}

// IsGameID reports whether id could have been produced by GenerateGameID.
func IsGameID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
