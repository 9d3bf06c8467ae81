package pull

import (
	"os"
)

// createBackup copies an existing diagram to <path>.backup. A missing file
// is not an error.
func createBackup(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return os.WriteFile(path+".backup", content, 0644)
}
