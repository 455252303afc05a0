//go:build !unix

package vault

// fileLock is a no-op outside unix. Concurrent writers from separate
// processes can lose updates on these platforms.
type fileLock struct{}

func acquireLock(path string, exclusive bool) (*fileLock, error) {
	return &fileLock{}, nil
}

func (l *fileLock) release() error {
	return nil
}
