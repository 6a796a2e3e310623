package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
// DummyHash yields a digest of an unguessable sentinel so callers can run
// a comparison of equal cost when no stored hash exists.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
	DummyHash() (string, error)
}
