package core

// ArtifactStore persists binary artifacts (rendered deck JSON, exported
// documents) scoped to a session. Implementations can be in-memory or durable.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}
