package render

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Artifact describes one rendered map file.
type Artifact struct {
	Path      string    `yaml:"path"`
	Kind      string    `yaml:"kind"` // "grid", "heat", "campus"
	Title     string    `yaml:"title"`
	Dataset   string    `yaml:"dataset,omitempty"`
	Records   int       `yaml:"records,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Manifest records the maps produced by a render run so downstream
// tooling can find them without globbing the output directory.
type Manifest struct {
	GeneratedAt time.Time  `yaml:"generated_at"`
	Artifacts   []Artifact `yaml:"artifacts"`
}

// LoadManifest reads an existing manifest, returning an empty one when
// the file does not exist yet.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "render: read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "render: parse manifest %s", path)
	}
	return &m, nil
}

// Add appends an artifact, replacing any previous entry for the same path.
func (m *Manifest) Add(a Artifact) {
	for i, existing := range m.Artifacts {
		if existing.Path == a.Path {
			m.Artifacts[i] = a
			return
		}
	}
	m.Artifacts = append(m.Artifacts, a)
}

// Save writes the manifest to disk.
func (m *Manifest) Save(path string) error {
	m.GeneratedAt = time.Now().UTC()

	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "render: marshal manifest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "render: create manifest dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "render: write manifest %s", path)
	}

	zap.L().Info("render: manifest saved",
		zap.String("path", path),
		zap.Int("artifacts", len(m.Artifacts)),
	)
	return nil
}
