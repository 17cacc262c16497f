package library

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	domain "github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/pkg/errors"
)

// Manifest is a batch of library jobs read from YAML:
//
//	output_dir: out
//	jobs:
//	  - name: benzene
//	    skeleton: c1ccccc1
//	    substituents: ["(C)", "(O)"]
//	    nmax: 2
type Manifest struct {
	OutputDir string `yaml:"output_dir"`
	Jobs      []Job  `yaml:"jobs"`
}

// Job is one manifest entry.  Omitted options take the service defaults.
type Job struct {
	Name          string   `yaml:"name"`
	Skeleton      string   `yaml:"skeleton"`
	Substituents  []string `yaml:"substituents"`
	NMax          *int     `yaml:"nmax"`
	NConnect      *int     `yaml:"nconnect"`
	ConnectAtom   string   `yaml:"connect_atom"`
	AutoPlacement *bool    `yaml:"auto_placement"`
	Output        string   `yaml:"output"`
}

// ParseManifest decodes and validates a manifest.  Unknown keys are errors.
func ParseManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeManifest, "manifest is empty")
		}
		return nil, errors.Wrap(err, errors.ErrCodeManifest, "decode manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads the manifest at path.  A relative output_dir is
// resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeManifest, "read manifest").WithDetail(path)
	}
	m, err := ParseManifest(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if m.OutputDir != "" && !filepath.IsAbs(m.OutputDir) {
		m.OutputDir = filepath.Join(filepath.Dir(path), m.OutputDir)
	}
	return m, nil
}

// jobName is the library name of a job: its name, or the stem of its output.
func (j *Job) jobName() string {
	if name := strings.TrimSpace(j.Name); name != "" {
		return name
	}
	if j.Output != "" {
		return strings.TrimSuffix(filepath.Base(j.Output), filepath.Ext(j.Output))
	}
	return ""
}

// Validate checks every job has a skeleton and a unique, valid name.
func (m *Manifest) Validate() error {
	if len(m.Jobs) == 0 {
		return errors.New(errors.ErrCodeManifest, "manifest has no jobs")
	}
	seen := make(map[string]int, len(m.Jobs))
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if strings.TrimSpace(job.Skeleton) == "" {
			return errors.Newf(errors.ErrCodeManifest, "job %d: skeleton is required", i+1)
		}
		name := job.jobName()
		if err := domain.ValidateName(name); err != nil {
			return errors.Newf(errors.ErrCodeManifest, "job %d: invalid name %q", i+1, name)
		}
		if prev, ok := seen[name]; ok {
			return errors.Newf(errors.ErrCodeManifest, "job %d: name %q already used by job %d", i+1, name, prev)
		}
		seen[name] = i + 1
	}
	return nil
}

// Requests converts the jobs to service requests.
func (m *Manifest) Requests(source string) []*Request {
	reqs := make([]*Request, len(m.Jobs))
	for i, job := range m.Jobs {
		name := job.jobName()
		output := job.Output
		if output == "" && m.OutputDir != "" {
			output = filepath.Join(m.OutputDir, domain.OutputFile(name))
		}
		reqs[i] = &Request{
			Name:          name,
			Skeleton:      job.Skeleton,
			Substituents:  append([]string(nil), job.Substituents...),
			NMax:          job.NMax,
			NConnect:      job.NConnect,
			ConnectAtom:   job.ConnectAtom,
			AutoPlacement: job.AutoPlacement,
			Output:        output,
			Source:        source,
		}
	}
	return reqs
}

//Personal.AI order the ending
