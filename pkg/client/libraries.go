package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/smilescombine/pkg/errors"
)

// LibrariesClient covers the library endpoints.
type LibrariesClient struct {
	client *Client
}

// GenerateRequest describes one library.  Nil option fields take the
// server's defaults; a negative NMax means unbounded.
type GenerateRequest struct {
	Name          string   `json:"name"`
	Skeleton      string   `json:"skeleton"`
	Substituents  []string `json:"substituents"`
	NMax          *int     `json:"nmax,omitempty"`
	NConnect      *int     `json:"nconnect,omitempty"`
	ConnectAtom   string   `json:"connect_atom,omitempty"`
	AutoPlacement *bool    `json:"auto_placement,omitempty"`
}

// Run is the record of one generation.
type Run struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Skeleton      string     `json:"skeleton"`
	Substituents  []string   `json:"substituents"`
	NMax          *int       `json:"nmax,omitempty"`
	NConnect      int        `json:"nconnect"`
	ConnectAtom   string     `json:"connect_atom"`
	AutoPlacement bool       `json:"auto_placement"`
	Template      string     `json:"template,omitempty"`
	VacantSites   int        `json:"vacant_sites"`
	Combinations  int        `json:"combinations"`
	OutputPath    string     `json:"output_path,omitempty"`
	ArtifactURI   string     `json:"artifact_uri,omitempty"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

// Library is a completed generation with its structures.
type Library struct {
	Run          *Run     `json:"run"`
	Combinations []string `json:"combinations"`
	Summary      string   `json:"summary"`
}

// Queued acknowledges an asynchronous generation.
type Queued struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

func (req *GenerateRequest) validate() error {
	if req == nil {
		return errors.InvalidParam("request is required")
	}
	if strings.TrimSpace(req.Skeleton) == "" {
		return errors.InvalidParam("skeleton is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return errors.InvalidParam("name is required")
	}
	return nil
}

// Generate runs a library synchronously.
func (l *LibrariesClient) Generate(ctx context.Context, req *GenerateRequest) (*Library, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var out Library
	if _, err := l.client.do(ctx, request{method: http.MethodPost, path: "/libraries", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enqueue hands the request to the server's worker queue.
func (l *LibrariesClient) Enqueue(ctx context.Context, req *GenerateRequest) (*Queued, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var out Queued
	if _, err := l.client.do(ctx, request{method: http.MethodPost, path: "/libraries?async=true", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the most recent runs, newest first.  limit <= 0 uses the
// server default.
func (l *LibrariesClient) List(ctx context.Context, limit int) ([]*Run, error) {
	path := "/libraries"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out struct {
		Runs []*Run `json:"runs"`
	}
	if _, err := l.client.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out.Runs, nil
}

func (l *LibrariesClient) Get(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	var out Run
	if _, err := l.client.do(ctx, request{method: http.MethodGet, path: "/libraries/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Structures returns the stored structures of a run in output order.
func (l *LibrariesClient) Structures(ctx context.Context, id string) ([]string, error) {
	if id == "" {
		return nil, errors.InvalidParam("run id is required")
	}
	var out struct {
		Structures []string `json:"structures"`
	}
	path := "/libraries/" + url.PathEscape(id) + "/structures"
	if _, err := l.client.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out.Structures, nil
}

// StructuresText returns the same structures as the server's text/plain
// rendering, one per line.
func (l *LibrariesClient) StructuresText(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errors.InvalidParam("run id is required")
	}
	path := "/libraries/" + url.PathEscape(id) + "/structures"
	body, err := l.client.do(ctx, request{method: http.MethodGet, path: path, accept: "text/plain"}, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Canonicalize returns the canonical form of smiles.
func (l *LibrariesClient) Canonicalize(ctx context.Context, smiles string, allHsExplicit bool) (string, error) {
	body := map[string]interface{}{"smiles": smiles, "all_hs_explicit": allHsExplicit}
	var out struct {
		Canonical string `json:"canonical"`
	}
	if _, err := l.client.do(ctx, request{method: http.MethodPost, path: "/canonicalize", body: body}, &out); err != nil {
		return "", err
	}
	return out.Canonical, nil
}

// RingOrder returns substituents with ring labels shifted past the
// skeleton's aromatic rings.
func (l *LibrariesClient) RingOrder(ctx context.Context, skeleton string, substituents []string) ([]string, error) {
	body := map[string]interface{}{"skeleton": skeleton, "substituents": substituents}
	var out struct {
		Substituents []string `json:"substituents"`
	}
	if _, err := l.client.do(ctx, request{method: http.MethodPost, path: "/ring-order", body: body}, &out); err != nil {
		return nil, err
	}
	return out.Substituents, nil
}

//Personal.AI order the ending
