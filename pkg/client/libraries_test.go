package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smilescombine/pkg/errors"
)

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/libraries", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("async"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fluoro", body["name"])
		assert.EqualValues(t, 2, body["nmax"])
		assert.NotContains(t, body, "nconnect")

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"run":{"id":"r1","name":"fluoro","vacant_sites":6,"combinations":2,"status":"completed"},
			"combinations":["c1ccccc1","Fc1ccccc1"],"summary":"Skeleton SMILES: c1ccccc1\n"}`))
	})

	nmax := 2
	lib, err := c.Libraries().Generate(context.Background(), &GenerateRequest{
		Name: "fluoro", Skeleton: "c1ccccc1", Substituents: []string{"(F)"}, NMax: &nmax,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", lib.Run.ID)
	assert.Equal(t, 6, lib.Run.VacantSites)
	assert.Equal(t, "completed", lib.Run.Status)
	assert.Equal(t, []string{"c1ccccc1", "Fc1ccccc1"}, lib.Combinations)
}

func TestGenerate_Validation(t *testing.T) {
	c, err := NewClient("http://unused")
	require.NoError(t, err)
	libs := c.Libraries()

	_, err = libs.Generate(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	_, err = libs.Generate(context.Background(), &GenerateRequest{Name: "a"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	_, err = libs.Enqueue(context.Background(), &GenerateRequest{Skeleton: "c1ccccc1"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	_, err = libs.Get(context.Background(), "")
	assert.Error(t, err)
	_, err = libs.Structures(context.Background(), "")
	assert.Error(t, err)
}

func TestEnqueue(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("async"))
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"queued","name":"later"}`))
	})
	q, err := c.Libraries().Enqueue(context.Background(), &GenerateRequest{Name: "later", Skeleton: "c1ccccc1"})
	require.NoError(t, err)
	assert.Equal(t, &Queued{Status: "queued", Name: "later"}, q)
}

func TestList_Limit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"runs":[{"id":"b"},{"id":"a"}]}`))
	})
	runs, err := c.Libraries().List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
}

func TestStructures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/libraries/r%201/structures", r.URL.EscapedPath())
		if r.Header.Get("Accept") == "text/plain" {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("c1ccccc1\nFc1ccccc1\n"))
			return
		}
		w.Write([]byte(`{"run_id":"r 1","structures":["c1ccccc1","Fc1ccccc1"]}`))
	})

	got, err := c.Libraries().Structures(context.Background(), "r 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1ccccc1", "Fc1ccccc1"}, got)

	text, err := c.Libraries().StructuresText(context.Background(), "r 1")
	require.NoError(t, err)
	assert.Equal(t, "c1ccccc1\nFc1ccccc1\n", text)
}

func TestCanonicalizeAndRingOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/api/v1/canonicalize":
			assert.Equal(t, true, body["all_hs_explicit"])
			w.Write([]byte(`{"input":"C1=CC=CC=C1","canonical":"[cH]1[cH][cH][cH][cH][cH]1"}`))
		case "/api/v1/ring-order":
			assert.Equal(t, "c1ccc2ccccc2c1", body["skeleton"])
			w.Write([]byte(`{"skeleton":"c1ccc2ccccc2c1","substituents":["(c3ccccc3)"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	canon, err := c.Libraries().Canonicalize(context.Background(), "C1=CC=CC=C1", true)
	require.NoError(t, err)
	assert.Equal(t, "[cH]1[cH][cH][cH][cH][cH]1", canon)

	subs, err := c.Libraries().RingOrder(context.Background(), "c1ccc2ccccc2c1", []string{"(c1ccccc1)"})
	require.NoError(t, err)
	assert.Equal(t, []string{"(c3ccccc3)"}, subs)
}

//Personal.AI order the ending
