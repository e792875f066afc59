// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIPA(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/vlɐˈdʲimʲɪr ˈputʲɪn/", "vlɐˈdʲimʲɪr ˈputʲɪn"},
		{"  /kim tɕɔŋ ɯn/  ", "kim tɕɔŋ ɯn"},
		{"<think>hmm, Russian phonology</think>/ˈputʲɪn/", "ˈputʲɪn"},
		{"ˈputʲɪn", "ˈputʲɪn"},
		{"/partial slash\nsecond line", "partial slash"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeIPA(tt.raw), "raw=%q", tt.raw)
	}
}

func TestSelectConsensus(t *testing.T) {
	ipa, conf := selectConsensus([]string{"/a/", "/a/", "/b/"})
	assert.Equal(t, "a", ipa)
	assert.InDelta(t, 2.0/3.0, conf, 1e-9)

	// Tie breaks to the candidate seen first.
	ipa, _ = selectConsensus([]string{"/b/", "/a/", "/a/", "/b/"})
	assert.Equal(t, "b", ipa)

	ipa, conf = selectConsensus(nil)
	assert.Equal(t, "", ipa)
	assert.Zero(t, conf)

	// Candidates that normalize to empty are ignored.
	ipa, conf = selectConsensus([]string{"", "  ", "/x/"})
	assert.Equal(t, "x", ipa)
	assert.InDelta(t, 1.0/3.0, conf, 1e-9)
}

func TestBuildMessages(t *testing.T) {
	messages := BuildMessages("Test Name")
	require.GreaterOrEqual(t, len(messages), 3)
	assert.Equal(t, "system", messages[0].Role)
	// Few-shot turns alternate user/assistant.
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "assistant", messages[2].Role)
	last := messages[len(messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "Test Name", last.Content)
}

func fakeServer(t *testing.T, reply func(name string) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, 1, req.N)
		name := req.Messages[len(req.Messages)-1].Content

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply(name))
	}))
}

func TestGenerateBatch_Consensus(t *testing.T) {
	var calls int32
	server := fakeServer(t, func(name string) string {
		// Every third candidate disagrees.
		if atomic.AddInt32(&calls, 1)%3 == 0 {
			return "/minority " + name + "/"
		}
		return "/majority " + name + "/"
	})
	defer server.Close()

	g := NewGenerator(GenerationConfig{APIBase: server.URL + "/v1", N: 6, Concurrency: 4})
	results, err := g.GenerateBatch(context.Background(), []string{"Anna", "Omar"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Anna", results[0].Name)
	assert.Equal(t, "majority Anna", results[0].IPA)
	assert.Greater(t, results[0].Confidence, 0.5)
	assert.Len(t, results[0].Candidates, 6)
	assert.Equal(t, "majority Omar", results[1].IPA)
}

func TestGenerateBatch_AllCandidatesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	g := NewGenerator(GenerationConfig{APIBase: server.URL + "/v1", N: 3, Concurrency: 2})
	results, err := g.GenerateBatch(context.Background(), []string{"Anna"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].IPA)
	assert.Zero(t, results[0].Confidence)
	assert.Empty(t, results[0].Candidates)
}

func TestGenerateBatch_PreservesInputOrder(t *testing.T) {
	server := fakeServer(t, func(name string) string {
		return "/" + name + "/"
	})
	defer server.Close()

	names := make([]string, 25)
	for i := range names {
		names[i] = fmt.Sprintf("Name %d", i)
	}

	g := NewGenerator(GenerationConfig{APIBase: server.URL + "/v1", N: 2, Concurrency: 8})
	results, err := g.GenerateBatch(context.Background(), names, nil)
	require.NoError(t, err)
	require.Len(t, results, len(names))
	for i, r := range results {
		assert.Equal(t, names[i], r.Name)
		assert.Equal(t, names[i], r.IPA)
	}
}

func TestNewGenerator_Defaults(t *testing.T) {
	g := NewGenerator(GenerationConfig{})
	assert.Equal(t, 10, g.cfg.N)
	assert.Equal(t, 128, g.cfg.MaxTokens)
	assert.Equal(t, int64(32), g.cfg.Concurrency)
	assert.NotEmpty(t, g.cfg.Model)
}
