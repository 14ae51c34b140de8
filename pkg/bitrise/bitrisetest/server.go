/*
Copyright The reg-publish-bitrise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package bitrisetest provides an in-memory Bitrise API server for tests.
package bitrisetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/novr/reg-publish-bitrise/pkg/bitrise"
)

// DefaultPageSize is the number of items per listing page.
const DefaultPageSize = 2

// Artifact is an artifact attached to a build on the test server.
type Artifact struct {
	Title string
	Data  []byte
}

type build struct {
	bitrise.Build
	artifacts []artifact
}

type artifact struct {
	bitrise.ArtifactSummary
	data []byte
}

// Server is an implementation of the Bitrise API for testing.
//
// Builds are listed in the order they were added. Artifacts are downloadable
// from the URL returned by the show endpoint, and anything PUT below
// /uploads/ is kept in memory.
type Server struct {
	AppSlug  string
	Token    string
	PageSize int

	mu         sync.Mutex
	srv        *httptest.Server
	builds     []*build
	requests   []string
	uploads    map[string][]byte
	middleware http.HandlerFunc
}

// NewServer creates and starts a server serving appSlug.
func NewServer(appSlug string) *Server {
	s := &Server{
		AppSlug:  appSlug,
		PageSize: DefaultPageSize,
		uploads:  map[string][]byte{},
	}
	s.Start()
	return s
}

// WithMiddleware injects middleware in front of the server.
func (s *Server) WithMiddleware(middleware http.HandlerFunc) {
	s.middleware = middleware
}

// AddBuild adds a build with the given artifacts. Artifact slugs are derived
// from the build slug.
func (s *Server) AddBuild(b bitrise.Build, artifacts ...Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nb := &build{Build: b}
	for i, a := range artifacts {
		nb.artifacts = append(nb.artifacts, artifact{
			ArtifactSummary: bitrise.ArtifactSummary{
				Slug:          fmt.Sprintf("%s-artifact-%d", b.Slug, i),
				Title:         a.Title,
				ArtifactType:  "file",
				FileSizeBytes: int64(len(a.Data)),
			},
			data: a.Data,
		})
	}
	s.builds = append(s.builds, nb)
}

// Requests returns the request URIs received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Upload returns the body stored by a PUT to /uploads/name.
func (s *Server) Upload(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.uploads[name]
	return b, ok
}

// Start starts the server.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/{app}/builds", s.listBuilds)
	mux.HandleFunc("GET /apps/{app}/builds/{build}/artifacts", s.listArtifacts)
	mux.HandleFunc("GET /apps/{app}/builds/{build}/artifacts/{artifact}", s.showArtifact)
	mux.HandleFunc("GET /downloads/{artifact}", s.download)
	mux.HandleFunc("PUT /uploads/{name}", s.upload)

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.mu.Unlock()
		if s.middleware != nil {
			s.middleware.ServeHTTP(w, r)
		}
		mux.ServeHTTP(w, r)
	}))
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() {
	s.srv.Close()
}

// URL returns the URL of the server.
func (s *Server) URL() string {
	return s.srv.URL
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.Token != "" && r.Header.Get("Authorization") != s.Token {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if r.PathValue("app") != s.AppSlug {
		writeError(w, http.StatusNotFound, "Not Found")
		return false
	}
	return true
}

func (s *Server) listBuilds(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	var builds []bitrise.Build
	for _, b := range s.builds {
		if st := r.URL.Query().Get("status"); st != "" && st != strconv.Itoa(int(b.Status)) {
			continue
		}
		builds = append(builds, b.Build)
	}
	s.mu.Unlock()

	size := s.pageSize(r.URL.Query())
	items, next, ok := page(len(builds), size, r.URL.Query().Get("next"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid next")
		return
	}
	writeJSON(w, map[string]interface{}{
		"data":   builds[items[0]:items[1]],
		"paging": bitrise.Paging{TotalItemCount: len(builds), PageItemLimit: size, Next: next},
	})
}

func (s *Server) findBuild(slug string) *build {
	for _, b := range s.builds {
		if b.Slug == slug {
			return b
		}
	}
	return nil
}

func (s *Server) listArtifacts(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	b := s.findBuild(r.PathValue("build"))
	var summaries []bitrise.ArtifactSummary
	if b != nil {
		for _, a := range b.artifacts {
			summaries = append(summaries, a.ArtifactSummary)
		}
	}
	s.mu.Unlock()
	if b == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	size := s.pageSize(r.URL.Query())
	items, next, ok := page(len(summaries), size, r.URL.Query().Get("next"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid next")
		return
	}
	writeJSON(w, map[string]interface{}{
		"data":   summaries[items[0]:items[1]],
		"paging": bitrise.Paging{TotalItemCount: len(summaries), PageItemLimit: size, Next: next},
	})
}

func (s *Server) showArtifact(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.findBuild(r.PathValue("build")); b != nil {
		for _, a := range b.artifacts {
			if a.Slug == r.PathValue("artifact") {
				writeJSON(w, map[string]interface{}{
					"data": bitrise.ArtifactDetail{
						ArtifactSummary:     a.ArtifactSummary,
						ExpiringDownloadURL: s.srv.URL + "/downloads/" + a.Slug,
					},
				})
				return
			}
		}
	}
	writeError(w, http.StatusNotFound, "Not Found")
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.builds {
		for _, a := range b.artifacts {
			if a.Slug == r.PathValue("artifact") {
				w.Header().Set("Content-Type", "application/zip")
				w.Write(a.data)
				return
			}
		}
	}
	http.NotFound(w, r)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.uploads[r.PathValue("name")] = body
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

// pageSize honours the request's limit parameter, falling back to
// s.PageSize.
func (s *Server) pageSize(q url.Values) int {
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		return n
	}
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

// page returns the [start, end) window for cursor and the cursor of the
// following page.
func page(total, size int, cursor string) ([2]int, string, bool) {
	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n > total {
			return [2]int{}, "", false
		}
		start = n
	}
	end := start + size
	if end >= total {
		return [2]int{start, total}, "", true
	}
	return [2]int{start, end}, strconv.Itoa(end), true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
