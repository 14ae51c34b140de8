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

package bitrise

import "fmt"

// BuildStatus is the numeric build status used by the Bitrise API.
type BuildStatus int

const (
	StatusNotFinished BuildStatus = 0
	StatusSuccess     BuildStatus = 1
	StatusFailed      BuildStatus = 2
	StatusAborted     BuildStatus = 3
)

func (s BuildStatus) String() string {
	switch s {
	case StatusNotFinished:
		return "not finished"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Build is a build as returned by the build listing.
type Build struct {
	Slug        string      `json:"slug"`
	CommitHash  string      `json:"commit_hash"`
	Status      BuildStatus `json:"status"`
	StatusText  string      `json:"status_text,omitempty"`
	Branch      string      `json:"branch,omitempty"`
	BuildNumber int         `json:"build_number,omitempty"`
	TriggeredAt string      `json:"triggered_at,omitempty"`
}

// Succeeded reports whether the build finished successfully.
func (b Build) Succeeded() bool { return b.Status == StatusSuccess }

// ArtifactSummary is an artifact as returned by the artifact listing. The
// listing never carries a download URL; use ShowArtifact for that.
type ArtifactSummary struct {
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	ArtifactType  string `json:"artifact_type,omitempty"`
	FileSizeBytes int64  `json:"file_size_bytes,omitempty"`
}

// ArtifactDetail is a single artifact as returned by ShowArtifact.
type ArtifactDetail struct {
	ArtifactSummary
	ExpiringDownloadURL  string `json:"expiring_download_url"`
	PublicInstallPageURL string `json:"public_install_page_url,omitempty"`
}

// Paging is the paging block attached to listing responses.
type Paging struct {
	TotalItemCount int    `json:"total_item_count"`
	PageItemLimit  int    `json:"page_item_limit"`
	Next           string `json:"next,omitempty"`
}

type buildListResponse struct {
	Data   []Build `json:"data"`
	Paging Paging  `json:"paging"`
}

type artifactListResponse struct {
	Data   []ArtifactSummary `json:"data"`
	Paging Paging            `json:"paging"`
}

type artifactShowResponse struct {
	Data ArtifactDetail `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// BuildListOptions narrows a build listing.
type BuildListOptions struct {
	// Status, when set, is sent as the status request parameter.
	Status *BuildStatus
	// Next is the cursor returned by the previous page.
	Next string
	// Limit is the page size. Zero leaves it to the server.
	Limit int
}
