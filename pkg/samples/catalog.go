// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package samples

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrSampleNotFound = errors.New("sample not found")

// DownloadUrlInfo locates a sample folder inside a GitHub repository.
type DownloadUrlInfo struct {
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
	Ref        string `json:"ref"`
	Dir        string `json:"dir"`
}

type Sample struct {
	Id               string          `json:"id"`
	Title            string          `json:"title"`
	ShortDescription string          `json:"shortDescription"`
	FullDescription  string          `json:"fullDescription"`
	Types            []string        `json:"types,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	DownloadUrlInfo  DownloadUrlInfo `json:"downloadUrlInfo"`
}

type SampleCollection struct {
	Samples []Sample `json:"samples"`
}

// Find returns the sample with the given id, ignoring case.
func (c *SampleCollection) Find(id string) (Sample, bool) {
	for _, sample := range c.Samples {
		if strings.EqualFold(sample.Id, id) {
			return sample, true
		}
	}

	return Sample{}, false
}

// ParseSampleCollection reads a samples configuration document. Samples that do not carry their own
// location live in the defaults repository, in a folder named after the sample id.
func ParseSampleCollection(data []byte, defaults DownloadUrlInfo) (*SampleCollection, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("samples configuration is not valid JSON")
	}

	samples := gjson.GetBytes(data, "samples")
	if !samples.IsArray() {
		return nil, errors.New("samples configuration has no 'samples' array")
	}

	collection := &SampleCollection{}
	for _, entry := range samples.Array() {
		id := entry.Get("id").String()
		if id == "" {
			continue
		}

		sample := Sample{
			Id:               id,
			Title:            entry.Get("title").String(),
			ShortDescription: entry.Get("shortDescription").String(),
			FullDescription:  entry.Get("fullDescription").String(),
			Types:            stringArray(entry.Get("types")),
			Tags:             stringArray(entry.Get("tags")),
		}

		info, err := sampleLocation(entry, id, defaults)
		if err != nil {
			return nil, fmt.Errorf("sample '%s': %w", id, err)
		}
		sample.DownloadUrlInfo = info

		collection.Samples = append(collection.Samples, sample)
	}

	return collection, nil
}

func sampleLocation(entry gjson.Result, id string, defaults DownloadUrlInfo) (DownloadUrlInfo, error) {
	if info := entry.Get("downloadUrlInfo"); info.IsObject() {
		return DownloadUrlInfo{
			Owner:      info.Get("owner").String(),
			Repository: info.Get("repository").String(),
			Ref:        info.Get("ref").String(),
			Dir:        info.Get("dir").String(),
		}, nil
	}

	if downloadUrl := entry.Get("downloadUrl").String(); downloadUrl != "" {
		return ParseGitHubTreeUrl(downloadUrl)
	}

	defaults.Dir = id
	return defaults, nil
}

// ParseGitHubTreeUrl parses https://github.com/<owner>/<repo>/tree/<ref>/<dir...>.
// The ref is taken to be a single segment.
func ParseGitHubTreeUrl(rawUrl string) (DownloadUrlInfo, error) {
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return DownloadUrlInfo{}, fmt.Errorf("failed to parse URL: %w", err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 5 || parts[2] != "tree" {
		return DownloadUrlInfo{}, fmt.Errorf(
			"invalid URL '%s'. Expected the form of 'https://<hostname>/<owner>/<repo>/tree/<ref>/[...path]'", rawUrl)
	}

	return DownloadUrlInfo{
		Owner:      parts[0],
		Repository: parts[1],
		Ref:        parts[3],
		Dir:        strings.Join(parts[4:], "/"),
	}, nil
}

func stringArray(value gjson.Result) []string {
	var result []string
	for _, item := range value.Array() {
		result = append(result, item.String())
	}
	return result
}
