// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package samples

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/azure/teamsfx/pkg/httputil"
	"github.com/azure/teamsfx/pkg/lazy"
	"github.com/tidwall/gjson"
)

const (
	DefaultConfigUrl     = "https://raw.githubusercontent.com/OfficeDev/TeamsFx-Samples/v3/.config/samples-config-v3.json"
	DefaultGitHubApiUrl  = "https://api.github.com"
	DefaultRawContentUrl = "https://raw.githubusercontent.com"
)

// DefaultSampleRepository is where samples without an explicit location are published.
var DefaultSampleRepository = DownloadUrlInfo{
	Owner:      "OfficeDev",
	Repository: "TeamsFx-Samples",
	Ref:        "v3",
}

// Provider reads the sample catalog and downloads individual samples.
type Provider struct {
	fetcher       Fetcher
	configUrl     string
	apiUrl        string
	rawContentUrl string
	maxAttempts   int
	concurrency   int
	backoff       time.Duration
	collection    *lazy.Lazy[*SampleCollection]
}

type ProviderOption func(*Provider)

func WithConfigUrl(configUrl string) ProviderOption {
	return func(p *Provider) {
		if configUrl != "" {
			p.configUrl = configUrl
		}
	}
}

// WithGitHubEndpoints overrides the GitHub REST API and raw content base URLs.
func WithGitHubEndpoints(apiUrl string, rawContentUrl string) ProviderOption {
	return func(p *Provider) {
		p.apiUrl = strings.TrimSuffix(apiUrl, "/")
		p.rawContentUrl = strings.TrimSuffix(rawContentUrl, "/")
	}
}

// WithDownloadLimits sets the per-file attempt budget, the download concurrency and the retry backoff.
func WithDownloadLimits(maxAttempts int, concurrency int, backoff time.Duration) ProviderOption {
	return func(p *Provider) {
		p.maxAttempts = maxAttempts
		p.concurrency = concurrency
		p.backoff = backoff
	}
}

func NewProvider(fetcher Fetcher, options ...ProviderOption) *Provider {
	p := &Provider{
		fetcher:       fetcher,
		configUrl:     DefaultConfigUrl,
		apiUrl:        DefaultGitHubApiUrl,
		rawContentUrl: DefaultRawContentUrl,
		maxAttempts:   2,
		concurrency:   20,
	}

	for _, option := range options {
		option(p)
	}

	p.collection = lazy.NewLazy(p.loadSampleCollection)
	return p
}

func (p *Provider) policy(maxAttempts int) httputil.RetryPolicy {
	return httputil.RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     p.backoff,
		MaxBackoff:  10 * time.Second,
	}
}

// SampleCollection returns the catalog, fetching it on first use.
func (p *Provider) SampleCollection(ctx context.Context) (*SampleCollection, error) {
	return p.collection.GetValue(ctx)
}

func (p *Provider) loadSampleCollection(ctx context.Context) (*SampleCollection, error) {
	data, err := p.fetcher.GetWithRetry(ctx, p.configUrl, p.policy(p.maxAttempts))
	if err != nil {
		return nil, fmt.Errorf("fetching samples configuration: %w", err)
	}

	collection, err := ParseSampleCollection(data, DefaultSampleRepository)
	if err != nil {
		return nil, err
	}

	log.Printf("loaded %d samples from %s", len(collection.Samples), p.configUrl)
	return collection, nil
}

func (p *Provider) DownloadUrlInfo(ctx context.Context, sampleId string) (DownloadUrlInfo, error) {
	collection, err := p.SampleCollection(ctx)
	if err != nil {
		return DownloadUrlInfo{}, err
	}

	sample, has := collection.Find(sampleId)
	if !has {
		return DownloadUrlInfo{}, fmt.Errorf("'%s': %w", sampleId, ErrSampleNotFound)
	}

	return sample.DownloadUrlInfo, nil
}

// SampleFileInfo lists the files of a sample folder through the GitHub git trees API. It returns the
// repository paths of the files and the URL prefix their raw content is served from.
func (p *Provider) SampleFileInfo(
	ctx context.Context,
	info DownloadUrlInfo,
	maxAttempts int,
) (paths []string, fileUrlPrefix string, err error) {
	treeUrl := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", p.apiUrl, info.Owner, info.Repository, info.Ref)
	data, err := p.fetcher.GetWithRetry(ctx, treeUrl, p.policy(maxAttempts))
	if err != nil {
		return nil, "", fmt.Errorf("listing files of '%s/%s': %w", info.Repository, info.Dir, err)
	}

	if gjson.GetBytes(data, "truncated").Bool() {
		log.Printf("file listing of %s/%s@%s is truncated", info.Owner, info.Repository, info.Ref)
	}

	prefix := strings.Trim(info.Dir, "/") + "/"
	gjson.GetBytes(data, "tree").ForEach(func(_, entry gjson.Result) bool {
		entryPath := entry.Get("path").String()
		if entry.Get("type").String() == "blob" && strings.HasPrefix(entryPath, prefix) {
			paths = append(paths, entryPath)
		}
		return true
	})

	fileUrlPrefix = fmt.Sprintf("%s/%s/%s/%s/", p.rawContentUrl, info.Owner, info.Repository, info.Ref)
	return paths, fileUrlPrefix, nil
}

// Download fetches every file of a sample into destination/<sample dir>.
func (p *Provider) Download(
	ctx context.Context,
	sampleId string,
	destination string,
	onProgress func(DownloadProgress),
) (*BuildResult, error) {
	info, err := p.DownloadUrlInfo(ctx, sampleId)
	if err != nil {
		return nil, err
	}

	paths, fileUrlPrefix, err := p.SampleFileInfo(ctx, info, p.maxAttempts)
	if err != nil {
		return nil, err
	}

	return BuildFileTree(ctx, p.fetcher, BuildOptions{
		UrlPrefix:   fileUrlPrefix,
		Paths:       paths,
		Destination: destination,
		RootLabel:   info.Dir,
		MaxAttempts: p.maxAttempts,
		Concurrency: p.concurrency,
		Backoff:     p.backoff,
		MaxBackoff:  10 * time.Second,
		OnProgress:  onProgress,
	})
}
