// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package codetocloud

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/azure/teamsfx/pkg/async"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/llm"
)

const (
	topFileNumber  = 10
	proposalNumber = 3
	// model calls in flight while analyzing files or drafting proposals
	analysisConcurrency = 5
)

var errNoProposal = errors.New("no Azure resource proposal was produced")

type scanProjectResult struct {
	FilePath    string  `json:"filePath"`
	Relevance   float64 `json:"relevance"`
	Explanation string  `json:"explanation,omitempty"`
}

type scanProjectResponse struct {
	Result []scanProjectResult `json:"result"`
}

type analyzeFileResult struct {
	FilePath      string
	AnalyzeResult string
}

// recommend proposes Azure resources for the workspace: it picks the relevant files, analyzes them, drafts
// several proposals and streams their aggregation.
func (h *Handler) recommend(ctx context.Context, request chat.Request, stream chat.ResponseStream) (chat.Result, error) {
	result := chat.Result{Command: CommandName, Metadata: map[string]any{"subCommand": recommendCommandName}}

	scanned, err := h.scanProject(ctx, stream)
	if err != nil {
		return result, err
	}

	paths := make([]string, 0, len(scanned))
	for _, item := range scanned {
		paths = append(paths, item.FilePath)
	}
	paths = h.context.Workspace().Verify(paths)

	analyzed, err := h.analyzeFiles(ctx, paths, stream)
	if err != nil {
		return result, err
	}

	analyzeResults := make([]string, 0, len(analyzed))
	for _, item := range analyzed {
		analyzeResults = append(analyzeResults, item.AnalyzeResult)
	}

	summary, err := h.summarize(ctx, analyzeResults, stream)
	if err != nil {
		return result, err
	}

	proposals, err := h.recommendProposals(ctx, summary, request.Prompt, stream)
	if err != nil {
		return result, err
	}

	answer, err := h.aggregateProposals(ctx, proposals, stream)
	if err != nil {
		return result, err
	}

	h.context.Recommendations().Add(chat.AssistantTurn(answer))
	result.Metadata["files"] = paths
	return result, nil
}

func (h *Handler) scanProject(ctx context.Context, stream chat.ResponseStream) ([]scanProjectResult, error) {
	stream.Progress("Scan Project...")

	ws := h.context.Workspace()
	folderTree, err := ws.TreeString(ctx)
	if err != nil {
		return nil, err
	}

	p := scanProjectPrompt(folderTree, topFileNumber)
	answer, err := h.client.Complete(ctx, llm.Request{Model: llm.ModelGpt4, System: p.system, User: p.user})
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	outcome := chat.ParseOr(answer, parseScanProjectResponse, func() []scanProjectResult {
		// rule based selection when the model answer is unusable
		files, err := ws.Files(ctx, topFileNumber)
		if err != nil {
			log.Printf("listing workspace files: %v", err)
		}

		results := make([]scanProjectResult, 0, len(files))
		for _, file := range files {
			results = append(results, scanProjectResult{FilePath: file, Relevance: 10})
		}
		return results
	})

	lines := make([]string, 0, len(outcome.Value))
	for _, item := range outcome.Value {
		lines = append(lines, "- "+item.FilePath)
	}
	stream.Markdown(fmt.Sprintf(
		"## Identify the following files for analysis: \n\n```\n%s\n```\n", strings.Join(lines, "\n")))

	return outcome.Value, nil
}

// parseScanProjectResponse keeps the most relevant files, best first.
func parseScanProjectResponse(raw string) ([]scanProjectResult, error) {
	response, err := chat.ParseJson[scanProjectResponse](raw)
	if err != nil {
		return nil, err
	}
	if response.Result == nil {
		return nil, errors.New("scan response has no 'result' list")
	}

	results := response.Result
	sort.SliceStable(results, func(i, j int) bool { return results[i].Relevance > results[j].Relevance })
	if len(results) > topFileNumber {
		results = results[:topFileNumber]
	}
	return results, nil
}

// analyzeFiles asks the model about every file. Results keep the order of paths; files that cannot be read or
// analyzed are skipped.
func (h *Handler) analyzeFiles(
	ctx context.Context,
	paths []string,
	stream chat.ResponseStream,
) ([]analyzeFileResult, error) {
	var mu sync.Mutex
	byPath := make(map[string]string, len(paths))

	err := async.RunWithLimitedConcurrency(ctx, paths, analysisConcurrency, func(ctx context.Context, filePath string) {
		content, err := h.context.Workspace().ReadFile(filePath)
		if err != nil {
			log.Printf("reading '%s' for analysis: %v", filePath, err)
			return
		}

		stream.Progress(fmt.Sprintf("Analyze %s...", filePath))
		p := analyzeFilePrompt(filePath, string(content))
		answer, err := h.client.Complete(ctx, llm.Request{Model: llm.ModelGpt35Turbo, System: p.system, User: p.user})
		if err != nil {
			log.Printf("analyzing '%s': %v", filePath, err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		byPath[filePath] = answer
	})
	if err != nil {
		return nil, err
	}

	results := make([]analyzeFileResult, 0, len(byPath))
	for _, filePath := range paths {
		if answer, has := byPath[filePath]; has {
			results = append(results, analyzeFileResult{FilePath: filePath, AnalyzeResult: answer})
		}
	}
	return results, nil
}

func (h *Handler) summarize(ctx context.Context, analyzeResults []string, stream chat.ResponseStream) (string, error) {
	stream.Progress("Aggregate Analyze Result...")

	p := summarizePrompt(analyzeResults)
	summary, err := h.client.Complete(ctx, llm.Request{Model: llm.ModelGpt35Turbo, System: p.system, User: p.user})
	if err != nil {
		return "", fmt.Errorf("summarizing analysis: %w", err)
	}
	return summary, nil
}

// recommendProposals drafts independent proposals from the same summary. Failed drafts are dropped.
func (h *Handler) recommendProposals(
	ctx context.Context,
	summary string,
	userPrompt string,
	stream chat.ResponseStream,
) ([]string, error) {
	stream.Progress("Recommend Azure Resource proposal...")

	p := proposalPrompt(summary, azureServicesPromptText(), userPrompt)
	drafts := make([]int, proposalNumber)
	for i := range drafts {
		drafts[i] = i
	}

	var mu sync.Mutex
	var proposals []string
	err := async.RunWithLimitedConcurrency(ctx, drafts, analysisConcurrency, func(ctx context.Context, index int) {
		answer, err := h.client.Complete(ctx, llm.Request{Model: llm.ModelGpt4, System: p.system, User: p.user})
		if err != nil {
			log.Printf("drafting proposal %d: %v", index, err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		proposals = append(proposals, answer)
	})
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, errNoProposal
	}

	return proposals, nil
}

// aggregateProposals counts, selects and finally aggregates the proposals in one conversation. The final
// answer is streamed and returned.
func (h *Handler) aggregateProposals(ctx context.Context, proposals []string, stream chat.ResponseStream) (string, error) {
	stream.Progress("Aggregate Azure Resource...")

	var history []llm.Message
	ask := func(userPrompt string) (string, error) {
		answer, err := h.client.Complete(ctx, llm.Request{
			Model:   llm.ModelGpt4,
			System:  recommendSystemPrompt,
			History: history,
			User:    userPrompt,
		})
		if err != nil {
			return "", err
		}

		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: userPrompt},
			llm.Message{Role: llm.RoleAssistant, Content: answer})
		return answer, nil
	}

	if _, err := ask(recommendCountPrompt(proposals)); err != nil {
		return "", fmt.Errorf("counting proposed resources: %w", err)
	}
	if _, err := ask(recommendSelectPrompt(len(proposals))); err != nil {
		return "", fmt.Errorf("selecting proposed resources: %w", err)
	}

	answer, err := chat.StreamMarkdown(ctx, h.client, llm.Request{
		Model:   llm.ModelGpt4,
		System:  recommendSystemPrompt,
		History: history,
		User:    recommendAggregatePrompt(len(proposals)),
	}, stream)
	if err != nil {
		return "", fmt.Errorf("aggregating proposals: %w", err)
	}
	return answer, nil
}

// improveRecommend changes the earlier recommendation as the user asks.
func (h *Handler) improveRecommend(
	ctx context.Context,
	request chat.Request,
	stream chat.ResponseStream,
) (chat.Result, error) {
	result := chat.Result{Command: CommandName, Metadata: map[string]any{"subCommand": improveRecommendCommandName}}
	stream.Progress("Improve Azure Resources...")

	answer, err := chat.StreamMarkdown(ctx, h.client, llm.Request{
		Model:   llm.ModelGpt4,
		System:  improveRecommendSystemPrompt,
		History: request.LastTurns(improveHistoryTurns),
		User:    request.Prompt,
	}, stream)
	if err != nil {
		return result, err
	}

	if answer != "" {
		h.context.Recommendations().Add(chat.AssistantTurn(answer))
	}
	return result, nil
}
