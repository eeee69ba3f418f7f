// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package codetocloud

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
)

//go:embed prompts/scan_project.md
var scanProjectSystemPrompt string

//go:embed prompts/analyze_file.md
var analyzeFileSystemPrompt string

//go:embed prompts/summarize.md
var summarizeSystemPrompt string

//go:embed prompts/proposal.md
var proposalSystemPrompt string

//go:embed prompts/recommend_system.md
var recommendSystemPrompt string

//go:embed prompts/improve_recommend.md
var improveRecommendSystemPrompt string

type prompt struct {
	system string
	user   string
}

func scanProjectPrompt(folderTree string, topFiles int) prompt {
	return prompt{
		system: fmt.Sprintf(scanProjectSystemPrompt, topFiles),
		user:   fmt.Sprintf("Here is the folder tree of my project:\n\n```\n%s```", folderTree),
	}
}

func analyzeFilePrompt(filePath string, content string) prompt {
	return prompt{
		system: analyzeFileSystemPrompt,
		user:   fmt.Sprintf("File path: %s\n\n```\n%s\n```", filePath, content),
	}
}

func summarizePrompt(analyzeResults []string) prompt {
	var sb strings.Builder
	for i, result := range analyzeResults {
		fmt.Fprintf(&sb, "## Analysis %d\n\n%s\n\n", i+1, result)
	}

	return prompt{system: summarizeSystemPrompt, user: sb.String()}
}

func proposalPrompt(summary string, services string, userPrompt string) prompt {
	return prompt{
		system: fmt.Sprintf(proposalSystemPrompt, services, summary, userPrompt),
		user:   "Propose the Azure resources for my application.",
	}
}

func recommendCountPrompt(proposals []string) string {
	var sb strings.Builder
	for i, proposal := range proposals {
		fmt.Fprintf(&sb, "## Proposal %d\n\n%s\n\n", i+1, proposal)
	}

	return heredoc.Docf(`
		%s
		Count how many of the proposals above recommend each Azure resource. Reply with one line per
		resource in the form "<resource>: <count>".`, sb.String())
}

func recommendSelectPrompt(proposalCount int) string {
	return heredoc.Docf(`
		Select the Azure resources recommended by more than half of the %d proposals, plus any resource the
		application cannot run without. List the selected resources with one line on their role.`, proposalCount)
}

func recommendAggregatePrompt(proposalCount int) string {
	return heredoc.Docf(`
		Aggregate the %d proposals into the final recommendation, keeping only the selected resources.
		For every resource give a "### <resource>" heading, its role, and how it connects to the other
		resources. End with a short summary of the architecture.`, proposalCount)
}
