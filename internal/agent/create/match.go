// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package create

import (
	"context"
	"log"
	"sort"
	"strings"
	"unicode"

	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/llm"
)

const maxFallbackMatches = 3

type matchResponse struct {
	App []string `json:"app"`
}

// matchProject asks the model which candidates fit the prompt. When the answer cannot be parsed the candidates
// are ranked by keyword overlap instead. Unknown ids are dropped and the model's order is kept.
func matchProject(
	ctx context.Context,
	client *llm.Client,
	candidates []ProjectMetadata,
	prompt string,
) ([]ProjectMetadata, error) {
	systemPrompt, err := projectMatchSystemPrompt(candidates)
	if err != nil {
		return nil, err
	}

	answer, err := client.Complete(ctx, llm.Request{
		Model:  llm.ModelGpt4,
		System: systemPrompt,
		User:   prompt,
	})
	if err != nil {
		return nil, err
	}

	outcome := chat.ParseOr(answer, chat.ParseJson[matchResponse], func() matchResponse {
		return matchResponse{App: rankByKeywords(candidates, prompt, maxFallbackMatches)}
	})

	byId := make(map[string]ProjectMetadata, len(candidates))
	for _, project := range candidates {
		byId[project.Id] = project
	}

	var matched []ProjectMetadata
	seen := map[string]struct{}{}
	for _, id := range outcome.Value.App {
		project, has := byId[id]
		if !has {
			log.Printf("model matched unknown project '%s'", id)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matched = append(matched, project)
	}

	return matched, nil
}

// Words that carry no meaning when comparing an app description to project descriptions.
var stopWords = map[string]struct{}{
	"and": {}, "app": {}, "are": {}, "build": {}, "can": {}, "create": {}, "for": {}, "from": {}, "has": {},
	"that": {}, "the": {}, "this": {}, "want": {}, "which": {}, "with": {}, "you": {}, "your": {}, "teams": {},
	"microsoft": {}, "make": {}, "need": {}, "new": {}, "project": {}, "sample": {}, "template": {},
}

func keywords(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	result := map[string]struct{}{}
	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		result[word] = struct{}{}
	}
	return result
}

// rankByKeywords returns the ids of up to limit candidates sharing the most keywords with prompt. Candidates
// without any shared keyword are never returned; ties keep candidate order.
func rankByKeywords(candidates []ProjectMetadata, prompt string, limit int) []string {
	wanted := keywords(prompt)
	if len(wanted) == 0 {
		return nil
	}

	type scored struct {
		id    string
		score int
	}

	var ranked []scored
	for _, project := range candidates {
		score := 0
		for word := range keywords(project.Id + " " + project.Name + " " + project.Description) {
			if _, has := wanted[word]; has {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{id: project.Id, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	ids := make([]string, 0, min(limit, len(ranked)))
	for _, candidate := range ranked {
		if len(ids) == limit {
			break
		}
		ids = append(ids, candidate.id)
	}
	return ids
}
